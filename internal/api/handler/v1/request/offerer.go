package request

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	sirenExp           = regexp.MustCompile(`^\d{9}$`)
	is9Digits          = validation.Match(sirenExp).Error("must be 9 digits")
	errAddressRequired = errors.New("address is required for a physical venue")
)

type CreateOffererRequest struct {
	Name  string `json:"name"`
	Siren string `json:"siren"`
}

func (req *CreateOffererRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 140)),
		validation.Field(&req.Siren, validation.Required, is9Digits),
	)
}

type ValidateOffererRequest struct {
	Token string `json:"token"`
}

func (req *ValidateOffererRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Token, validation.Required),
	)
}

type CreateVenueRequest struct {
	OffererID uint    `json:"offerer_id"`
	Name      string  `json:"name"`
	Address   *string `json:"address"`
	IsVirtual bool    `json:"is_virtual"`
}

func (req *CreateVenueRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.OffererID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, 140)),
	)
	if err != nil {
		return err
	}

	if !req.IsVirtual && (req.Address == nil || *req.Address == "") {
		return errAddressRequired
	}

	return nil
}
