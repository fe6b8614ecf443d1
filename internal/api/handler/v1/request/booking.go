package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type BookOfferRequest struct {
	StockID  uint `json:"stock_id"`
	Quantity int  `json:"quantity"`
}

func (req *BookOfferRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.StockID, validation.Required),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
	)
}

type RevertValidationsRequest struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (req *RevertValidationsRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.From, validation.Required),
		validation.Field(&req.To, validation.Required),
	)
	if err != nil {
		return err
	}

	return validation.Validate(req.To, validation.Min(req.From).Error("must not be before from"))
}
