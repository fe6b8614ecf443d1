package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/culturepass/booking-api/internal/domain"
)

var validCategories = []interface{}{
	string(domain.CategoryEvent),
	string(domain.CategoryPhysicalThing),
	string(domain.CategoryDigitalThing),
	string(domain.CategoryActivation),
}

type CreateOfferRequest struct {
	VenueID  uint   `json:"venue_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (req *CreateOfferRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.VenueID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, 140)),
		validation.Field(&req.Category, validation.Required, validation.In(validCategories...)),
	)
}

type UpdateOfferRequest struct {
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

func (req *UpdateOfferRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 140)),
	)
}

type CreateStockRequest struct {
	OfferID              uint            `json:"offer_id"`
	Price                decimal.Decimal `json:"price"`
	Quantity             *int            `json:"quantity"`
	BookingLimitDatetime *time.Time      `json:"booking_limit_datetime"`
	BeginningDatetime    *time.Time      `json:"beginning_datetime"`
}

func (req *CreateStockRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.OfferID, validation.Required),
		validation.Field(&req.Price, validation.By(nonNegativePrice)),
		validation.Field(&req.Quantity, validation.Min(0)),
	)
}

type UpdateStockRequest struct {
	Price                decimal.Decimal `json:"price"`
	Quantity             *int            `json:"quantity"`
	BookingLimitDatetime *time.Time      `json:"booking_limit_datetime"`
	BeginningDatetime    *time.Time      `json:"beginning_datetime"`
}

func (req *UpdateStockRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Price, validation.By(nonNegativePrice)),
		validation.Field(&req.Quantity, validation.Min(0)),
	)
}

func nonNegativePrice(value interface{}) error {
	price, ok := value.(decimal.Decimal)
	if !ok || price.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}
