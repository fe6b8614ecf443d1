package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OfferCategory string

const (
	CategoryEvent         OfferCategory = "event"
	CategoryPhysicalThing OfferCategory = "physical_thing"
	CategoryDigitalThing  OfferCategory = "digital_thing"
	CategoryActivation    OfferCategory = "activation"
)

// IsEvent reports whether bookings of this category are time-bound events.
// Events are exempt from the per-category expense caps.
func (c OfferCategory) IsEvent() bool {
	return c == CategoryEvent
}

func (c OfferCategory) IsActivation() bool {
	return c == CategoryActivation
}

type Offer struct {
	ID             uint          `json:"id"`
	VenueID        uint          `json:"venue_id"`
	Name           string        `json:"name"`
	Category       OfferCategory `json:"category"`
	IsActive       bool          `json:"is_active"`
	LastProviderID *uint         `json:"last_provider_id"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// IsProviderSourced reports whether the offer comes from an external catalog
// synchronization, which locks it against manual edits.
func (o Offer) IsProviderSourced() bool {
	return o.LastProviderID != nil
}

type Stock struct {
	ID                   uint            `json:"id"`
	OfferID              uint            `json:"offer_id"`
	Price                decimal.Decimal `json:"price"`
	Quantity             *int            `json:"quantity"` // nil = unlimited
	BookingLimitDatetime *time.Time      `json:"booking_limit_datetime"`
	BeginningDatetime    *time.Time      `json:"beginning_datetime"` // non-nil only for event stocks
	IsSoftDeleted        bool            `json:"is_soft_deleted"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (s Stock) IsEventStock() bool {
	return s.BeginningDatetime != nil
}

// RemainingQuantity computes how many units are still bookable given the
// total quantity held by non-cancelled bookings. nil means unlimited.
// Availability is always computed live from the active bookings, never from
// a persisted counter.
func (s Stock) RemainingQuantity(activeQuantity int) *int {
	if s.Quantity == nil {
		return nil
	}

	remaining := *s.Quantity - activeQuantity
	return &remaining
}

func (s Stock) HasCapacity(activeQuantity, requested int) bool {
	remaining := s.RemainingQuantity(activeQuantity)
	return remaining == nil || *remaining >= requested
}

func (s Stock) IsBookingLimitPassed(now time.Time) bool {
	return s.BookingLimitDatetime != nil && s.BookingLimitDatetime.Before(now)
}

func (s Stock) IsEventExpired(now time.Time) bool {
	return s.BeginningDatetime != nil && s.BeginningDatetime.Before(now)
}
