package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking joins a user to a stock. Amount is the unit price snapshotted at
// booking time; it must never be re-read from the stock, whose price can
// change later. Bookings are never deleted, only flagged.
type Booking struct {
	ID               uint            `json:"id"`
	UserID           uint            `json:"user_id"`
	StockID          uint            `json:"stock_id"`
	Quantity         int             `json:"quantity"`
	Amount           decimal.Decimal `json:"amount"`
	Token            string          `json:"token"`
	IsUsed           bool            `json:"is_used"`
	DateUsed         *time.Time      `json:"date_used"`
	IsCancelled      bool            `json:"is_cancelled"`
	CancellationDate *time.Time      `json:"cancellation_date"`
	DateCreated      time.Time       `json:"date_created"`
}

// IsActive reports whether the booking still consumes stock quantity and
// wallet balance.
func (b Booking) IsActive() bool {
	return !b.IsCancelled
}

// Total is the wallet cost of the booking: unit amount times quantity.
func (b Booking) Total() decimal.Decimal {
	return b.Amount.Mul(decimal.NewFromInt(int64(b.Quantity)))
}

// BookedOffer pairs a booking with the category of the offer it was made
// against, which is what the expense ledger partitions on.
type BookedOffer struct {
	Booking  Booking
	Category OfferCategory
}
