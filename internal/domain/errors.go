package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rejection is a structured rule violation. Field names the request input the
// route layer should scope its message to; Reason is a stable machine code.
// The domain never formats human-readable messages.
type Rejection struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (r *Rejection) Error() string {
	return r.Field + ": " + r.Reason
}

// Creation-time rejections, checked in this order by the booking lifecycle.
var (
	ErrStockInactive             = &Rejection{Field: "stock", Reason: "stock-inactive"}
	ErrBookingLimitPassed        = &Rejection{Field: "stock", Reason: "booking-limit-passed"}
	ErrDuplicateBooking          = &Rejection{Field: "stock", Reason: "already-booked"}
	ErrInsufficientStockCapacity = &Rejection{Field: "quantity", Reason: "insufficient-stock-capacity"}
	ErrUserCannotBookFreeOffers  = &Rejection{Field: "user", Reason: "cannot-book-free-offers"}
	ErrInsufficientFunds         = &Rejection{Field: "amount", Reason: "insufficient-funds"}
	ErrPhysicalExpenseLimit      = &Rejection{Field: "amount", Reason: "physical-expense-limit-exceeded"}
	ErrDigitalExpenseLimit       = &Rejection{Field: "amount", Reason: "digital-expense-limit-exceeded"}
)

// Lifecycle-time rejections.
var (
	ErrBookingAlreadyUsed       = &Rejection{Field: "booking", Reason: "already-used"}
	ErrBookingAlreadyCancelled  = &Rejection{Field: "booking", Reason: "already-cancelled"}
	ErrBookingIsCancelled       = &Rejection{Field: "booking", Reason: "cancelled"}
	ErrForbidden                = &Rejection{Field: "actor", Reason: "forbidden"}
	ErrTooEarlyToValidate       = &Rejection{Field: "booking", Reason: "too-early-to-validate"}
	ErrActivationAlreadyGranted = &Rejection{Field: "user", Reason: "activation-already-granted"}
	ErrOfferIsProviderSourced   = &Rejection{Field: "offer", Reason: "provider-sourced"}
)

// InsufficientFundsError carries the figures behind an insufficient-funds
// rejection. errors.Is matches it against ErrInsufficientFunds.
type InsufficientFundsError struct {
	Remaining decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: remaining %s, required %s", ErrInsufficientFunds, e.Remaining, e.Required)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// InsufficientCapacityError carries the figures behind a capacity rejection.
type InsufficientCapacityError struct {
	Remaining int
	Requested int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("%s: remaining %d, requested %d", ErrInsufficientStockCapacity, e.Remaining, e.Requested)
}

func (e *InsufficientCapacityError) Unwrap() error {
	return ErrInsufficientStockCapacity
}

// ExpenseLimitError carries the figures behind a category cap rejection.
// Category is the capped offer category that would overflow.
type ExpenseLimitError struct {
	Category OfferCategory
	Cap      decimal.Decimal
	Spent    decimal.Decimal
	Required decimal.Decimal
}

func (e *ExpenseLimitError) Error() string {
	return fmt.Sprintf("%s: cap %s, spent %s, required %s", e.sentinel(), e.Cap, e.Spent, e.Required)
}

func (e *ExpenseLimitError) Unwrap() error {
	return e.sentinel()
}

func (e *ExpenseLimitError) sentinel() *Rejection {
	if e.Category == CategoryDigitalThing {
		return ErrDigitalExpenseLimit
	}
	return ErrPhysicalExpenseLimit
}
