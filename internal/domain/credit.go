package domain

import "github.com/shopspring/decimal"

// ExpenseCaps are the per-category spending ceilings applied to a deposit.
// Event bookings are exempt from both.
type ExpenseCaps struct {
	Physical decimal.Decimal
	Digital  decimal.Decimal
}

type Credit struct {
	Initial   decimal.Decimal `json:"initial"`
	Remaining decimal.Decimal `json:"remaining"`
}

// DomainsCredit is the user-facing view of the wallet: overall credit plus
// the capped physical and digital sub-credits.
type DomainsCredit struct {
	All      Credit  `json:"all"`
	Physical *Credit `json:"physical,omitempty"`
	Digital  *Credit `json:"digital,omitempty"`
}

// RemainingBalance folds the wallet: deposit amount minus the total of all
// non-cancelled bookings. A booking consumes balance the moment it is
// created, used or not. The result is not clamped; callers reject a booking
// that would drive it negative.
func RemainingBalance(deposit Deposit, bookings []Booking) decimal.Decimal {
	remaining := deposit.Amount
	for _, booking := range bookings {
		if booking.IsActive() {
			remaining = remaining.Sub(booking.Total())
		}
	}
	return remaining
}

// CategoryExpenses sums the active spending per capped category. Events and
// activation bookings fall outside both categories.
func CategoryExpenses(bookings []BookedOffer) (physical, digital decimal.Decimal) {
	for _, b := range bookings {
		if !b.Booking.IsActive() {
			continue
		}
		switch b.Category {
		case CategoryPhysicalThing:
			physical = physical.Add(b.Booking.Total())
		case CategoryDigitalThing:
			digital = digital.Add(b.Booking.Total())
		}
	}
	return physical, digital
}

// DomainsCreditOf builds the wallet view. Category remainings are clamped to
// zero and never exceed the overall remaining.
func DomainsCreditOf(deposit Deposit, bookings []BookedOffer, caps ExpenseCaps) DomainsCredit {
	flat := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		flat = append(flat, b.Booking)
	}

	allRemaining := decimal.Max(RemainingBalance(deposit, flat), decimal.Zero)
	credit := DomainsCredit{
		All: Credit{Initial: deposit.Amount, Remaining: allRemaining},
	}

	physicalSpent, digitalSpent := CategoryExpenses(bookings)

	if caps.Physical.IsPositive() {
		credit.Physical = &Credit{
			Initial:   caps.Physical,
			Remaining: decimal.Min(decimal.Max(caps.Physical.Sub(physicalSpent), decimal.Zero), allRemaining),
		}
	}
	if caps.Digital.IsPositive() {
		credit.Digital = &Credit{
			Initial:   caps.Digital,
			Remaining: decimal.Min(decimal.Max(caps.Digital.Sub(digitalSpent), decimal.Zero), allRemaining),
		}
	}

	return credit
}
