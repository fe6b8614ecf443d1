package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/culturepass/booking-api/internal/config"
	"github.com/culturepass/booking-api/internal/domain"
)

// BookingPolicy is the parsed form of config.BookingConfig: every knob the
// booking rules need, as proper types.
type BookingPolicy struct {
	Caps                    domain.ExpenseCaps
	ActivationDepositAmount decimal.Decimal
	ValidationWindow        time.Duration
	Eligibility             domain.EligibilityWindow
}

func NewBookingPolicy(conf *config.BookingConfig) (BookingPolicy, error) {
	physicalCap, err := decimal.NewFromString(conf.PhysicalCap)
	if err != nil {
		return BookingPolicy{}, fmt.Errorf("invalid physical_cap %q -> %w", conf.PhysicalCap, err)
	}

	digitalCap, err := decimal.NewFromString(conf.DigitalCap)
	if err != nil {
		return BookingPolicy{}, fmt.Errorf("invalid digital_cap %q -> %w", conf.DigitalCap, err)
	}

	activationAmount, err := decimal.NewFromString(conf.ActivationDepositAmount)
	if err != nil {
		return BookingPolicy{}, fmt.Errorf("invalid activation_deposit_amount %q -> %w", conf.ActivationDepositAmount, err)
	}

	return BookingPolicy{
		Caps: domain.ExpenseCaps{
			Physical: physicalCap,
			Digital:  digitalCap,
		},
		ActivationDepositAmount: activationAmount,
		ValidationWindow:        time.Duration(conf.ValidationWindowHours) * time.Hour,
		Eligibility: domain.EligibilityWindow{
			MinAge: conf.EligibilityMinAge,
			MaxAge: conf.EligibilityMaxAge,
		},
	}, nil
}
