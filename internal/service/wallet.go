package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/culturepass/booking-api/internal/domain"
	"github.com/culturepass/booking-api/internal/repository"
)

type WalletBookingRepository interface {
	FindByUserID(ctx context.Context, userID uint) ([]domain.BookedOffer, error)
}

// WalletService answers "how much can this user still spend". It only reads;
// nothing here is ever cached across requests.
type WalletService struct {
	userRepo    UserRepository
	bookingRepo WalletBookingRepository
	caps        domain.ExpenseCaps
	now         func() time.Time
}

func NewWalletService(userRepo UserRepository, bookingRepo WalletBookingRepository, policy BookingPolicy) *WalletService {
	return &WalletService{
		userRepo:    userRepo,
		bookingRepo: bookingRepo,
		caps:        policy.Caps,
		now:         time.Now,
	}
}

// RemainingBalance computes the spendable balance. Users without a deposit
// have a balance of zero.
func (s *WalletService) RemainingBalance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	deposit, bookings, err := s.load(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	flat := make([]domain.Booking, len(bookings))
	for i, b := range bookings {
		flat[i] = b.Booking
	}

	return domain.RemainingBalance(deposit, flat), nil
}

// DomainsCredit builds the per-category wallet view exposed to the user.
func (s *WalletService) DomainsCredit(ctx context.Context, userID uint) (domain.DomainsCredit, error) {
	deposit, bookings, err := s.load(ctx, userID)
	if err != nil {
		return domain.DomainsCredit{}, err
	}

	return domain.DomainsCreditOf(deposit, bookings, s.caps), nil
}

func (s *WalletService) load(ctx context.Context, userID uint) (domain.Deposit, []domain.BookedOffer, error) {
	deposit, err := s.userRepo.FindLatestDeposit(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrDepositNotFound) {
			return domain.Deposit{}, nil, fmt.Errorf("s.userRepo.FindLatestDeposit -> %w", err)
		}
		deposit = domain.Deposit{UserID: userID, Amount: decimal.Zero}
	}

	// An expired deposit no longer funds anything.
	if deposit.IsExpired(s.now()) {
		deposit.Amount = decimal.Zero
	}

	bookings, err := s.bookingRepo.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Deposit{}, nil, fmt.Errorf("s.bookingRepo.FindByUserID -> %w", err)
	}

	return deposit, bookings, nil
}
