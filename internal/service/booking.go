package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/culturepass/booking-api/internal/domain"
	"github.com/culturepass/booking-api/internal/pkg/token"
	"github.com/culturepass/booking-api/internal/repository"
)

var (
	ErrBookingNotFound = repository.ErrBookingNotFound
	ErrStockNotFound   = repository.ErrStockNotFound
)

// tokenRetries bounds the redemption-code collision retries. The code space
// is 32^6 so more than one retry is already rare.
const tokenRetries = 5

type BookingUserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	FindLatestDeposit(ctx context.Context, userID uint) (domain.Deposit, error)
	CreateDeposit(ctx context.Context, deposit domain.Deposit) (domain.Deposit, error)
}

type BookingStockRepository interface {
	FindStockContext(ctx context.Context, stockID uint) (repository.StockContext, error)
}

type BookingOffererRepository interface {
	IsEditor(ctx context.Context, userID, offererID uint) (bool, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	FindByID(ctx context.Context, id uint) (domain.Booking, error)
	FindByToken(ctx context.Context, token string) (domain.Booking, error)
	Update(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	HasActiveBooking(ctx context.Context, userID, stockID uint) (bool, error)
	SumActiveQuantity(ctx context.Context, stockID uint) (int, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.BookedOffer, error)
	FindActiveByStockID(ctx context.Context, stockID uint) ([]domain.Booking, error)
	FindActiveByUserID(ctx context.Context, userID uint) ([]domain.Booking, error)
	FindUsedEventBookingsBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
}

// BookingService orchestrates the booking lifecycle. Every rejection happens
// before any write; the final insert re-validates capacity and balance under
// a row lock so the checks here cannot be raced into overselling.
type BookingService struct {
	bookingRepo BookingRepository
	userRepo    BookingUserRepository
	stockRepo   BookingStockRepository
	offererRepo BookingOffererRepository
	policy      BookingPolicy
	now         func() time.Time
}

func NewBookingService(
	bookingRepo BookingRepository,
	userRepo BookingUserRepository,
	stockRepo BookingStockRepository,
	offererRepo BookingOffererRepository,
	policy BookingPolicy,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		stockRepo:   stockRepo,
		offererRepo: offererRepo,
		policy:      policy,
		now:         time.Now,
	}
}

// BookOffer validates and creates a booking for the user against the stock.
// The checks run in a fixed order so the caller always sees the same
// rejection for a given state.
func (s *BookingService) BookOffer(ctx context.Context, userID, stockID uint, quantity int) (domain.Booking, error) {
	now := s.now()

	sc, err := s.stockRepo.FindStockContext(ctx, stockID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("s.stockRepo.FindStockContext -> %w", err)
	}

	if sc.Stock.IsSoftDeleted || !sc.Offer.IsActive || !sc.OffererActive || !sc.VenueValidated {
		return domain.Booking{}, domain.ErrStockInactive
	}

	if sc.Stock.IsBookingLimitPassed(now) || sc.Stock.IsEventExpired(now) {
		return domain.Booking{}, domain.ErrBookingLimitPassed
	}

	alreadyBooked, err := s.bookingRepo.HasActiveBooking(ctx, userID, stockID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("s.bookingRepo.HasActiveBooking -> %w", err)
	}
	if alreadyBooked {
		return domain.Booking{}, domain.ErrDuplicateBooking
	}

	consumed, err := s.bookingRepo.SumActiveQuantity(ctx, stockID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("s.bookingRepo.SumActiveQuantity -> %w", err)
	}
	if !sc.Stock.HasCapacity(consumed, quantity) {
		remaining := sc.Stock.RemainingQuantity(consumed)
		return domain.Booking{}, &domain.InsufficientCapacityError{
			Remaining: *remaining,
			Requested: quantity,
		}
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}
	if sc.Stock.Price.IsZero() && !user.CanBookFreeOffers {
		return domain.Booking{}, domain.ErrUserCannotBookFreeOffers
	}

	cost := sc.Stock.Price.Mul(decimal.NewFromInt(int64(quantity)))
	if cost.IsPositive() {
		if err = s.checkFunds(ctx, userID, sc.Offer.Category, cost, now); err != nil {
			return domain.Booking{}, err
		}
	}

	booking := domain.Booking{
		UserID:      userID,
		StockID:     stockID,
		Quantity:    quantity,
		Amount:      sc.Stock.Price, // snapshotted; stock price may change later
		DateCreated: now,
	}

	return s.create(ctx, booking)
}

func (s *BookingService) checkFunds(ctx context.Context, userID uint, category domain.OfferCategory, cost decimal.Decimal, now time.Time) error {
	deposit, err := s.userRepo.FindLatestDeposit(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDepositNotFound) {
			return &domain.InsufficientFundsError{Remaining: decimal.Zero, Required: cost}
		}
		return fmt.Errorf("s.userRepo.FindLatestDeposit -> %w", err)
	}
	if deposit.IsExpired(now) {
		deposit.Amount = decimal.Zero
	}

	bookings, err := s.bookingRepo.FindByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("s.bookingRepo.FindByUserID -> %w", err)
	}

	flat := make([]domain.Booking, len(bookings))
	for i, b := range bookings {
		flat[i] = b.Booking
	}

	remaining := domain.RemainingBalance(deposit, flat)
	if remaining.LessThan(cost) {
		return &domain.InsufficientFundsError{Remaining: remaining, Required: cost}
	}

	// Events are exempt from the category caps.
	physicalSpent, digitalSpent := domain.CategoryExpenses(bookings)
	switch category {
	case domain.CategoryPhysicalThing:
		if physicalSpent.Add(cost).GreaterThan(s.policy.Caps.Physical) {
			return &domain.ExpenseLimitError{
				Category: category,
				Cap:      s.policy.Caps.Physical,
				Spent:    physicalSpent,
				Required: cost,
			}
		}
	case domain.CategoryDigitalThing:
		if digitalSpent.Add(cost).GreaterThan(s.policy.Caps.Digital) {
			return &domain.ExpenseLimitError{
				Category: category,
				Cap:      s.policy.Caps.Digital,
				Spent:    digitalSpent,
				Required: cost,
			}
		}
	}

	return nil
}

func (s *BookingService) create(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	for attempt := 0; attempt < tokenRetries; attempt++ {
		code, err := token.Generate()
		if err != nil {
			return domain.Booking{}, fmt.Errorf("token.Generate -> %w", err)
		}
		booking.Token = code

		created, err := s.bookingRepo.Create(ctx, booking)
		if err != nil {
			if errors.Is(err, repository.ErrBookingTokenExists) {
				continue
			}
			return domain.Booking{}, err
		}

		return created, nil
	}

	return domain.Booking{}, fmt.Errorf("could not generate a unique booking token after %d attempts", tokenRetries)
}

// CancelBooking cancels a booking on behalf of the actor. The actor must be
// the beneficiary who booked, an admin, or an editor of the owning offerer.
// A nil actor (anonymous counter flow) may never cancel.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID uint, actor *domain.User) (domain.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("s.bookingRepo.FindByID -> %w", err)
	}

	if booking.IsUsed {
		return domain.Booking{}, domain.ErrBookingAlreadyUsed
	}
	if booking.IsCancelled {
		return domain.Booking{}, domain.ErrBookingAlreadyCancelled
	}

	allowed, err := s.canCancel(ctx, booking, actor)
	if err != nil {
		return domain.Booking{}, err
	}
	if !allowed {
		return domain.Booking{}, domain.ErrForbidden
	}

	now := s.now()
	booking.IsCancelled = true
	booking.CancellationDate = &now

	cancelled, err := s.bookingRepo.Update(ctx, booking)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("s.bookingRepo.Update -> %w", err)
	}

	return cancelled, nil
}

func (s *BookingService) canCancel(ctx context.Context, booking domain.Booking, actor *domain.User) (bool, error) {
	if actor == nil {
		return false, nil
	}
	if actor.ID == booking.UserID || actor.IsAdmin {
		return true, nil
	}

	sc, err := s.stockRepo.FindStockContext(ctx, booking.StockID)
	if err != nil {
		return false, fmt.Errorf("s.stockRepo.FindStockContext -> %w", err)
	}

	isEditor, err := s.offererRepo.IsEditor(ctx, actor.ID, sc.OffererID)
	if err != nil {
		return false, fmt.Errorf("s.offererRepo.IsEditor -> %w", err)
	}

	return isEditor, nil
}

// MarkUsed redeems a booking by token. Event bookings may only be validated
// within the policy window before the event starts, or any time after.
func (s *BookingService) MarkUsed(ctx context.Context, bookingToken string) (domain.Booking, error) {
	booking, err := s.bookingRepo.FindByToken(ctx, bookingToken)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("s.bookingRepo.FindByToken -> %w", err)
	}

	if booking.IsCancelled {
		return domain.Booking{}, domain.ErrBookingIsCancelled
	}
	if booking.IsUsed {
		return domain.Booking{}, domain.ErrBookingAlreadyUsed
	}

	now := s.now()
	sc, err := s.stockRepo.FindStockContext(ctx, booking.StockID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("s.stockRepo.FindStockContext -> %w", err)
	}

	if sc.Stock.IsEventStock() && now.Before(sc.Stock.BeginningDatetime.Add(-s.policy.ValidationWindow)) {
		return domain.Booking{}, domain.ErrTooEarlyToValidate
	}

	// The activation grant completes before the booking write, so a
	// rejection, including one raced in after the deposit pre-check, leaves
	// the booking untouched.
	if sc.Offer.Category.IsActivation() {
		_, err = s.userRepo.FindLatestDeposit(ctx, booking.UserID)
		if err == nil {
			return domain.Booking{}, domain.ErrActivationAlreadyGranted
		}
		if !errors.Is(err, repository.ErrDepositNotFound) {
			return domain.Booking{}, fmt.Errorf("s.userRepo.FindLatestDeposit -> %w", err)
		}

		if err = s.grantActivation(ctx, booking.UserID, now); err != nil {
			return domain.Booking{}, err
		}
	}

	booking.IsUsed = true
	booking.DateUsed = &now

	used, err := s.bookingRepo.Update(ctx, booking)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("s.bookingRepo.Update -> %w", err)
	}

	return used, nil
}

// grantActivation unlocks real booking ability: the user may book free
// offers and receives the initial deposit. The deposit insert is the atomic
// duplicate gate and runs first, so losing a concurrent-grant race rejects
// before anything else is written.
func (s *BookingService) grantActivation(ctx context.Context, userID uint, now time.Time) error {
	_, err := s.userRepo.CreateDeposit(ctx, domain.Deposit{
		UserID:    userID,
		Amount:    s.policy.ActivationDepositAmount,
		Source:    "activation",
		CreatedAt: now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDepositExists) {
			return domain.ErrActivationAlreadyGranted
		}
		return fmt.Errorf("s.userRepo.CreateDeposit -> %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}

	user.CanBookFreeOffers = true
	if _, err = s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("s.userRepo.Update -> %w", err)
	}

	zap.L().Info("activation deposit granted",
		zap.Uint("user_id", userID),
		zap.String("amount", s.policy.ActivationDepositAmount.String()),
	)

	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uint) (domain.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("s.bookingRepo.FindByID -> %w", err)
	}

	return booking, nil
}

func (s *BookingService) GetBookingsOfUser(ctx context.Context, userID uint) ([]domain.BookedOffer, error) {
	bookings, err := s.bookingRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.bookingRepo.FindByUserID -> %w", err)
	}

	return bookings, nil
}
