package service

import (
	"context"
	"time"

	"github.com/culturepass/booking-api/internal/domain"
	"github.com/culturepass/booking-api/internal/repository"
)

// In-memory fakes for the repository interfaces. They reproduce the
// repository contracts (sentinel errors, unique-token enforcement) without a
// database.

func intPtr(v int) *int {
	return &v
}

type fakeUserRepo struct {
	users    map[uint]domain.User
	deposits map[uint]domain.Deposit
	checks   map[uint][]domain.FraudCheck

	// createDepositErr, when set, forces CreateDeposit to fail, simulating a
	// grant lost to a concurrent insert.
	createDepositErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[uint]domain.User),
		deposits: make(map[uint]domain.Deposit),
		checks:   make(map[uint][]domain.FraudCheck),
	}
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user domain.User) (domain.User, error) {
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) FindLatestDeposit(_ context.Context, userID uint) (domain.Deposit, error) {
	deposit, ok := f.deposits[userID]
	if !ok {
		return domain.Deposit{}, repository.ErrDepositNotFound
	}
	return deposit, nil
}

func (f *fakeUserRepo) CreateDeposit(_ context.Context, deposit domain.Deposit) (domain.Deposit, error) {
	if f.createDepositErr != nil {
		return domain.Deposit{}, f.createDepositErr
	}
	if _, exists := f.deposits[deposit.UserID]; exists {
		return domain.Deposit{}, repository.ErrDepositExists
	}
	deposit.ID = uint(len(f.deposits) + 1)
	f.deposits[deposit.UserID] = deposit
	return deposit, nil
}

func (f *fakeUserRepo) FindFraudChecks(_ context.Context, userID uint) ([]domain.FraudCheck, error) {
	return f.checks[userID], nil
}

func (f *fakeUserRepo) CreateFraudCheck(_ context.Context, check domain.FraudCheck) (domain.FraudCheck, error) {
	check.ID = uint(len(f.checks[check.UserID]) + 1)
	f.checks[check.UserID] = append(f.checks[check.UserID], check)
	return check, nil
}

type fakeStockRepo struct {
	contexts map[uint]repository.StockContext
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{contexts: make(map[uint]repository.StockContext)}
}

func (f *fakeStockRepo) FindStockContext(_ context.Context, stockID uint) (repository.StockContext, error) {
	sc, ok := f.contexts[stockID]
	if !ok {
		return repository.StockContext{}, repository.ErrStockNotFound
	}
	return sc, nil
}

type fakeOffererRepo struct {
	editors map[[2]uint]bool
}

func newFakeOffererRepo() *fakeOffererRepo {
	return &fakeOffererRepo{editors: make(map[[2]uint]bool)}
}

func (f *fakeOffererRepo) grant(userID, offererID uint) {
	f.editors[[2]uint{userID, offererID}] = true
}

func (f *fakeOffererRepo) IsEditor(_ context.Context, userID, offererID uint) (bool, error) {
	return f.editors[[2]uint{userID, offererID}], nil
}

type fakeBookingRepo struct {
	bookings   map[uint]domain.Booking
	categories map[uint]domain.OfferCategory // stockID -> category
	beginnings map[uint]*time.Time           // stockID -> event beginning
	nextID     uint

	// collisionFn, when set, simulates the unique-token constraint: Create
	// fails with ErrBookingTokenExists whenever it returns true.
	collisionFn func(token string) bool

	updateErr map[uint]error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:   make(map[uint]domain.Booking),
		categories: make(map[uint]domain.OfferCategory),
		beginnings: make(map[uint]*time.Time),
		updateErr:  make(map[uint]error),
	}
}

func (f *fakeBookingRepo) Create(_ context.Context, booking domain.Booking) (domain.Booking, error) {
	if f.collisionFn != nil && f.collisionFn(booking.Token) {
		return domain.Booking{}, repository.ErrBookingTokenExists
	}
	for _, existing := range f.bookings {
		if existing.Token == booking.Token {
			return domain.Booking{}, repository.ErrBookingTokenExists
		}
		if existing.UserID == booking.UserID && existing.StockID == booking.StockID && existing.IsActive() {
			return domain.Booking{}, domain.ErrDuplicateBooking
		}
	}

	f.nextID++
	booking.ID = f.nextID
	f.bookings[booking.ID] = booking
	return booking, nil
}

func (f *fakeBookingRepo) FindByID(_ context.Context, id uint) (domain.Booking, error) {
	booking, ok := f.bookings[id]
	if !ok {
		return domain.Booking{}, repository.ErrBookingNotFound
	}
	return booking, nil
}

func (f *fakeBookingRepo) FindByToken(_ context.Context, token string) (domain.Booking, error) {
	for _, booking := range f.bookings {
		if booking.Token == token {
			return booking, nil
		}
	}
	return domain.Booking{}, repository.ErrBookingNotFound
}

func (f *fakeBookingRepo) Update(_ context.Context, booking domain.Booking) (domain.Booking, error) {
	if err := f.updateErr[booking.ID]; err != nil {
		return domain.Booking{}, err
	}
	if _, ok := f.bookings[booking.ID]; !ok {
		return domain.Booking{}, repository.ErrBookingNotFound
	}
	f.bookings[booking.ID] = booking
	return booking, nil
}

func (f *fakeBookingRepo) HasActiveBooking(_ context.Context, userID, stockID uint) (bool, error) {
	for _, booking := range f.bookings {
		if booking.UserID == userID && booking.StockID == stockID && booking.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookingRepo) SumActiveQuantity(_ context.Context, stockID uint) (int, error) {
	total := 0
	for _, booking := range f.bookings {
		if booking.StockID == stockID && booking.IsActive() {
			total += booking.Quantity
		}
	}
	return total, nil
}

func (f *fakeBookingRepo) FindByUserID(_ context.Context, userID uint) ([]domain.BookedOffer, error) {
	var out []domain.BookedOffer
	for _, booking := range f.bookings {
		if booking.UserID == userID {
			out = append(out, domain.BookedOffer{
				Booking:  booking,
				Category: f.categories[booking.StockID],
			})
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) FindActiveByStockID(_ context.Context, stockID uint) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, booking := range f.bookings {
		if booking.StockID == stockID && booking.IsActive() {
			out = append(out, booking)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) FindActiveByUserID(_ context.Context, userID uint) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, booking := range f.bookings {
		if booking.UserID == userID && booking.IsActive() {
			out = append(out, booking)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) FindUsedEventBookingsBetween(_ context.Context, from, to time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, booking := range f.bookings {
		if !booking.IsUsed {
			continue
		}
		if !f.categories[booking.StockID].IsEvent() {
			continue
		}
		beginning := f.beginnings[booking.StockID]
		if beginning == nil || beginning.Before(from) || beginning.After(to) {
			continue
		}
		out = append(out, booking)
	}
	return out, nil
}
