package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturepass/booking-api/internal/domain"
	"github.com/culturepass/booking-api/internal/repository"
)

var testNow = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

func testPolicy() BookingPolicy {
	return BookingPolicy{
		Caps: domain.ExpenseCaps{
			Physical: decimal.NewFromInt(200),
			Digital:  decimal.NewFromInt(200),
		},
		ActivationDepositAmount: decimal.NewFromInt(500),
		ValidationWindow:        72 * time.Hour,
		Eligibility:             domain.EligibilityWindow{MinAge: 15, MaxAge: 19},
	}
}

type bookingFixture struct {
	svc         *BookingService
	bookingRepo *fakeBookingRepo
	userRepo    *fakeUserRepo
	stockRepo   *fakeStockRepo
	offererRepo *fakeOffererRepo
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	f := &bookingFixture{
		bookingRepo: newFakeBookingRepo(),
		userRepo:    newFakeUserRepo(),
		stockRepo:   newFakeStockRepo(),
		offererRepo: newFakeOffererRepo(),
	}
	f.svc = NewBookingService(f.bookingRepo, f.userRepo, f.stockRepo, f.offererRepo, testPolicy())
	f.svc.now = func() time.Time { return testNow }

	return f
}

// beneficiary seeds an activated user with a 500 EUR deposit.
func (f *bookingFixture) beneficiary(id uint) domain.User {
	user := domain.User{ID: id, IsActive: true, CanBookFreeOffers: true}
	f.userRepo.users[id] = user
	f.userRepo.deposits[id] = domain.Deposit{ID: id, UserID: id, Amount: decimal.NewFromInt(500)}
	return user
}

// addStock seeds a bookable stock and returns its ID.
func (f *bookingFixture) addStock(id uint, price int64, quantity *int, category domain.OfferCategory) {
	f.stockRepo.contexts[id] = repository.StockContext{
		Stock: domain.Stock{
			ID:       id,
			OfferID:  id,
			Price:    decimal.NewFromInt(price),
			Quantity: quantity,
		},
		Offer: domain.Offer{
			ID:       id,
			Category: category,
			IsActive: true,
		},
		VenueValidated: true,
		OffererID:      1,
		OffererActive:  true,
	}
	f.bookingRepo.categories[id] = category
}

func (f *bookingFixture) eventStock(id uint, price int64, beginning time.Time) {
	f.addStock(id, price, nil, domain.CategoryEvent)
	sc := f.stockRepo.contexts[id]
	sc.Stock.BeginningDatetime = &beginning
	f.stockRepo.contexts[id] = sc
}

func TestBookOffer_Succeeds(t *testing.T) {
	f := newBookingFixture(t)
	f.beneficiary(1)
	f.addStock(10, 30, intPtr(5), domain.CategoryEvent)

	booking, err := f.svc.BookOffer(context.Background(), 1, 10, 2)
	require.NoError(t, err)

	assert.Equal(t, uint(1), booking.UserID)
	assert.Equal(t, uint(10), booking.StockID)
	assert.Equal(t, 2, booking.Quantity)
	assert.True(t, booking.Amount.Equal(decimal.NewFromInt(30)), "amount is the unit price")
	assert.Len(t, booking.Token, 6)
	assert.Equal(t, testNow, booking.DateCreated)
	assert.False(t, booking.IsUsed)
	assert.False(t, booking.IsCancelled)
}

func TestBookOffer_AmountIsSnapshotted(t *testing.T) {
	// GIVEN: A booking made at price 30
	// WHEN: The stock price later changes
	// THEN: The booking still costs 30

	f := newBookingFixture(t)
	f.beneficiary(1)
	f.addStock(10, 30, nil, domain.CategoryEvent)

	booking, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
	require.NoError(t, err)

	sc := f.stockRepo.contexts[10]
	sc.Stock.Price = decimal.NewFromInt(99)
	f.stockRepo.contexts[10] = sc

	stored, err := f.bookingRepo.FindByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total().Equal(decimal.NewFromInt(30)))
}

func TestBookOffer_InactiveStock(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(sc *repository.StockContext)
	}{
		{"soft-deleted stock", func(sc *repository.StockContext) { sc.Stock.IsSoftDeleted = true }},
		{"inactive offer", func(sc *repository.StockContext) { sc.Offer.IsActive = false }},
		{"inactive offerer", func(sc *repository.StockContext) { sc.OffererActive = false }},
		{"unvalidated venue", func(sc *repository.StockContext) { sc.VenueValidated = false }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newBookingFixture(t)
			f.beneficiary(1)
			f.addStock(10, 30, nil, domain.CategoryEvent)

			sc := f.stockRepo.contexts[10]
			tc.mutate(&sc)
			f.stockRepo.contexts[10] = sc

			_, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
			assert.ErrorIs(t, err, domain.ErrStockInactive)
		})
	}
}

func TestBookOffer_BookingLimitPassed(t *testing.T) {
	f := newBookingFixture(t)
	f.beneficiary(1)
	f.addStock(10, 30, nil, domain.CategoryEvent)

	limit := testNow.Add(-time.Hour)
	sc := f.stockRepo.contexts[10]
	sc.Stock.BookingLimitDatetime = &limit
	f.stockRepo.contexts[10] = sc

	_, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
	assert.ErrorIs(t, err, domain.ErrBookingLimitPassed)
}

func TestBookOffer_PastEventIsNotBookable(t *testing.T) {
	f := newBookingFixture(t)
	f.beneficiary(1)
	f.eventStock(10, 30, testNow.Add(-time.Hour))

	_, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
	assert.ErrorIs(t, err, domain.ErrBookingLimitPassed)
}

func TestBookOffer_DuplicateBooking(t *testing.T) {
	f := newBookingFixture(t)
	f.beneficiary(1)
	f.addStock(10, 30, nil, domain.CategoryEvent)

	_, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
	require.NoError(t, err)

	_, err = f.svc.BookOffer(context.Background(), 1, 10, 1)
	assert.ErrorIs(t, err, domain.ErrDuplicateBooking)

	t.Run("a cancelled booking does not block rebooking", func(t *testing.T) {
		for id, booking := range f.bookingRepo.bookings {
			booking.IsCancelled = true
			f.bookingRepo.bookings[id] = booking
		}

		_, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
		assert.NoError(t, err)
	})
}

func TestBookOffer_InsufficientCapacity(t *testing.T) {
	f := newBookingFixture(t)
	f.beneficiary(1)
	f.beneficiary(2)
	f.addStock(10, 10, intPtr(3), domain.CategoryEvent)

	_, err := f.svc.BookOffer(context.Background(), 1, 10, 2)
	require.NoError(t, err)

	_, err = f.svc.BookOffer(context.Background(), 2, 10, 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientStockCapacity)

	var capErr *domain.InsufficientCapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 1, capErr.Remaining)
	assert.Equal(t, 2, capErr.Requested)

	t.Run("cancelled bookings release capacity", func(t *testing.T) {
		for id, booking := range f.bookingRepo.bookings {
			booking.IsCancelled = true
			f.bookingRepo.bookings[id] = booking
		}

		_, err := f.svc.BookOffer(context.Background(), 2, 10, 2)
		assert.NoError(t, err)
	})
}

func TestBookOffer_FreeOfferNeedsActivation(t *testing.T) {
	f := newBookingFixture(t)
	user := f.beneficiary(1)
	user.CanBookFreeOffers = false
	f.userRepo.users[1] = user
	f.addStock(10, 0, nil, domain.CategoryDigitalThing)

	_, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
	assert.ErrorIs(t, err, domain.ErrUserCannotBookFreeOffers)
}

func TestBookOffer_InsufficientFunds(t *testing.T) {
	f := newBookingFixture(t)
	f.beneficiary(1)
	f.addStock(10, 450, nil, domain.CategoryEvent)
	f.addStock(11, 100, nil, domain.CategoryEvent)

	_, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
	require.NoError(t, err)

	_, err = f.svc.BookOffer(context.Background(), 1, 11, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	var fundsErr *domain.InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)
	assert.True(t, fundsErr.Remaining.Equal(decimal.NewFromInt(50)))
	assert.True(t, fundsErr.Required.Equal(decimal.NewFromInt(100)))
}

func TestBookOffer_NoDepositMeansNoFunds(t *testing.T) {
	f := newBookingFixture(t)
	f.userRepo.users[1] = domain.User{ID: 1, IsActive: true, CanBookFreeOffers: true}
	f.addStock(10, 10, nil, domain.CategoryEvent)

	_, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestBookOffer_ExpiredDepositNoLongerFunds(t *testing.T) {
	f := newBookingFixture(t)
	f.beneficiary(1)
	expired := testNow.Add(-time.Hour)
	deposit := f.userRepo.deposits[1]
	deposit.ExpirationDate = &expired
	f.userRepo.deposits[1] = deposit
	f.addStock(10, 10, nil, domain.CategoryEvent)

	_, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestBookOffer_CategoryCaps(t *testing.T) {
	t.Run("digital spending beyond the cap is rejected", func(t *testing.T) {
		f := newBookingFixture(t)
		f.beneficiary(1)
		f.addStock(10, 150, nil, domain.CategoryDigitalThing)
		f.addStock(11, 60, nil, domain.CategoryDigitalThing)

		_, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
		require.NoError(t, err)

		_, err = f.svc.BookOffer(context.Background(), 1, 11, 1)
		assert.ErrorIs(t, err, domain.ErrDigitalExpenseLimit)

		var limitErr *domain.ExpenseLimitError
		require.ErrorAs(t, err, &limitErr)
		assert.True(t, limitErr.Cap.Equal(decimal.NewFromInt(200)))
		assert.True(t, limitErr.Spent.Equal(decimal.NewFromInt(150)))
	})

	t.Run("physical cap is tracked separately", func(t *testing.T) {
		f := newBookingFixture(t)
		f.beneficiary(1)
		f.addStock(10, 150, nil, domain.CategoryDigitalThing)
		f.addStock(11, 60, nil, domain.CategoryPhysicalThing)

		_, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
		require.NoError(t, err)

		_, err = f.svc.BookOffer(context.Background(), 1, 11, 1)
		assert.NoError(t, err, "digital spending does not consume the physical cap")
	})

	t.Run("events are exempt from both caps", func(t *testing.T) {
		f := newBookingFixture(t)
		f.beneficiary(1)
		f.addStock(10, 450, nil, domain.CategoryEvent)

		_, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
		assert.NoError(t, err, "an event may exceed any category cap as long as funds allow")
	})
}

func TestBookOffer_RetriesOnTokenCollision(t *testing.T) {
	f := newBookingFixture(t)
	f.beneficiary(1)
	f.addStock(10, 10, nil, domain.CategoryEvent)

	// The first generated token collides, the second does not.
	collisions := 0
	f.bookingRepo.collisionFn = func(string) bool {
		if collisions == 0 {
			collisions++
			return true
		}
		return false
	}

	booking, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, collisions, "first token collided, second succeeded")
	assert.Len(t, booking.Token, 6)
}

func TestCancelBooking(t *testing.T) {
	setup := func(t *testing.T) (*bookingFixture, domain.Booking) {
		f := newBookingFixture(t)
		f.beneficiary(1)
		f.addStock(10, 30, nil, domain.CategoryEvent)
		booking, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
		require.NoError(t, err)
		return f, booking
	}

	t.Run("the owner may cancel", func(t *testing.T) {
		f, booking := setup(t)
		owner := f.userRepo.users[1]

		cancelled, err := f.svc.CancelBooking(context.Background(), booking.ID, &owner)
		require.NoError(t, err)
		assert.True(t, cancelled.IsCancelled)
		require.NotNil(t, cancelled.CancellationDate)
		assert.Equal(t, testNow, *cancelled.CancellationDate)
	})

	t.Run("an admin may cancel", func(t *testing.T) {
		f, booking := setup(t)
		admin := domain.User{ID: 99, IsAdmin: true}

		_, err := f.svc.CancelBooking(context.Background(), booking.ID, &admin)
		assert.NoError(t, err)
	})

	t.Run("an editor of the offerer may cancel", func(t *testing.T) {
		f, booking := setup(t)
		editor := domain.User{ID: 50}
		f.offererRepo.grant(50, 1)

		_, err := f.svc.CancelBooking(context.Background(), booking.ID, &editor)
		assert.NoError(t, err)
	})

	t.Run("a stranger may not cancel", func(t *testing.T) {
		f, booking := setup(t)
		stranger := domain.User{ID: 77}

		_, err := f.svc.CancelBooking(context.Background(), booking.ID, &stranger)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("nil actor may not cancel", func(t *testing.T) {
		f, booking := setup(t)

		_, err := f.svc.CancelBooking(context.Background(), booking.ID, nil)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("a used booking cannot be cancelled", func(t *testing.T) {
		f, booking := setup(t)
		stored := f.bookingRepo.bookings[booking.ID]
		stored.IsUsed = true
		f.bookingRepo.bookings[booking.ID] = stored
		owner := f.userRepo.users[1]

		_, err := f.svc.CancelBooking(context.Background(), booking.ID, &owner)
		assert.ErrorIs(t, err, domain.ErrBookingAlreadyUsed)
	})

	t.Run("cancelling twice fails the second time", func(t *testing.T) {
		f, booking := setup(t)
		owner := f.userRepo.users[1]

		_, err := f.svc.CancelBooking(context.Background(), booking.ID, &owner)
		require.NoError(t, err)

		_, err = f.svc.CancelBooking(context.Background(), booking.ID, &owner)
		assert.ErrorIs(t, err, domain.ErrBookingAlreadyCancelled)
	})
}

func TestMarkUsed(t *testing.T) {
	setup := func(t *testing.T, category domain.OfferCategory) (*bookingFixture, domain.Booking) {
		f := newBookingFixture(t)
		f.beneficiary(1)
		f.addStock(10, 30, nil, category)
		booking, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
		require.NoError(t, err)
		return f, booking
	}

	t.Run("marks the booking used", func(t *testing.T) {
		f, booking := setup(t, domain.CategoryPhysicalThing)

		used, err := f.svc.MarkUsed(context.Background(), booking.Token)
		require.NoError(t, err)
		assert.True(t, used.IsUsed)
		require.NotNil(t, used.DateUsed)
		assert.Equal(t, testNow, *used.DateUsed)
	})

	t.Run("a cancelled booking cannot be used", func(t *testing.T) {
		f, booking := setup(t, domain.CategoryPhysicalThing)
		owner := f.userRepo.users[1]
		_, err := f.svc.CancelBooking(context.Background(), booking.ID, &owner)
		require.NoError(t, err)

		_, err = f.svc.MarkUsed(context.Background(), booking.Token)
		assert.ErrorIs(t, err, domain.ErrBookingIsCancelled)
	})

	t.Run("using twice fails the second time", func(t *testing.T) {
		f, booking := setup(t, domain.CategoryPhysicalThing)

		_, err := f.svc.MarkUsed(context.Background(), booking.Token)
		require.NoError(t, err)

		_, err = f.svc.MarkUsed(context.Background(), booking.Token)
		assert.ErrorIs(t, err, domain.ErrBookingAlreadyUsed)
	})

	t.Run("event validation window", func(t *testing.T) {
		bookEvent := func(t *testing.T, beginning time.Time) (*bookingFixture, domain.Booking) {
			f := newBookingFixture(t)
			f.beneficiary(1)
			f.eventStock(10, 30, beginning)
			booking, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
			require.NoError(t, err)
			return f, booking
		}

		t.Run("73 hours before the event is too early", func(t *testing.T) {
			f, booking := bookEvent(t, testNow.Add(73*time.Hour))

			_, err := f.svc.MarkUsed(context.Background(), booking.Token)
			assert.ErrorIs(t, err, domain.ErrTooEarlyToValidate)
		})

		t.Run("71 hours before the event is allowed", func(t *testing.T) {
			f, booking := bookEvent(t, testNow.Add(71*time.Hour))

			_, err := f.svc.MarkUsed(context.Background(), booking.Token)
			assert.NoError(t, err)
		})

		t.Run("after the event is allowed", func(t *testing.T) {
			f, booking := bookEvent(t, testNow.Add(time.Hour))

			// The event has since taken place.
			past := testNow.Add(-time.Hour)
			sc := f.stockRepo.contexts[10]
			sc.Stock.BeginningDatetime = &past
			f.stockRepo.contexts[10] = sc

			_, err := f.svc.MarkUsed(context.Background(), booking.Token)
			assert.NoError(t, err)
		})
	})
}

func TestMarkUsed_ActivationGrant(t *testing.T) {
	setup := func(t *testing.T) (*bookingFixture, domain.Booking) {
		f := newBookingFixture(t)
		// Activation offers are free and bookable before activation.
		f.userRepo.users[1] = domain.User{ID: 1, IsActive: true, CanBookFreeOffers: true}
		f.addStock(10, 0, nil, domain.CategoryActivation)
		booking, err := f.svc.BookOffer(context.Background(), 1, 10, 1)
		require.NoError(t, err)
		return f, booking
	}

	t.Run("redeeming grants the deposit and free-offer ability", func(t *testing.T) {
		f, booking := setup(t)
		user := f.userRepo.users[1]
		user.CanBookFreeOffers = false
		f.userRepo.users[1] = user

		// CanBookFreeOffers was flipped after booking; redeeming restores it.
		used, err := f.svc.MarkUsed(context.Background(), booking.Token)
		require.NoError(t, err)
		assert.True(t, used.IsUsed)

		assert.True(t, f.userRepo.users[1].CanBookFreeOffers)

		deposit, err := f.userRepo.FindLatestDeposit(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, deposit.Amount.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, "activation", deposit.Source)
	})

	t.Run("a user with a deposit cannot redeem a second activation", func(t *testing.T) {
		f, booking := setup(t)
		f.userRepo.deposits[1] = domain.Deposit{ID: 9, UserID: 1, Amount: decimal.NewFromInt(500)}

		_, err := f.svc.MarkUsed(context.Background(), booking.Token)
		assert.ErrorIs(t, err, domain.ErrActivationAlreadyGranted)

		stored := f.bookingRepo.bookings[booking.ID]
		assert.False(t, stored.IsUsed, "the rejected redemption leaves the booking untouched")
	})

	t.Run("losing the grant race leaves the booking untouched", func(t *testing.T) {
		// A concurrent redemption inserted the deposit between the pre-check
		// and the grant; the deposit insert rejects and nothing is written.
		f, booking := setup(t)
		user := f.userRepo.users[1]
		user.CanBookFreeOffers = false
		f.userRepo.users[1] = user
		f.userRepo.createDepositErr = repository.ErrDepositExists

		_, err := f.svc.MarkUsed(context.Background(), booking.Token)
		assert.ErrorIs(t, err, domain.ErrActivationAlreadyGranted)

		stored := f.bookingRepo.bookings[booking.ID]
		assert.False(t, stored.IsUsed)
		assert.Nil(t, stored.DateUsed)
		assert.False(t, f.userRepo.users[1].CanBookFreeOffers)
	})
}
