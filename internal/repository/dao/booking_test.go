package dao_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/culturepass/booking-api/internal/repository/dao"
)

// startPostgres brings up a throwaway postgres container and returns a
// migrated connection. Skips when no docker daemon is reachable.
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker is not available: %v", err)
	}
	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker is not available: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=booking",
			"POSTGRES_PASSWORD=booking",
			"POSTGRES_DB=booking_test",
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pool.Purge(resource)
	})
	_ = resource.Expire(180)

	dsn := fmt.Sprintf(
		"host=localhost port=%s user=booking password=booking dbname=booking_test sslmode=disable",
		resource.GetPort("5432/tcp"),
	)

	var db *gorm.DB
	pool.MaxWait = 2 * time.Minute
	err = pool.Retry(func() error {
		var openErr error
		db, openErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if openErr != nil {
			return openErr
		}
		sqlDB, pingErr := db.DB()
		if pingErr != nil {
			return pingErr
		}
		return sqlDB.Ping()
	})
	require.NoError(t, err)

	require.NoError(t, dao.InitTables(db))

	return db
}

// seedStock creates an offerer/venue/offer/stock chain and returns the stock ID.
func seedStock(t *testing.T, db *gorm.DB, quantity *int, price int64) uint {
	t.Helper()

	now := time.Now()
	offerer := dao.Offerer{Name: "Le Forum", Siren: "123456789", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&offerer).Error)

	venue := dao.Venue{OffererID: offerer.ID, Name: "Grande salle", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&venue).Error)

	offer := dao.Offer{VenueID: venue.ID, Name: "Concert", Category: "event", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&offer).Error)

	stock := dao.Stock{OfferID: offer.ID, Price: decimal.NewFromInt(price), Quantity: quantity, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&stock).Error)

	return stock.ID
}

// seedBeneficiary creates a user holding a deposit and returns the user ID.
func seedBeneficiary(t *testing.T, db *gorm.DB, email string, depositAmount int64) uint {
	t.Helper()

	now := time.Now()
	user := dao.User{Email: email, Password: "x", Name: "Test", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&user).Error)

	deposit := dao.Deposit{UserID: user.ID, Amount: decimal.NewFromInt(depositAmount), Source: "activation", CreatedAt: now}
	require.NoError(t, db.Create(&deposit).Error)

	return user.ID
}

func raceInserts(bookingDAO *dao.BookingDAO, bookings []dao.Booking) []error {
	start := make(chan struct{})
	errs := make([]error, len(bookings))

	var wg sync.WaitGroup
	for i := range bookings {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = bookingDAO.Insert(context.Background(), bookings[i])
		}(i)
	}
	close(start)
	wg.Wait()

	return errs
}

func TestBookingInsert_ConcurrentRequestsCannotOversell(t *testing.T) {
	// GIVEN: A stock with a single unit left
	// WHEN: Two users insert bookings at the same time
	// THEN: The row lock serializes them and exactly one wins

	db := startPostgres(t)
	bookingDAO := dao.NewBookingDAO(db)

	stockID := seedStock(t, db, intPtr(1), 10)
	alice := seedBeneficiary(t, db, "alice@example.com", 500)
	bob := seedBeneficiary(t, db, "bob@example.com", 500)

	errs := raceInserts(bookingDAO, []dao.Booking{
		{UserID: alice, StockID: stockID, Quantity: 1, Amount: decimal.NewFromInt(10), Token: "AAAAAA", DateCreated: time.Now()},
		{UserID: bob, StockID: stockID, Quantity: 1, Amount: decimal.NewFromInt(10), Token: "BBBBBB", DateCreated: time.Now()},
	})

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, dao.ErrInsufficientStockCapacity):
			rejected++
		default:
			t.Fatalf("unexpected insert error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	var count int64
	require.NoError(t, db.Model(&dao.Booking{}).
		Where("stock_id = ? AND is_cancelled = ?", stockID, false).
		Count(&count).Error)
	assert.EqualValues(t, 1, count, "only one unit was ever sold")
}

func TestBookingInsert_ConcurrentRequestsCannotOverspend(t *testing.T) {
	// GIVEN: A user whose deposit covers one booking but not two
	// WHEN: They insert bookings against two stocks at the same time
	// THEN: The deposit row lock serializes them and exactly one wins

	db := startPostgres(t)
	bookingDAO := dao.NewBookingDAO(db)

	first := seedStock(t, db, nil, 10)
	second := seedStock(t, db, nil, 10)
	userID := seedBeneficiary(t, db, "alice@example.com", 10)

	errs := raceInserts(bookingDAO, []dao.Booking{
		{UserID: userID, StockID: first, Quantity: 1, Amount: decimal.NewFromInt(10), Token: "CCCCCC", DateCreated: time.Now()},
		{UserID: userID, StockID: second, Quantity: 1, Amount: decimal.NewFromInt(10), Token: "DDDDDD", DateCreated: time.Now()},
	})

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, dao.ErrInsufficientFunds):
			rejected++
		default:
			t.Fatalf("unexpected insert error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
}

func TestBookingInsert_DuplicateActiveBookingIsRejected(t *testing.T) {
	// The partial unique index on (user_id, stock_id) backs up the service's
	// duplicate check; the violation maps to the repository sentinel.

	db := startPostgres(t)
	bookingDAO := dao.NewBookingDAO(db)

	stockID := seedStock(t, db, intPtr(5), 10)
	userID := seedBeneficiary(t, db, "alice@example.com", 500)

	_, err := bookingDAO.Insert(context.Background(), dao.Booking{
		UserID: userID, StockID: stockID, Quantity: 1,
		Amount: decimal.NewFromInt(10), Token: "EEEEEE", DateCreated: time.Now(),
	})
	require.NoError(t, err)

	_, err = bookingDAO.Insert(context.Background(), dao.Booking{
		UserID: userID, StockID: stockID, Quantity: 1,
		Amount: decimal.NewFromInt(10), Token: "FFFFFF", DateCreated: time.Now(),
	})
	assert.ErrorIs(t, err, dao.ErrBookingExists)
}

func intPtr(v int) *int {
	return &v
}
