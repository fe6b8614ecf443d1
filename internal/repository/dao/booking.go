package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBookingNotFound           = errors.New("booking not found")
	ErrBookingExists             = errors.New("active booking already exists for this user and stock")
	ErrBookingTokenExists        = errors.New("booking token already exists")
	ErrInsufficientStockCapacity = errors.New("insufficient stock capacity")
	ErrInsufficientFunds         = errors.New("insufficient funds")
)

type Booking struct {
	ID               uint            `gorm:"primaryKey"`
	UserID           uint            `gorm:"not null;index"`
	User             User            `gorm:"foreignKey:UserID"`
	StockID          uint            `gorm:"not null;index"`
	Stock            Stock           `gorm:"foreignKey:StockID"`
	Quantity         int             `gorm:"not null"`
	Amount           decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Token            string          `gorm:"unique;not null"`
	IsUsed           bool            `gorm:"not null;default:false"`
	DateUsed         *time.Time
	IsCancelled      bool `gorm:"not null;default:false"`
	CancellationDate *time.Time
	DateCreated      time.Time `gorm:"not null"`
}

// BookingWithCategory carries a booking together with the category of the
// offer it was made against, for the expense ledger.
type BookingWithCategory struct {
	Booking  Booking `gorm:"embedded"`
	Category string
}

type BookingDAO struct {
	db *gorm.DB
}

func NewBookingDAO(db *gorm.DB) *BookingDAO {
	return &BookingDAO{
		db: db,
	}
}

// Insert persists a booking after re-validating stock capacity and wallet
// balance inside the same transaction, under a FOR UPDATE lock on the stock
// row. Two concurrent requests against the same stock serialize here, so the
// capacity check the service ran outside the transaction cannot oversell.
// Same-user concurrent requests serialize on the deposit row lock.
func (d *BookingDAO) Insert(ctx context.Context, booking Booking) (Booking, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stock Stock
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&stock, booking.StockID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStockNotFound
			}
			return err
		}

		if stock.Quantity != nil {
			var consumed int64
			err = tx.Model(&Booking{}).
				Where("stock_id = ? AND is_cancelled = ?", stock.ID, false).
				Select("COALESCE(SUM(quantity), 0)").
				Scan(&consumed).Error
			if err != nil {
				return err
			}
			if int(consumed)+booking.Quantity > *stock.Quantity {
				return ErrInsufficientStockCapacity
			}
		}

		if booking.Amount.IsPositive() {
			var deposit Deposit
			err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("user_id = ? AND (expiration_date IS NULL OR expiration_date > now())", booking.UserID).
				Order("created_at DESC").
				First(&deposit).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrInsufficientFunds
				}
				return err
			}

			var spent decimal.Decimal
			err = tx.Model(&Booking{}).
				Where("user_id = ? AND is_cancelled = ?", booking.UserID, false).
				Select("COALESCE(SUM(amount * quantity), 0)").
				Scan(&spent).Error
			if err != nil {
				return err
			}

			cost := booking.Amount.Mul(decimal.NewFromInt(int64(booking.Quantity)))
			if deposit.Amount.Sub(spent).LessThan(cost) {
				return ErrInsufficientFunds
			}
		}

		return tx.Create(&booking).Error
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if strings.Contains(pgErr.Message, "uni_bookings_token") {
				return Booking{}, ErrBookingTokenExists
			}
			if strings.Contains(pgErr.Message, "idx_bookings_user_stock_active") {
				return Booking{}, ErrBookingExists
			}
		}

		return Booking{}, err
	}

	return booking, nil
}

func (d *BookingDAO) FindByID(ctx context.Context, id uint) (Booking, error) {
	var booking Booking

	result := d.db.WithContext(ctx).First(&booking, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Booking{}, ErrBookingNotFound
		}
		return Booking{}, result.Error
	}

	return booking, nil
}

func (d *BookingDAO) FindByToken(ctx context.Context, token string) (Booking, error) {
	var booking Booking

	result := d.db.WithContext(ctx).First(&booking, "token = ?", token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Booking{}, ErrBookingNotFound
		}
		return Booking{}, result.Error
	}

	return booking, nil
}

func (d *BookingDAO) Update(ctx context.Context, booking Booking) (Booking, error) {
	result := d.db.WithContext(ctx).Save(&booking)
	if result.Error != nil {
		return Booking{}, result.Error
	}
	return booking, nil
}

// HasActiveBooking reports whether the user already holds a non-cancelled
// booking for the stock.
func (d *BookingDAO) HasActiveBooking(ctx context.Context, userID, stockID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Booking{}).
		Where("user_id = ? AND stock_id = ? AND is_cancelled = ?", userID, stockID, false).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// SumActiveQuantityByStockID returns the quantity currently held by
// non-cancelled bookings against the stock.
func (d *BookingDAO) SumActiveQuantityByStockID(ctx context.Context, stockID uint) (int, error) {
	var consumed int64

	result := d.db.WithContext(ctx).Model(&Booking{}).
		Where("stock_id = ? AND is_cancelled = ?", stockID, false).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&consumed)
	if result.Error != nil {
		return 0, result.Error
	}

	return int(consumed), nil
}

func (d *BookingDAO) FindByUserID(ctx context.Context, userID uint) ([]BookingWithCategory, error) {
	var rows []BookingWithCategory

	result := d.db.WithContext(ctx).Table("bookings").
		Select("bookings.*, offers.category AS category").
		Joins("JOIN stocks ON stocks.id = bookings.stock_id").
		Joins("JOIN offers ON offers.id = stocks.offer_id").
		Where("bookings.user_id = ?", userID).
		Order("bookings.date_created ASC").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

func (d *BookingDAO) FindActiveByStockID(ctx context.Context, stockID uint) ([]Booking, error) {
	var bookings []Booking

	result := d.db.WithContext(ctx).
		Where("stock_id = ? AND is_cancelled = ?", stockID, false).
		Find(&bookings)
	if result.Error != nil {
		return nil, result.Error
	}

	return bookings, nil
}

func (d *BookingDAO) FindActiveByUserID(ctx context.Context, userID uint) ([]Booking, error) {
	var bookings []Booking

	result := d.db.WithContext(ctx).
		Where("user_id = ? AND is_cancelled = ?", userID, false).
		Find(&bookings)
	if result.Error != nil {
		return nil, result.Error
	}

	return bookings, nil
}

// FindUsedEventBookingsBetween returns used bookings whose event began inside
// the window, whenever they were validated. Feeds the quarantine remediation
// batch, which targets the affected events, not the validation timestamps.
func (d *BookingDAO) FindUsedEventBookingsBetween(ctx context.Context, from, to time.Time) ([]Booking, error) {
	var bookings []Booking

	result := d.db.WithContext(ctx).
		Joins("JOIN stocks ON stocks.id = bookings.stock_id").
		Joins("JOIN offers ON offers.id = stocks.offer_id").
		Where("bookings.is_used = ?", true).
		Where("offers.category = ?", "event").
		Where("stocks.beginning_datetime BETWEEN ? AND ?", from, to).
		Find(&bookings)
	if result.Error != nil {
		return nil, result.Error
	}

	return bookings, nil
}
