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
)

var (
	ErrUserEmailExists = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrDepositExists   = errors.New("user already has a deposit")
	ErrDepositNotFound = errors.New("deposit not found")
)

type User struct {
	ID uint `gorm:"primaryKey"`

	Email    string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
	Name     string `gorm:"not null"`

	DateOfBirth       *time.Time
	IsAdmin           bool `gorm:"not null;default:false"`
	IsActive          bool `gorm:"not null;default:true"`
	CanBookFreeOffers bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Deposit struct {
	ID             uint            `gorm:"primaryKey"`
	UserID         uint            `gorm:"not null;index"`
	User           User            `gorm:"foreignKey:UserID"`
	Amount         decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Source         string          `gorm:"not null"`
	ExpirationDate *time.Time
	CreatedAt      time.Time `gorm:"not null"`
}

type FraudCheck struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          uint   `gorm:"not null;index"`
	User            User   `gorm:"foreignKey:UserID"`
	Type            string `gorm:"not null"`
	Status          string `gorm:"not null"`
	ReasonCodes     string // comma-separated
	EligibilityType string `gorm:"not null"`
	DateCreated     time.Time
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_users_email"`) {
			return User{}, ErrUserEmailExists
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) Update(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Save(&user)
	if result.Error != nil {
		return User{}, result.Error
	}
	return user, nil
}

// InsertDeposit grants a deposit. It refuses when the user already holds one
// that has not expired; the check and the insert share a transaction so two
// concurrent activations cannot both succeed.
func (d *UserDAO) InsertDeposit(ctx context.Context, deposit Deposit) (Deposit, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&Deposit{}).
			Where("user_id = ? AND (expiration_date IS NULL OR expiration_date > now())", deposit.UserID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDepositExists
		}

		return tx.Create(&deposit).Error
	})
	if err != nil {
		return Deposit{}, err
	}

	return deposit, nil
}

// FindLatestDepositByUserID returns the user's most recent deposit, expired
// or not. Callers decide what expiry means for them.
func (d *UserDAO) FindLatestDepositByUserID(ctx context.Context, userID uint) (Deposit, error) {
	var deposit Deposit

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&deposit)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Deposit{}, ErrDepositNotFound
		}

		return Deposit{}, result.Error
	}

	return deposit, nil
}

func (d *UserDAO) FindFraudChecksByUserID(ctx context.Context, userID uint) ([]FraudCheck, error) {
	var checks []FraudCheck

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_created ASC").
		Find(&checks)
	if result.Error != nil {
		return nil, result.Error
	}

	return checks, nil
}

func (d *UserDAO) InsertFraudCheck(ctx context.Context, check FraudCheck) (FraudCheck, error) {
	result := d.db.WithContext(ctx).Create(&check)
	if result.Error != nil {
		return FraudCheck{}, result.Error
	}
	return check, nil
}
