package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrOffererNotFound        = errors.New("offerer not found")
	ErrVenueNotFound          = errors.New("venue not found")
	ErrOffererAlreadyValidated = errors.New("offerer already validated")
)

type Offerer struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"not null"`
	Siren           string `gorm:"unique;not null"`
	// No DB-side default: gorm would silently drop an explicit false on
	// insert, and new offerers start inactive.
	IsActive        bool   `gorm:"not null"`
	ValidationToken *string
	Venues          []Venue   `gorm:"foreignKey:OffererID"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

type Venue struct {
	ID              uint    `gorm:"primaryKey"`
	OffererID       uint    `gorm:"not null;index"`
	Offerer         Offerer `gorm:"foreignKey:OffererID"`
	Name            string  `gorm:"not null"`
	Address         *string
	IsVirtual       bool `gorm:"not null;default:false"`
	ValidationToken *string
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

type UserOfferer struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"not null;index:idx_user_offerers,unique"`
	OffererID uint    `gorm:"not null;index:idx_user_offerers,unique"`
	User      User    `gorm:"foreignKey:UserID"`
	Offerer   Offerer `gorm:"foreignKey:OffererID"`
	CreatedAt time.Time
}

type OffererDAO struct {
	db *gorm.DB
}

func NewOffererDAO(db *gorm.DB) *OffererDAO {
	return &OffererDAO{
		db: db,
	}
}

func (d *OffererDAO) Insert(ctx context.Context, offerer Offerer) (Offerer, error) {
	result := d.db.WithContext(ctx).Create(&offerer)
	if result.Error != nil {
		return Offerer{}, result.Error
	}
	return offerer, nil
}

func (d *OffererDAO) FindByID(ctx context.Context, id uint) (Offerer, error) {
	var offerer Offerer

	result := d.db.WithContext(ctx).First(&offerer, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Offerer{}, ErrOffererNotFound
		}
		return Offerer{}, result.Error
	}

	return offerer, nil
}

// Validate clears the offerer's validation token by matching it, so a stale
// or guessed token never validates anything.
func (d *OffererDAO) Validate(ctx context.Context, offererID uint, validationToken string) (Offerer, error) {
	var offerer Offerer

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&offerer, offererID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOffererNotFound
			}
			return err
		}

		if offerer.ValidationToken == nil {
			return ErrOffererAlreadyValidated
		}
		if *offerer.ValidationToken != validationToken {
			return ErrOffererNotFound
		}

		offerer.ValidationToken = nil
		offerer.IsActive = true
		return tx.Save(&offerer).Error
	})
	if err != nil {
		return Offerer{}, err
	}

	return offerer, nil
}

func (d *OffererDAO) Update(ctx context.Context, offerer Offerer) (Offerer, error) {
	result := d.db.WithContext(ctx).Save(&offerer)
	if result.Error != nil {
		return Offerer{}, result.Error
	}
	return offerer, nil
}

func (d *OffererDAO) InsertVenue(ctx context.Context, venue Venue) (Venue, error) {
	result := d.db.WithContext(ctx).Create(&venue)
	if result.Error != nil {
		return Venue{}, result.Error
	}
	return venue, nil
}

func (d *OffererDAO) FindVenueByID(ctx context.Context, id uint) (Venue, error) {
	var venue Venue

	result := d.db.WithContext(ctx).First(&venue, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Venue{}, ErrVenueNotFound
		}
		return Venue{}, result.Error
	}

	return venue, nil
}

func (d *OffererDAO) InsertUserOfferer(ctx context.Context, userOfferer UserOfferer) (UserOfferer, error) {
	result := d.db.WithContext(ctx).Create(&userOfferer)
	if result.Error != nil {
		return UserOfferer{}, result.Error
	}
	return userOfferer, nil
}

func (d *OffererDAO) IsUserOffererEditor(ctx context.Context, userID, offererID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&UserOfferer{}).
		Where("user_id = ? AND offerer_id = ?", userID, offererID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}
