package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOfferNotFound = errors.New("offer not found")
	ErrStockNotFound = errors.New("stock not found")
)

type Offer struct {
	ID             uint   `gorm:"primaryKey"`
	VenueID        uint   `gorm:"not null;index"`
	Venue          Venue  `gorm:"foreignKey:VenueID"`
	Name           string `gorm:"not null"`
	Category       string `gorm:"not null"`
	IsActive       bool   `gorm:"not null;default:true"`
	LastProviderID *uint
	Stocks         []Stock   `gorm:"foreignKey:OfferID"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

type Stock struct {
	ID                   uint            `gorm:"primaryKey"`
	OfferID              uint            `gorm:"not null;index"`
	Offer                Offer           `gorm:"foreignKey:OfferID"`
	Price                decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Quantity             *int            // NULL = unlimited
	BookingLimitDatetime *time.Time
	BeginningDatetime    *time.Time
	IsSoftDeleted        bool      `gorm:"not null;default:false"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// StockContext is everything the booking rules need to know about a stock's
// surroundings: the stock itself, its offer, and the activity flags of the
// owning venue and offerer.
type StockContext struct {
	Stock          Stock
	Offer          Offer
	VenueValidated bool
	OffererID      uint
	OffererActive  bool
}

type OfferDAO struct {
	db *gorm.DB
}

func NewOfferDAO(db *gorm.DB) *OfferDAO {
	return &OfferDAO{
		db: db,
	}
}

func (d *OfferDAO) Insert(ctx context.Context, offer Offer) (Offer, error) {
	result := d.db.WithContext(ctx).Create(&offer)
	if result.Error != nil {
		return Offer{}, result.Error
	}
	return offer, nil
}

func (d *OfferDAO) FindByID(ctx context.Context, id uint) (Offer, error) {
	var offer Offer

	result := d.db.WithContext(ctx).First(&offer, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Offer{}, ErrOfferNotFound
		}
		return Offer{}, result.Error
	}

	return offer, nil
}

func (d *OfferDAO) Update(ctx context.Context, offer Offer) (Offer, error) {
	result := d.db.WithContext(ctx).Save(&offer)
	if result.Error != nil {
		return Offer{}, result.Error
	}
	return offer, nil
}

func (d *OfferDAO) InsertStock(ctx context.Context, stock Stock) (Stock, error) {
	result := d.db.WithContext(ctx).Create(&stock)
	if result.Error != nil {
		return Stock{}, result.Error
	}
	return stock, nil
}

func (d *OfferDAO) FindStockByID(ctx context.Context, id uint) (Stock, error) {
	var stock Stock

	result := d.db.WithContext(ctx).First(&stock, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Stock{}, ErrStockNotFound
		}
		return Stock{}, result.Error
	}

	return stock, nil
}

func (d *OfferDAO) UpdateStock(ctx context.Context, stock Stock) (Stock, error) {
	result := d.db.WithContext(ctx).Save(&stock)
	if result.Error != nil {
		return Stock{}, result.Error
	}
	return stock, nil
}

// FindStockContext loads the stock with its offer, venue and offerer in one
// round trip so the booking rules see a consistent snapshot.
func (d *OfferDAO) FindStockContext(ctx context.Context, stockID uint) (StockContext, error) {
	var stock Stock

	result := d.db.WithContext(ctx).
		Preload("Offer").
		Preload("Offer.Venue").
		Preload("Offer.Venue.Offerer").
		First(&stock, stockID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return StockContext{}, ErrStockNotFound
		}
		return StockContext{}, result.Error
	}

	return StockContext{
		Stock:          stock,
		Offer:          stock.Offer,
		VenueValidated: stock.Offer.Venue.ValidationToken == nil,
		OffererID:      stock.Offer.Venue.OffererID,
		OffererActive:  stock.Offer.Venue.Offerer.IsActive,
	}, nil
}
