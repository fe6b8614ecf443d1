package repository

import (
	"context"
	"fmt"

	"github.com/culturepass/booking-api/internal/domain"
	"github.com/culturepass/booking-api/internal/repository/dao"
)

var (
	ErrOfferNotFound = dao.ErrOfferNotFound
	ErrStockNotFound = dao.ErrStockNotFound
)

type OfferDAO interface {
	Insert(ctx context.Context, offer dao.Offer) (dao.Offer, error)
	FindByID(ctx context.Context, id uint) (dao.Offer, error)
	Update(ctx context.Context, offer dao.Offer) (dao.Offer, error)
	InsertStock(ctx context.Context, stock dao.Stock) (dao.Stock, error)
	FindStockByID(ctx context.Context, id uint) (dao.Stock, error)
	UpdateStock(ctx context.Context, stock dao.Stock) (dao.Stock, error)
	FindStockContext(ctx context.Context, stockID uint) (dao.StockContext, error)
}

type OfferRepository struct {
	dao OfferDAO
}

func NewOfferRepository(dao OfferDAO) *OfferRepository {
	return &OfferRepository{
		dao: dao,
	}
}

// StockContext is the consistent snapshot the booking rules fold over.
type StockContext struct {
	Stock          domain.Stock
	Offer          domain.Offer
	VenueValidated bool
	OffererID      uint
	OffererActive  bool
}

func (r *OfferRepository) offerDomainToDao(o domain.Offer) dao.Offer {
	return dao.Offer{
		ID:             o.ID,
		VenueID:        o.VenueID,
		Name:           o.Name,
		Category:       string(o.Category),
		IsActive:       o.IsActive,
		LastProviderID: o.LastProviderID,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func (r *OfferRepository) offerDaoToDomain(o dao.Offer) domain.Offer {
	return domain.Offer{
		ID:             o.ID,
		VenueID:        o.VenueID,
		Name:           o.Name,
		Category:       domain.OfferCategory(o.Category),
		IsActive:       o.IsActive,
		LastProviderID: o.LastProviderID,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func (r *OfferRepository) stockDomainToDao(s domain.Stock) dao.Stock {
	return dao.Stock{
		ID:                   s.ID,
		OfferID:              s.OfferID,
		Price:                s.Price,
		Quantity:             s.Quantity,
		BookingLimitDatetime: s.BookingLimitDatetime,
		BeginningDatetime:    s.BeginningDatetime,
		IsSoftDeleted:        s.IsSoftDeleted,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

func (r *OfferRepository) stockDaoToDomain(s dao.Stock) domain.Stock {
	return domain.Stock{
		ID:                   s.ID,
		OfferID:              s.OfferID,
		Price:                s.Price,
		Quantity:             s.Quantity,
		BookingLimitDatetime: s.BookingLimitDatetime,
		BeginningDatetime:    s.BeginningDatetime,
		IsSoftDeleted:        s.IsSoftDeleted,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

func (r *OfferRepository) Create(ctx context.Context, offer domain.Offer) (domain.Offer, error) {
	created, err := r.dao.Insert(ctx, r.offerDomainToDao(offer))
	if err != nil {
		return domain.Offer{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.offerDaoToDomain(created), nil
}

func (r *OfferRepository) FindByID(ctx context.Context, id uint) (domain.Offer, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Offer{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.offerDaoToDomain(found), nil
}

func (r *OfferRepository) Update(ctx context.Context, offer domain.Offer) (domain.Offer, error) {
	updated, err := r.dao.Update(ctx, r.offerDomainToDao(offer))
	if err != nil {
		return domain.Offer{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.offerDaoToDomain(updated), nil
}

func (r *OfferRepository) CreateStock(ctx context.Context, stock domain.Stock) (domain.Stock, error) {
	created, err := r.dao.InsertStock(ctx, r.stockDomainToDao(stock))
	if err != nil {
		return domain.Stock{}, fmt.Errorf("r.dao.InsertStock -> %w", err)
	}

	return r.stockDaoToDomain(created), nil
}

func (r *OfferRepository) FindStockByID(ctx context.Context, id uint) (domain.Stock, error) {
	found, err := r.dao.FindStockByID(ctx, id)
	if err != nil {
		return domain.Stock{}, fmt.Errorf("r.dao.FindStockByID -> %w", err)
	}

	return r.stockDaoToDomain(found), nil
}

func (r *OfferRepository) UpdateStock(ctx context.Context, stock domain.Stock) (domain.Stock, error) {
	updated, err := r.dao.UpdateStock(ctx, r.stockDomainToDao(stock))
	if err != nil {
		return domain.Stock{}, fmt.Errorf("r.dao.UpdateStock -> %w", err)
	}

	return r.stockDaoToDomain(updated), nil
}

func (r *OfferRepository) FindStockContext(ctx context.Context, stockID uint) (StockContext, error) {
	found, err := r.dao.FindStockContext(ctx, stockID)
	if err != nil {
		return StockContext{}, fmt.Errorf("r.dao.FindStockContext -> %w", err)
	}

	return StockContext{
		Stock:          r.stockDaoToDomain(found.Stock),
		Offer:          r.offerDaoToDomain(found.Offer),
		VenueValidated: found.VenueValidated,
		OffererID:      found.OffererID,
		OffererActive:  found.OffererActive,
	}, nil
}
