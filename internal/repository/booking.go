package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/culturepass/booking-api/internal/domain"
	"github.com/culturepass/booking-api/internal/repository/dao"
)

var (
	ErrBookingNotFound    = dao.ErrBookingNotFound
	ErrBookingTokenExists = dao.ErrBookingTokenExists
)

type BookingDAO interface {
	Insert(ctx context.Context, booking dao.Booking) (dao.Booking, error)
	FindByID(ctx context.Context, id uint) (dao.Booking, error)
	FindByToken(ctx context.Context, token string) (dao.Booking, error)
	Update(ctx context.Context, booking dao.Booking) (dao.Booking, error)
	HasActiveBooking(ctx context.Context, userID, stockID uint) (bool, error)
	SumActiveQuantityByStockID(ctx context.Context, stockID uint) (int, error)
	FindByUserID(ctx context.Context, userID uint) ([]dao.BookingWithCategory, error)
	FindActiveByStockID(ctx context.Context, stockID uint) ([]dao.Booking, error)
	FindActiveByUserID(ctx context.Context, userID uint) ([]dao.Booking, error)
	FindUsedEventBookingsBetween(ctx context.Context, from, to time.Time) ([]dao.Booking, error)
}

type BookingRepository struct {
	dao BookingDAO
}

func NewBookingRepository(dao BookingDAO) *BookingRepository {
	return &BookingRepository{
		dao: dao,
	}
}

func (r *BookingRepository) domainToDao(b domain.Booking) dao.Booking {
	return dao.Booking{
		ID:               b.ID,
		UserID:           b.UserID,
		StockID:          b.StockID,
		Quantity:         b.Quantity,
		Amount:           b.Amount,
		Token:            b.Token,
		IsUsed:           b.IsUsed,
		DateUsed:         b.DateUsed,
		IsCancelled:      b.IsCancelled,
		CancellationDate: b.CancellationDate,
		DateCreated:      b.DateCreated,
	}
}

func (r *BookingRepository) daoToDomain(b dao.Booking) domain.Booking {
	return domain.Booking{
		ID:               b.ID,
		UserID:           b.UserID,
		StockID:          b.StockID,
		Quantity:         b.Quantity,
		Amount:           b.Amount,
		Token:            b.Token,
		IsUsed:           b.IsUsed,
		DateUsed:         b.DateUsed,
		IsCancelled:      b.IsCancelled,
		CancellationDate: b.CancellationDate,
		DateCreated:      b.DateCreated,
	}
}

// Create persists the booking through the dao's guarded insert. Capacity and
// balance races surface here as domain rejections: the dao re-validated both
// under a row lock and lost.
func (r *BookingRepository) Create(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(booking))
	if err != nil {
		switch {
		case errors.Is(err, dao.ErrInsufficientStockCapacity):
			return domain.Booking{}, domain.ErrInsufficientStockCapacity
		case errors.Is(err, dao.ErrInsufficientFunds):
			return domain.Booking{}, domain.ErrInsufficientFunds
		case errors.Is(err, dao.ErrBookingExists):
			return domain.Booking{}, domain.ErrDuplicateBooking
		}

		return domain.Booking{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uint) (domain.Booking, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *BookingRepository) FindByToken(ctx context.Context, token string) (domain.Booking, error) {
	found, err := r.dao.FindByToken(ctx, token)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("r.dao.FindByToken -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *BookingRepository) Update(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(booking))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *BookingRepository) HasActiveBooking(ctx context.Context, userID, stockID uint) (bool, error) {
	has, err := r.dao.HasActiveBooking(ctx, userID, stockID)
	if err != nil {
		return false, fmt.Errorf("r.dao.HasActiveBooking -> %w", err)
	}

	return has, nil
}

func (r *BookingRepository) SumActiveQuantity(ctx context.Context, stockID uint) (int, error) {
	consumed, err := r.dao.SumActiveQuantityByStockID(ctx, stockID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.SumActiveQuantityByStockID -> %w", err)
	}

	return consumed, nil
}

func (r *BookingRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.BookedOffer, error) {
	rows, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	bookings := make([]domain.BookedOffer, len(rows))
	for i, row := range rows {
		bookings[i] = domain.BookedOffer{
			Booking:  r.daoToDomain(row.Booking),
			Category: domain.OfferCategory(row.Category),
		}
	}

	return bookings, nil
}

func (r *BookingRepository) FindActiveByStockID(ctx context.Context, stockID uint) ([]domain.Booking, error) {
	found, err := r.dao.FindActiveByStockID(ctx, stockID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindActiveByStockID -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *BookingRepository) FindActiveByUserID(ctx context.Context, userID uint) ([]domain.Booking, error) {
	found, err := r.dao.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindActiveByUserID -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *BookingRepository) FindUsedEventBookingsBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	found, err := r.dao.FindUsedEventBookingsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindUsedEventBookingsBetween -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *BookingRepository) daosToDomain(daoBookings []dao.Booking) []domain.Booking {
	bookings := make([]domain.Booking, len(daoBookings))
	for i, b := range daoBookings {
		bookings[i] = r.daoToDomain(b)
	}
	return bookings
}
