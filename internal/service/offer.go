package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/culturepass/booking-api/internal/domain"
	"github.com/culturepass/booking-api/internal/repository"
)

var ErrOfferNotFound = repository.ErrOfferNotFound

type OfferRepository interface {
	Create(ctx context.Context, offer domain.Offer) (domain.Offer, error)
	FindByID(ctx context.Context, id uint) (domain.Offer, error)
	Update(ctx context.Context, offer domain.Offer) (domain.Offer, error)
	CreateStock(ctx context.Context, stock domain.Stock) (domain.Stock, error)
	FindStockByID(ctx context.Context, id uint) (domain.Stock, error)
	UpdateStock(ctx context.Context, stock domain.Stock) (domain.Stock, error)
	FindStockContext(ctx context.Context, stockID uint) (repository.StockContext, error)
}

type OfferVenueRepository interface {
	FindVenueByID(ctx context.Context, id uint) (domain.Venue, error)
	IsEditor(ctx context.Context, userID, offererID uint) (bool, error)
}

// OfferService manages offers and their stocks on behalf of pro users.
type OfferService struct {
	offerRepo   OfferRepository
	venueRepo   OfferVenueRepository
	bookingRepo BookingRepository
	now         func() time.Time
}

func NewOfferService(offerRepo OfferRepository, venueRepo OfferVenueRepository, bookingRepo BookingRepository) *OfferService {
	return &OfferService{
		offerRepo:   offerRepo,
		venueRepo:   venueRepo,
		bookingRepo: bookingRepo,
		now:         time.Now,
	}
}

func (s *OfferService) authorizeOnVenue(ctx context.Context, venueID, actorID uint) error {
	venue, err := s.venueRepo.FindVenueByID(ctx, venueID)
	if err != nil {
		return fmt.Errorf("s.venueRepo.FindVenueByID -> %w", err)
	}

	isEditor, err := s.venueRepo.IsEditor(ctx, actorID, venue.OffererID)
	if err != nil {
		return fmt.Errorf("s.venueRepo.IsEditor -> %w", err)
	}
	if !isEditor {
		return domain.ErrForbidden
	}

	return nil
}

func (s *OfferService) CreateOffer(ctx context.Context, offer domain.Offer, actorID uint) (domain.Offer, error) {
	if err := s.authorizeOnVenue(ctx, offer.VenueID, actorID); err != nil {
		return domain.Offer{}, err
	}

	created, err := s.offerRepo.Create(ctx, offer)
	if err != nil {
		return domain.Offer{}, fmt.Errorf("s.offerRepo.Create -> %w", err)
	}

	return created, nil
}

func (s *OfferService) GetOffer(ctx context.Context, id uint) (domain.Offer, error) {
	offer, err := s.offerRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Offer{}, fmt.Errorf("s.offerRepo.FindByID -> %w", err)
	}

	return offer, nil
}

// UpdateOffer edits an offer's name and active flag. Provider-sourced offers
// are owned by their synchronization and cannot be edited by hand.
func (s *OfferService) UpdateOffer(ctx context.Context, offerID uint, name string, isActive bool, actorID uint) (domain.Offer, error) {
	offer, err := s.offerRepo.FindByID(ctx, offerID)
	if err != nil {
		return domain.Offer{}, fmt.Errorf("s.offerRepo.FindByID -> %w", err)
	}

	if offer.IsProviderSourced() {
		return domain.Offer{}, domain.ErrOfferIsProviderSourced
	}

	if err = s.authorizeOnVenue(ctx, offer.VenueID, actorID); err != nil {
		return domain.Offer{}, err
	}

	offer.Name = name
	offer.IsActive = isActive

	updated, err := s.offerRepo.Update(ctx, offer)
	if err != nil {
		return domain.Offer{}, fmt.Errorf("s.offerRepo.Update -> %w", err)
	}

	return updated, nil
}

func (s *OfferService) CreateStock(ctx context.Context, stock domain.Stock, actorID uint) (domain.Stock, error) {
	offer, err := s.offerRepo.FindByID(ctx, stock.OfferID)
	if err != nil {
		return domain.Stock{}, fmt.Errorf("s.offerRepo.FindByID -> %w", err)
	}

	if err = s.authorizeOnVenue(ctx, offer.VenueID, actorID); err != nil {
		return domain.Stock{}, err
	}

	created, err := s.offerRepo.CreateStock(ctx, stock)
	if err != nil {
		return domain.Stock{}, fmt.Errorf("s.offerRepo.CreateStock -> %w", err)
	}

	return created, nil
}

// UpdateStock edits a stock's price, quantity and schedule. Shrinking the
// quantity below the already-booked count is allowed; the booked bookings
// keep their seats and the stock simply reads as full.
func (s *OfferService) UpdateStock(ctx context.Context, stock domain.Stock, actorID uint) (domain.Stock, error) {
	current, err := s.offerRepo.FindStockByID(ctx, stock.ID)
	if err != nil {
		return domain.Stock{}, fmt.Errorf("s.offerRepo.FindStockByID -> %w", err)
	}

	offer, err := s.offerRepo.FindByID(ctx, current.OfferID)
	if err != nil {
		return domain.Stock{}, fmt.Errorf("s.offerRepo.FindByID -> %w", err)
	}

	if err = s.authorizeOnVenue(ctx, offer.VenueID, actorID); err != nil {
		return domain.Stock{}, err
	}

	current.Price = stock.Price
	current.Quantity = stock.Quantity
	current.BookingLimitDatetime = stock.BookingLimitDatetime
	current.BeginningDatetime = stock.BeginningDatetime

	updated, err := s.offerRepo.UpdateStock(ctx, current)
	if err != nil {
		return domain.Stock{}, fmt.Errorf("s.offerRepo.UpdateStock -> %w", err)
	}

	return updated, nil
}

// SoftDeleteStock retires a stock and cancels its active bookings. The
// cancellations are best-effort per booking and reported back.
func (s *OfferService) SoftDeleteStock(ctx context.Context, stockID uint, actorID uint) (RemediationReport, error) {
	report := RemediationReport{Operation: "soft_delete_stock"}

	stock, err := s.offerRepo.FindStockByID(ctx, stockID)
	if err != nil {
		return report, fmt.Errorf("s.offerRepo.FindStockByID -> %w", err)
	}

	offer, err := s.offerRepo.FindByID(ctx, stock.OfferID)
	if err != nil {
		return report, fmt.Errorf("s.offerRepo.FindByID -> %w", err)
	}

	if err = s.authorizeOnVenue(ctx, offer.VenueID, actorID); err != nil {
		return report, err
	}

	stock.IsSoftDeleted = true
	if _, err = s.offerRepo.UpdateStock(ctx, stock); err != nil {
		return report, fmt.Errorf("s.offerRepo.UpdateStock -> %w", err)
	}

	bookings, err := s.bookingRepo.FindActiveByStockID(ctx, stockID)
	if err != nil {
		return report, fmt.Errorf("s.bookingRepo.FindActiveByStockID -> %w", err)
	}

	now := s.now()
	for _, booking := range bookings {
		if booking.IsUsed {
			report.Failures = append(report.Failures, RemediationFailure{
				BookingID: booking.ID,
				Reason:    domain.ErrBookingAlreadyUsed.Error(),
			})
			continue
		}

		booking.IsCancelled = true
		booking.CancellationDate = &now

		if _, err := s.bookingRepo.Update(ctx, booking); err != nil {
			report.Failures = append(report.Failures, RemediationFailure{
				BookingID: booking.ID,
				Reason:    err.Error(),
			})
			continue
		}

		report.Succeeded++
	}

	zap.L().Info("stock soft-deleted",
		zap.Uint("stock_id", stockID),
		zap.Int("bookings_cancelled", report.Succeeded),
	)

	return report, nil
}
