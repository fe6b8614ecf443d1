package service

import (
	"context"
	"fmt"

	"github.com/culturepass/booking-api/internal/domain"
	"github.com/culturepass/booking-api/internal/pkg/token"
	"github.com/culturepass/booking-api/internal/repository"
)

var (
	ErrOffererNotFound         = repository.ErrOffererNotFound
	ErrVenueNotFound           = repository.ErrVenueNotFound
	ErrOffererAlreadyValidated = repository.ErrOffererAlreadyValidated
)

type OffererRepository interface {
	Create(ctx context.Context, offerer domain.Offerer) (domain.Offerer, error)
	FindByID(ctx context.Context, id uint) (domain.Offerer, error)
	Validate(ctx context.Context, offererID uint, validationToken string) (domain.Offerer, error)
	CreateVenue(ctx context.Context, venue domain.Venue) (domain.Venue, error)
	FindVenueByID(ctx context.Context, id uint) (domain.Venue, error)
	GrantEditorRights(ctx context.Context, userID, offererID uint) error
	IsEditor(ctx context.Context, userID, offererID uint) (bool, error)
}

// OffererService manages the pro-side structures: offerers, their venues and
// who may edit them. New offerers start unvalidated and inactive until the
// validation token is consumed.
type OffererService struct {
	repo OffererRepository
}

func NewOffererService(repo OffererRepository) *OffererService {
	return &OffererService{
		repo: repo,
	}
}

// CreateOfferer registers an offerer pending validation and grants the
// creating user editor rights on it.
func (s *OffererService) CreateOfferer(ctx context.Context, offerer domain.Offerer, creatorID uint) (domain.Offerer, error) {
	validationToken, err := token.Generate()
	if err != nil {
		return domain.Offerer{}, fmt.Errorf("token.Generate -> %w", err)
	}
	offerer.IsActive = false
	offerer.ValidationToken = &validationToken

	created, err := s.repo.Create(ctx, offerer)
	if err != nil {
		return domain.Offerer{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	if err = s.repo.GrantEditorRights(ctx, creatorID, created.ID); err != nil {
		return domain.Offerer{}, fmt.Errorf("s.repo.GrantEditorRights -> %w", err)
	}

	return created, nil
}

// ValidateOfferer consumes the validation token and activates the offerer.
func (s *OffererService) ValidateOfferer(ctx context.Context, offererID uint, validationToken string) (domain.Offerer, error) {
	offerer, err := s.repo.Validate(ctx, offererID, validationToken)
	if err != nil {
		return domain.Offerer{}, fmt.Errorf("s.repo.Validate -> %w", err)
	}

	return offerer, nil
}

func (s *OffererService) GetOfferer(ctx context.Context, id uint) (domain.Offerer, error) {
	offerer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Offerer{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return offerer, nil
}

// CreateVenue attaches a venue to an offerer. The actor must hold editor
// rights on the offerer.
func (s *OffererService) CreateVenue(ctx context.Context, venue domain.Venue, actorID uint) (domain.Venue, error) {
	isEditor, err := s.repo.IsEditor(ctx, actorID, venue.OffererID)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("s.repo.IsEditor -> %w", err)
	}
	if !isEditor {
		return domain.Venue{}, domain.ErrForbidden
	}

	created, err := s.repo.CreateVenue(ctx, venue)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("s.repo.CreateVenue -> %w", err)
	}

	return created, nil
}

func (s *OffererService) GetVenue(ctx context.Context, id uint) (domain.Venue, error) {
	venue, err := s.repo.FindVenueByID(ctx, id)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("s.repo.FindVenueByID -> %w", err)
	}

	return venue, nil
}
