package repository

import (
	"context"
	"fmt"

	"github.com/culturepass/booking-api/internal/domain"
	"github.com/culturepass/booking-api/internal/repository/dao"
)

var (
	ErrOffererNotFound         = dao.ErrOffererNotFound
	ErrVenueNotFound           = dao.ErrVenueNotFound
	ErrOffererAlreadyValidated = dao.ErrOffererAlreadyValidated
)

type OffererDAO interface {
	Insert(ctx context.Context, offerer dao.Offerer) (dao.Offerer, error)
	FindByID(ctx context.Context, id uint) (dao.Offerer, error)
	Validate(ctx context.Context, offererID uint, validationToken string) (dao.Offerer, error)
	Update(ctx context.Context, offerer dao.Offerer) (dao.Offerer, error)
	InsertVenue(ctx context.Context, venue dao.Venue) (dao.Venue, error)
	FindVenueByID(ctx context.Context, id uint) (dao.Venue, error)
	InsertUserOfferer(ctx context.Context, userOfferer dao.UserOfferer) (dao.UserOfferer, error)
	IsUserOffererEditor(ctx context.Context, userID, offererID uint) (bool, error)
}

type OffererRepository struct {
	dao OffererDAO
}

func NewOffererRepository(dao OffererDAO) *OffererRepository {
	return &OffererRepository{
		dao: dao,
	}
}

func (r *OffererRepository) daoToDomain(o dao.Offerer) domain.Offerer {
	return domain.Offerer{
		ID:              o.ID,
		Name:            o.Name,
		Siren:           o.Siren,
		IsActive:        o.IsActive,
		ValidationToken: o.ValidationToken,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func (r *OffererRepository) venueDaoToDomain(v dao.Venue) domain.Venue {
	return domain.Venue{
		ID:              v.ID,
		OffererID:       v.OffererID,
		Name:            v.Name,
		Address:         v.Address,
		IsVirtual:       v.IsVirtual,
		ValidationToken: v.ValidationToken,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func (r *OffererRepository) Create(ctx context.Context, offerer domain.Offerer) (domain.Offerer, error) {
	created, err := r.dao.Insert(ctx, dao.Offerer{
		Name:            offerer.Name,
		Siren:           offerer.Siren,
		IsActive:        offerer.IsActive,
		ValidationToken: offerer.ValidationToken,
		CreatedAt:       offerer.CreatedAt,
		UpdatedAt:       offerer.UpdatedAt,
	})
	if err != nil {
		return domain.Offerer{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *OffererRepository) FindByID(ctx context.Context, id uint) (domain.Offerer, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Offerer{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *OffererRepository) Validate(ctx context.Context, offererID uint, validationToken string) (domain.Offerer, error) {
	validated, err := r.dao.Validate(ctx, offererID, validationToken)
	if err != nil {
		return domain.Offerer{}, fmt.Errorf("r.dao.Validate -> %w", err)
	}

	return r.daoToDomain(validated), nil
}

func (r *OffererRepository) CreateVenue(ctx context.Context, venue domain.Venue) (domain.Venue, error) {
	created, err := r.dao.InsertVenue(ctx, dao.Venue{
		OffererID:       venue.OffererID,
		Name:            venue.Name,
		Address:         venue.Address,
		IsVirtual:       venue.IsVirtual,
		ValidationToken: venue.ValidationToken,
		CreatedAt:       venue.CreatedAt,
		UpdatedAt:       venue.UpdatedAt,
	})
	if err != nil {
		return domain.Venue{}, fmt.Errorf("r.dao.InsertVenue -> %w", err)
	}

	return r.venueDaoToDomain(created), nil
}

func (r *OffererRepository) FindVenueByID(ctx context.Context, id uint) (domain.Venue, error) {
	found, err := r.dao.FindVenueByID(ctx, id)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("r.dao.FindVenueByID -> %w", err)
	}

	return r.venueDaoToDomain(found), nil
}

func (r *OffererRepository) GrantEditorRights(ctx context.Context, userID, offererID uint) error {
	_, err := r.dao.InsertUserOfferer(ctx, dao.UserOfferer{
		UserID:    userID,
		OffererID: offererID,
	})
	if err != nil {
		return fmt.Errorf("r.dao.InsertUserOfferer -> %w", err)
	}

	return nil
}

func (r *OffererRepository) IsEditor(ctx context.Context, userID, offererID uint) (bool, error) {
	isEditor, err := r.dao.IsUserOffererEditor(ctx, userID, offererID)
	if err != nil {
		return false, fmt.Errorf("r.dao.IsUserOffererEditor -> %w", err)
	}

	return isEditor, nil
}
