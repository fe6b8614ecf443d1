package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/culturepass/booking-api/internal/domain"
	"github.com/culturepass/booking-api/internal/repository/dao"
)

var (
	ErrUserEmailExists = dao.ErrUserEmailExists
	ErrUserNotFound    = dao.ErrUserNotFound
	ErrDepositExists   = dao.ErrDepositExists
	ErrDepositNotFound = dao.ErrDepositNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	Update(ctx context.Context, user dao.User) (dao.User, error)
	InsertDeposit(ctx context.Context, deposit dao.Deposit) (dao.Deposit, error)
	FindLatestDepositByUserID(ctx context.Context, userID uint) (dao.Deposit, error)
	FindFraudChecksByUserID(ctx context.Context, userID uint) ([]dao.FraudCheck, error)
	InsertFraudCheck(ctx context.Context, check dao.FraudCheck) (dao.FraudCheck, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) domainToDao(u domain.User) dao.User {
	return dao.User{
		ID:                u.ID,
		Email:             u.Email,
		Password:          u.Password,
		Name:              u.Name,
		DateOfBirth:       u.DateOfBirth,
		IsAdmin:           u.IsAdmin,
		IsActive:          u.IsActive,
		CanBookFreeOffers: u.CanBookFreeOffers,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:                u.ID,
		Email:             u.Email,
		Password:          u.Password,
		Name:              u.Name,
		DateOfBirth:       u.DateOfBirth,
		IsAdmin:           u.IsAdmin,
		IsActive:          u.IsActive,
		CanBookFreeOffers: u.CanBookFreeOffers,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (r *UserRepository) depositDaoToDomain(d dao.Deposit) domain.Deposit {
	return domain.Deposit{
		ID:             d.ID,
		UserID:         d.UserID,
		Amount:         d.Amount,
		Source:         d.Source,
		ExpirationDate: d.ExpirationDate,
		CreatedAt:      d.CreatedAt,
	}
}

func (r *UserRepository) fraudCheckDaoToDomain(c dao.FraudCheck) domain.FraudCheck {
	var reasonCodes []string
	if c.ReasonCodes != "" {
		reasonCodes = strings.Split(c.ReasonCodes, ",")
	}

	return domain.FraudCheck{
		ID:              c.ID,
		UserID:          c.UserID,
		Type:            domain.FraudCheckType(c.Type),
		Status:          domain.FraudCheckStatus(c.Status),
		ReasonCodes:     reasonCodes,
		EligibilityType: domain.EligibilityType(c.EligibilityType),
		DateCreated:     c.DateCreated,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *UserRepository) CreateDeposit(ctx context.Context, deposit domain.Deposit) (domain.Deposit, error) {
	created, err := r.dao.InsertDeposit(ctx, dao.Deposit{
		UserID:         deposit.UserID,
		Amount:         deposit.Amount,
		Source:         deposit.Source,
		ExpirationDate: deposit.ExpirationDate,
		CreatedAt:      deposit.CreatedAt,
	})
	if err != nil {
		return domain.Deposit{}, fmt.Errorf("r.dao.InsertDeposit -> %w", err)
	}

	return r.depositDaoToDomain(created), nil
}

// FindLatestDeposit returns the user's most recent deposit, or
// ErrDepositNotFound when the user never received one.
func (r *UserRepository) FindLatestDeposit(ctx context.Context, userID uint) (domain.Deposit, error) {
	found, err := r.dao.FindLatestDepositByUserID(ctx, userID)
	if err != nil {
		return domain.Deposit{}, fmt.Errorf("r.dao.FindLatestDepositByUserID -> %w", err)
	}

	return r.depositDaoToDomain(found), nil
}

func (r *UserRepository) FindFraudChecks(ctx context.Context, userID uint) ([]domain.FraudCheck, error) {
	found, err := r.dao.FindFraudChecksByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindFraudChecksByUserID -> %w", err)
	}

	checks := make([]domain.FraudCheck, len(found))
	for i, c := range found {
		checks[i] = r.fraudCheckDaoToDomain(c)
	}

	return checks, nil
}

func (r *UserRepository) CreateFraudCheck(ctx context.Context, check domain.FraudCheck) (domain.FraudCheck, error) {
	created, err := r.dao.InsertFraudCheck(ctx, dao.FraudCheck{
		UserID:          check.UserID,
		Type:            string(check.Type),
		Status:          string(check.Status),
		ReasonCodes:     strings.Join(check.ReasonCodes, ","),
		EligibilityType: string(check.EligibilityType),
		DateCreated:     check.DateCreated,
	})
	if err != nil {
		return domain.FraudCheck{}, fmt.Errorf("r.dao.InsertFraudCheck -> %w", err)
	}

	return r.fraudCheckDaoToDomain(created), nil
}
