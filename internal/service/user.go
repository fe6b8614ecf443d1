package service

import (
	"context"
	"fmt"

	"github.com/culturepass/booking-api/internal/domain"
	"github.com/culturepass/booking-api/internal/repository"
)

var (
	ErrUserNotFound    = repository.ErrUserNotFound
	ErrDepositNotFound = repository.ErrDepositNotFound
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	FindLatestDeposit(ctx context.Context, userID uint) (domain.Deposit, error)
	FindFraudChecks(ctx context.Context, userID uint) ([]domain.FraudCheck, error)
	CreateFraudCheck(ctx context.Context, check domain.FraudCheck) (domain.FraudCheck, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

// Deactivate suspends the user. Users are never hard-deleted.
func (s *UserService) Deactivate(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	user.IsActive = false
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// RecordFraudCheck stores the outcome of an external verification step.
func (s *UserService) RecordFraudCheck(ctx context.Context, check domain.FraudCheck) (domain.FraudCheck, error) {
	created, err := s.repo.CreateFraudCheck(ctx, check)
	if err != nil {
		return domain.FraudCheck{}, fmt.Errorf("s.repo.CreateFraudCheck -> %w", err)
	}

	return created, nil
}
