package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/culturepass/booking-api/internal/domain"
	"github.com/culturepass/booking-api/internal/repository"
)

// EligibilityService derives a user's young status. The derivation itself is
// the pure domain.DeriveYoungStatus; this service only assembles its inputs.
type EligibilityService struct {
	repo   UserRepository
	window domain.EligibilityWindow
	now    func() time.Time
}

func NewEligibilityService(repo UserRepository, policy BookingPolicy) *EligibilityService {
	return &EligibilityService{
		repo:   repo,
		window: policy.Eligibility,
		now:    time.Now,
	}
}

func (s *EligibilityService) YoungStatus(ctx context.Context, userID uint) (domain.YoungStatus, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	var deposit *domain.Deposit
	latest, err := s.repo.FindLatestDeposit(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrDepositNotFound) {
			return nil, fmt.Errorf("s.repo.FindLatestDeposit -> %w", err)
		}
	} else {
		deposit = &latest
	}

	checks, err := s.repo.FindFraudChecks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindFraudChecks -> %w", err)
	}

	return domain.DeriveYoungStatus(user, deposit, checks, s.now(), s.window), nil
}
