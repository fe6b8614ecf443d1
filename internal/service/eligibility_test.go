package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturepass/booking-api/internal/domain"
)

func newEligibilityFixture(t *testing.T) (*EligibilityService, *fakeUserRepo) {
	t.Helper()

	repo := newFakeUserRepo()
	svc := NewEligibilityService(repo, testPolicy())
	svc.now = func() time.Time { return testNow }

	return svc, repo
}

func TestYoungStatus_AssemblesAllInputs(t *testing.T) {
	svc, repo := newEligibilityFixture(t)

	dob := testNow.AddDate(-17, 0, 0)
	repo.users[1] = domain.User{ID: 1, IsActive: true, DateOfBirth: &dob}
	repo.checks[1] = []domain.FraudCheck{{
		UserID:          1,
		Type:            domain.FraudCheckUbble,
		Status:          domain.FraudCheckPending,
		EligibilityType: domain.EligibilityUnderage,
	}}

	status, err := svc.YoungStatus(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, domain.Eligible{SubscriptionStatus: domain.HasSubscriptionPending}, status)
}

func TestYoungStatus_DepositMakesBeneficiary(t *testing.T) {
	svc, repo := newEligibilityFixture(t)

	dob := testNow.AddDate(-18, 0, 0)
	repo.users[1] = domain.User{ID: 1, IsActive: true, DateOfBirth: &dob}
	repo.deposits[1] = domain.Deposit{UserID: 1, Amount: decimal.NewFromInt(500)}

	status, err := svc.YoungStatus(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, domain.Beneficiary{}, status)
}

func TestYoungStatus_UnknownUser(t *testing.T) {
	svc, _ := newEligibilityFixture(t)

	_, err := svc.YoungStatus(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
