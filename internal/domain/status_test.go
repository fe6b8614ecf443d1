package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/culturepass/booking-api/internal/domain"
)

var testWindow = domain.EligibilityWindow{MinAge: 15, MaxAge: 19}

func bornYearsAgo(today time.Time, years int) *time.Time {
	dob := today.AddDate(-years, 0, 0)
	return &dob
}

func activeUser(dob *time.Time) domain.User {
	return domain.User{
		ID:          1,
		IsActive:    true,
		DateOfBirth: dob,
	}
}

func TestDeriveYoungStatus_SuspendedDominatesEverything(t *testing.T) {
	// GIVEN: A deactivated user holding a valid deposit
	// THEN: The status is Suspended, not Beneficiary

	today := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	user := activeUser(bornYearsAgo(today, 17))
	user.IsActive = false
	deposit := &domain.Deposit{Amount: decimal100()}

	status := domain.DeriveYoungStatus(user, deposit, nil, today, testWindow)

	assert.Equal(t, domain.Suspended{}, status)
}

func TestDeriveYoungStatus_DepositStates(t *testing.T) {
	today := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	user := activeUser(bornYearsAgo(today, 18))

	t.Run("non-expired deposit makes a beneficiary", func(t *testing.T) {
		status := domain.DeriveYoungStatus(user, &domain.Deposit{}, nil, today, testWindow)
		assert.Equal(t, domain.Beneficiary{}, status)
	})

	t.Run("expired deposit makes an ex-beneficiary", func(t *testing.T) {
		expired := today.AddDate(-1, 0, 0)
		deposit := &domain.Deposit{ExpirationDate: &expired}

		status := domain.DeriveYoungStatus(user, deposit, nil, today, testWindow)
		assert.Equal(t, domain.ExBeneficiary{}, status)
	})

	t.Run("deposit state wins even outside the age window", func(t *testing.T) {
		older := activeUser(bornYearsAgo(today, 25))

		status := domain.DeriveYoungStatus(older, &domain.Deposit{}, nil, today, testWindow)
		assert.Equal(t, domain.Beneficiary{}, status)
	})
}

func TestDeriveYoungStatus_AgeWindow(t *testing.T) {
	today := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("below minimum age", func(t *testing.T) {
		status := domain.DeriveYoungStatus(activeUser(bornYearsAgo(today, 14)), nil, nil, today, testWindow)
		assert.Equal(t, domain.NonEligible{}, status)
	})

	t.Run("above maximum age", func(t *testing.T) {
		status := domain.DeriveYoungStatus(activeUser(bornYearsAgo(today, 20)), nil, nil, today, testWindow)
		assert.Equal(t, domain.NonEligible{}, status)
	})

	t.Run("unknown date of birth", func(t *testing.T) {
		status := domain.DeriveYoungStatus(activeUser(nil), nil, nil, today, testWindow)
		assert.Equal(t, domain.NonEligible{}, status)
	})

	t.Run("minimum age is inclusive", func(t *testing.T) {
		status := domain.DeriveYoungStatus(activeUser(bornYearsAgo(today, 15)), nil, nil, today, testWindow)
		assert.Equal(t, domain.Eligible{SubscriptionStatus: domain.HasToCompleteSubscription}, status)
	})
}

func TestDeriveYoungStatus_MaxAgeNeedsEarlierApplication(t *testing.T) {
	// GIVEN: A user one day past their 19th birthday with no application
	//        registered while they were 18
	// THEN: The subscription window has closed and they are non-eligible

	today := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	dob := today.AddDate(-19, 0, -1)
	user := activeUser(&dob)

	status := domain.DeriveYoungStatus(user, nil, nil, today, testWindow)
	assert.Equal(t, domain.NonEligible{}, status)

	t.Run("a DMS application registered at 18 keeps them eligible", func(t *testing.T) {
		// Registered six months ago, when the user was still 18.
		registered := today.AddDate(0, -6, 0)
		checks := []domain.FraudCheck{{
			Type:            domain.FraudCheckDMS,
			Status:          domain.FraudCheckPending,
			EligibilityType: domain.EligibilityAge18,
			DateCreated:     registered,
		}}

		status := domain.DeriveYoungStatus(user, nil, checks, today, testWindow)
		assert.Equal(t, domain.Eligible{SubscriptionStatus: domain.HasSubscriptionPending}, status)
	})

	t.Run("a DMS application registered after turning 19 does not count", func(t *testing.T) {
		checks := []domain.FraudCheck{{
			Type:            domain.FraudCheckDMS,
			Status:          domain.FraudCheckPending,
			EligibilityType: domain.EligibilityAge18,
			DateCreated:     today,
		}}

		status := domain.DeriveYoungStatus(user, nil, checks, today, testWindow)
		assert.Equal(t, domain.NonEligible{}, status)
	})
}

func TestDeriveYoungStatus_SubscriptionLadder(t *testing.T) {
	today := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	user := activeUser(bornYearsAgo(today, 18))

	t.Run("no checks yet", func(t *testing.T) {
		status := domain.DeriveYoungStatus(user, nil, nil, today, testWindow)
		assert.Equal(t, domain.Eligible{SubscriptionStatus: domain.HasToCompleteSubscription}, status)
	})

	t.Run("identity check in progress", func(t *testing.T) {
		checks := []domain.FraudCheck{{
			Type:            domain.FraudCheckUbble,
			Status:          domain.FraudCheckPending,
			EligibilityType: domain.EligibilityAge18,
		}}

		status := domain.DeriveYoungStatus(user, nil, checks, today, testWindow)
		assert.Equal(t, domain.Eligible{SubscriptionStatus: domain.HasSubscriptionPending}, status)
	})

	t.Run("suspicious identity check wins over a pending one", func(t *testing.T) {
		checks := []domain.FraudCheck{
			{
				Type:            domain.FraudCheckUbble,
				Status:          domain.FraudCheckSuspicious,
				EligibilityType: domain.EligibilityAge18,
			},
			{
				Type:            domain.FraudCheckDMS,
				Status:          domain.FraudCheckPending,
				EligibilityType: domain.EligibilityAge18,
			},
		}

		status := domain.DeriveYoungStatus(user, nil, checks, today, testWindow)
		assert.Equal(t, domain.Eligible{SubscriptionStatus: domain.HasSubscriptionIssues}, status)
	})

	t.Run("a KO profile completion is not an identity issue", func(t *testing.T) {
		checks := []domain.FraudCheck{{
			Type:            domain.FraudCheckProfileCompletion,
			Status:          domain.FraudCheckKO,
			EligibilityType: domain.EligibilityAge18,
		}}

		status := domain.DeriveYoungStatus(user, nil, checks, today, testWindow)
		assert.Equal(t, domain.Eligible{SubscriptionStatus: domain.HasToCompleteSubscription}, status)
	})

	t.Run("checks from another eligibility round are ignored", func(t *testing.T) {
		// The user failed an underage identity check years ago; at 18 they
		// start fresh.
		checks := []domain.FraudCheck{{
			Type:            domain.FraudCheckUbble,
			Status:          domain.FraudCheckKO,
			EligibilityType: domain.EligibilityUnderage,
		}}

		status := domain.DeriveYoungStatus(user, nil, checks, today, testWindow)
		assert.Equal(t, domain.Eligible{SubscriptionStatus: domain.HasToCompleteSubscription}, status)
	})
}

func TestUserAge_BirthdayBoundary(t *testing.T) {
	dob := time.Date(2008, time.March, 1, 0, 0, 0, 0, time.UTC)
	user := domain.User{DateOfBirth: &dob}

	dayBefore := time.Date(2026, time.February, 28, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, 17, user.Age(dayBefore))

	birthday := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 18, user.Age(birthday))
}
