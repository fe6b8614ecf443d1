package domain

import "time"

// YoungStatus is the closed set of beneficiary statuses. Variants are plain
// immutable values; deriving a new status always constructs a new value.
type YoungStatus interface {
	youngStatus()
}

type (
	// NonEligible users are outside the age window with no active deposit.
	NonEligible struct{}

	// Eligible users are inside the age window and still going through the
	// subscription steps.
	Eligible struct {
		SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	}

	// Beneficiary users hold a non-expired deposit.
	Beneficiary struct{}

	// ExBeneficiary users hold only an expired deposit.
	ExBeneficiary struct{}

	// Suspended users are deactivated, whatever their deposit state.
	Suspended struct{}
)

func (NonEligible) youngStatus()   {}
func (Eligible) youngStatus()      {}
func (Beneficiary) youngStatus()   {}
func (ExBeneficiary) youngStatus() {}
func (Suspended) youngStatus()     {}

type SubscriptionStatus string

const (
	HasToCompleteSubscription SubscriptionStatus = "has_to_complete_subscription"
	HasSubscriptionPending    SubscriptionStatus = "has_subscription_pending"
	HasSubscriptionIssues     SubscriptionStatus = "has_subscription_issues"
)

// EligibilityWindow bounds the ages (inclusive) at which a user may open a
// subscription. The upper bound is only reachable through the DMS
// grandfathering rule below.
type EligibilityWindow struct {
	MinAge int
	MaxAge int
}

// DeriveYoungStatus computes the user's status from age, deposit state and
// fraud-check history. It is a pure function of its inputs; today is passed
// in rather than read from the clock.
//
// Order matters: suspension dominates everything, then deposit state, then
// the age window, then the fraud-check ladder.
func DeriveYoungStatus(user User, deposit *Deposit, checks []FraudCheck, today time.Time, window EligibilityWindow) YoungStatus {
	if !user.IsActive {
		return Suspended{}
	}

	if deposit != nil {
		if deposit.IsExpired(today) {
			return ExBeneficiary{}
		}
		return Beneficiary{}
	}

	age := user.Age(today)
	if age < window.MinAge || age > window.MaxAge {
		return NonEligible{}
	}

	eligibility := EligibilityUnderage
	if age >= 18 {
		eligibility = EligibilityAge18
	}
	relevant := checksForEligibility(checks, eligibility)

	// At the upper bound the subscription window has closed; only an
	// application registered before turning MaxAge remains valid.
	if age == window.MaxAge {
		if !hasDMSRegisteredAt(user, relevant, window.MaxAge-1) {
			return NonEligible{}
		}
		if hasIdentityIssue(relevant) {
			return Eligible{SubscriptionStatus: HasSubscriptionIssues}
		}
		return Eligible{SubscriptionStatus: HasSubscriptionPending}
	}

	switch {
	case hasIdentityIssue(relevant):
		return Eligible{SubscriptionStatus: HasSubscriptionIssues}
	case hasCheckInProgress(relevant):
		return Eligible{SubscriptionStatus: HasSubscriptionPending}
	default:
		return Eligible{SubscriptionStatus: HasToCompleteSubscription}
	}
}

func checksForEligibility(checks []FraudCheck, eligibility EligibilityType) []FraudCheck {
	filtered := make([]FraudCheck, 0, len(checks))
	for _, check := range checks {
		if check.EligibilityType == eligibility {
			filtered = append(filtered, check)
		}
	}
	return filtered
}

// hasIdentityIssue reports whether any identity check ended suspicious or KO.
// A clean profile-completion check never masks a suspicious identity check.
func hasIdentityIssue(checks []FraudCheck) bool {
	for _, check := range checks {
		if !check.Type.IsIdentityCheck() {
			continue
		}
		if check.Status == FraudCheckSuspicious || check.Status == FraudCheckKO {
			return true
		}
	}
	return false
}

func hasCheckInProgress(checks []FraudCheck) bool {
	for _, check := range checks {
		if check.Status == FraudCheckStarted || check.Status == FraudCheckPending {
			return true
		}
	}
	return false
}

// hasDMSRegisteredAt reports whether a DMS application exists that was
// registered while the user was the given age.
func hasDMSRegisteredAt(user User, checks []FraudCheck, age int) bool {
	for _, check := range checks {
		if check.Type == FraudCheckDMS && user.Age(check.DateCreated) == age {
			return true
		}
	}
	return false
}
