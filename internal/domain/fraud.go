package domain

import "time"

type FraudCheckType string

const (
	FraudCheckDMS               FraudCheckType = "dms"
	FraudCheckUbble             FraudCheckType = "ubble"
	FraudCheckProfileCompletion FraudCheckType = "profile_completion"
)

// IsIdentityCheck reports whether the check verifies the user's identity.
// Only identity checks can block a subscription with issues.
func (t FraudCheckType) IsIdentityCheck() bool {
	return t == FraudCheckDMS || t == FraudCheckUbble
}

type FraudCheckStatus string

const (
	FraudCheckStarted    FraudCheckStatus = "started"
	FraudCheckPending    FraudCheckStatus = "pending"
	FraudCheckOK         FraudCheckStatus = "ok"
	FraudCheckSuspicious FraudCheckStatus = "suspicious"
	FraudCheckKO         FraudCheckStatus = "ko"
)

type EligibilityType string

const (
	EligibilityAge18    EligibilityType = "age-18"
	EligibilityUnderage EligibilityType = "underage"
)

// FraudCheck is an external verification record tied to a user. Several may
// exist per user; relevance is decided by type, status and eligibility type.
type FraudCheck struct {
	ID              uint             `json:"id"`
	UserID          uint             `json:"user_id"`
	Type            FraudCheckType   `json:"type"`
	Status          FraudCheckStatus `json:"status"`
	ReasonCodes     []string         `json:"reason_codes"`
	EligibilityType EligibilityType  `json:"eligibility_type"`
	DateCreated     time.Time        `json:"date_created"`
}
