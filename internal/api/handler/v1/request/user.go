package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/culturepass/booking-api/internal/domain"
)

var (
	validFraudCheckTypes = []interface{}{
		string(domain.FraudCheckDMS),
		string(domain.FraudCheckUbble),
		string(domain.FraudCheckProfileCompletion),
	}
	validFraudCheckStatuses = []interface{}{
		string(domain.FraudCheckStarted),
		string(domain.FraudCheckPending),
		string(domain.FraudCheckOK),
		string(domain.FraudCheckSuspicious),
		string(domain.FraudCheckKO),
	}
	validEligibilityTypes = []interface{}{
		string(domain.EligibilityUnderage),
		string(domain.EligibilityAge18),
	}
)

type RecordFraudCheckRequest struct {
	Type            string   `json:"type"`
	Status          string   `json:"status"`
	ReasonCodes     []string `json:"reason_codes"`
	EligibilityType string   `json:"eligibility_type"`
}

func (req *RecordFraudCheckRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Type, validation.Required, validation.In(validFraudCheckTypes...)),
		validation.Field(&req.Status, validation.Required, validation.In(validFraudCheckStatuses...)),
		validation.Field(&req.EligibilityType, validation.Required, validation.In(validEligibilityTypes...)),
	)
}
