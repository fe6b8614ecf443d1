package response

import "github.com/culturepass/booking-api/internal/domain"

type YoungStatusResponse struct {
	Status             string `json:"status"`
	SubscriptionStatus string `json:"subscription_status,omitempty"`
}

func NewYoungStatusResponse(status domain.YoungStatus) YoungStatusResponse {
	switch s := status.(type) {
	case domain.NonEligible:
		return YoungStatusResponse{Status: "non_eligible"}
	case domain.Eligible:
		return YoungStatusResponse{
			Status:             "eligible",
			SubscriptionStatus: string(s.SubscriptionStatus),
		}
	case domain.Beneficiary:
		return YoungStatusResponse{Status: "beneficiary"}
	case domain.ExBeneficiary:
		return YoungStatusResponse{Status: "ex_beneficiary"}
	case domain.Suspended:
		return YoungStatusResponse{Status: "suspended"}
	default:
		return YoungStatusResponse{Status: "non_eligible"}
	}
}

type WalletResponse struct {
	RemainingBalance string               `json:"remaining_balance"`
	DomainsCredit    domain.DomainsCredit `json:"domains_credit"`
}
