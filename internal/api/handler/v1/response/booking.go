package response

import "github.com/culturepass/booking-api/internal/domain"

type BookedOfferResponse struct {
	Booking  domain.Booking `json:"booking"`
	Category string         `json:"category"`
}

func NewBookedOffersResponse(bookings []domain.BookedOffer) []BookedOfferResponse {
	out := make([]BookedOfferResponse, len(bookings))
	for i, b := range bookings {
		out[i] = BookedOfferResponse{
			Booking:  b.Booking,
			Category: string(b.Category),
		}
	}
	return out
}
