package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/culturepass/booking-api/internal/domain"
)

// RemediationReport summarizes a batch operation. Failures never abort the
// batch; each row is attempted independently.
type RemediationReport struct {
	Operation string               `json:"operation"`
	Succeeded int                  `json:"succeeded"`
	Failures  []RemediationFailure `json:"failures"`
}

type RemediationFailure struct {
	BookingID uint   `json:"booking_id"`
	Reason    string `json:"reason"`
}

// RemediationService hosts the support-team batch operations. They are
// admin-only and every mutation is logged for audit.
type RemediationService struct {
	bookingRepo BookingRepository
	now         func() time.Time
}

func NewRemediationService(bookingRepo BookingRepository) *RemediationService {
	return &RemediationService{
		bookingRepo: bookingRepo,
		now:         time.Now,
	}
}

// RevertQuarantineValidations reverts validated bookings for events that took
// place during an incident window back to the confirmed state, so they can be
// validated again once the incident is resolved. The window selects on the
// event's beginning, not on when the booking was validated.
func (s *RemediationService) RevertQuarantineValidations(ctx context.Context, from, to time.Time) (RemediationReport, error) {
	report := RemediationReport{Operation: "revert_quarantine_validations"}

	bookings, err := s.bookingRepo.FindUsedEventBookingsBetween(ctx, from, to)
	if err != nil {
		return report, fmt.Errorf("s.bookingRepo.FindUsedEventBookingsBetween -> %w", err)
	}

	for _, booking := range bookings {
		booking.IsUsed = false
		booking.DateUsed = nil

		if _, err := s.bookingRepo.Update(ctx, booking); err != nil {
			report.Failures = append(report.Failures, RemediationFailure{
				BookingID: booking.ID,
				Reason:    err.Error(),
			})
			continue
		}

		report.Succeeded++
		zap.L().Info("reverted quarantined validation",
			zap.Uint("booking_id", booking.ID),
			zap.Uint("user_id", booking.UserID),
		)
	}

	return report, nil
}

// CancelBookingsOfSuspendedUser cancels all of a suspended user's active
// bookings. Already-used bookings are reported as failures since usage
// cannot be undone here.
func (s *RemediationService) CancelBookingsOfSuspendedUser(ctx context.Context, userID uint) (RemediationReport, error) {
	report := RemediationReport{Operation: "cancel_bookings_of_suspended_user"}

	bookings, err := s.bookingRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("s.bookingRepo.FindActiveByUserID -> %w", err)
	}

	now := s.now()
	for _, booking := range bookings {
		if booking.IsUsed {
			report.Failures = append(report.Failures, RemediationFailure{
				BookingID: booking.ID,
				Reason:    domain.ErrBookingAlreadyUsed.Error(),
			})
			continue
		}

		booking.IsCancelled = true
		booking.CancellationDate = &now

		if _, err := s.bookingRepo.Update(ctx, booking); err != nil {
			report.Failures = append(report.Failures, RemediationFailure{
				BookingID: booking.ID,
				Reason:    err.Error(),
			})
			continue
		}

		report.Succeeded++
		zap.L().Info("cancelled booking of suspended user",
			zap.Uint("booking_id", booking.ID),
			zap.Uint("user_id", userID),
		)
	}

	return report, nil
}
