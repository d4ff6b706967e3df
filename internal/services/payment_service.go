package services

import (
	"context"
	"strings"

	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
	"backend/internal/utils"
)

// Gateway outcomes accepted on the notify endpoint.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// bookingFinalizer is the slice of the ledger the payment flow needs.
type bookingFinalizer interface {
	ConfirmPayment(ctx context.Context, bookingID int64, method string) (models.Booking, error)
	CancelHold(ctx context.Context, bookingID int64, reason string) error
}

// PaymentService consumes gateway notifications: it records every
// event for audit, then routes success to confirm and failure to
// cancel. The ledger's CAS decides races with the sweeper.
type PaymentService struct {
	Ledger    bookingFinalizer
	Payments  repositories.PaymentRepository
	RequestID string
}

// HandleNotification applies one gateway callback to the booking.
func (s PaymentService) HandleNotification(ctx context.Context, ev models.PaymentEvent) (models.Booking, error) {
	if ev.BookingID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "id tidak valid"}
	}
	outcome := strings.ToLower(strings.TrimSpace(ev.Outcome))
	if outcome != OutcomeSuccess && outcome != OutcomeFailure {
		return models.Booking{}, domain.ValidationError{Field: "outcome", Msg: "outcome harus success atau failure"}
	}
	ev.Outcome = outcome

	// Audit first, best effort: a full event log must not block the
	// actual status transition.
	if _, err := s.Payments.InsertEvent(ev); err != nil {
		utils.LogEvent(s.RequestID, "payment", "notify", "audit insert warning: "+err.Error())
	}

	if outcome == OutcomeFailure {
		if err := s.Ledger.CancelHold(ctx, ev.BookingID, "payment failed"); err != nil {
			return models.Booking{}, err
		}
		return models.Booking{}, nil
	}
	return s.Ledger.ConfirmPayment(ctx, ev.BookingID, ev.PaymentMethod)
}
