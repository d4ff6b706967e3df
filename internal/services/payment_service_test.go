package services

import (
	"context"
	"testing"

	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

type finalizerStub struct {
	confirmed []int64
	cancelled []int64
	reason    string
}

func (f *finalizerStub) ConfirmPayment(_ context.Context, id int64, _ string) (models.Booking, error) {
	f.confirmed = append(f.confirmed, id)
	return models.Booking{ID: id, PaymentStatus: models.StatusPaid}, nil
}

func (f *finalizerStub) CancelHold(_ context.Context, id int64, reason string) error {
	f.cancelled = append(f.cancelled, id)
	f.reason = reason
	return nil
}

func TestHandleNotificationSuccessConfirms(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO payment_events").
		WillReturnResult(sqlmock.NewResult(1, 1))

	stub := &finalizerStub{}
	svc := PaymentService{
		Ledger:   stub,
		Payments: repositories.PaymentRepository{DB: db},
	}

	b, err := svc.HandleNotification(context.Background(), models.PaymentEvent{
		BookingID:     7,
		Outcome:       "SUCCESS",
		PaymentMethod: "transfer",
	})
	if err != nil {
		t.Fatalf("HandleNotification error: %v", err)
	}
	if b.PaymentStatus != models.StatusPaid {
		t.Fatalf("status mismatch: %s", b.PaymentStatus)
	}
	if len(stub.confirmed) != 1 || stub.confirmed[0] != 7 {
		t.Fatalf("confirm not routed: %+v", stub.confirmed)
	}
}

func TestHandleNotificationFailureCancels(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO payment_events").
		WillReturnResult(sqlmock.NewResult(1, 1))

	stub := &finalizerStub{}
	svc := PaymentService{
		Ledger:   stub,
		Payments: repositories.PaymentRepository{DB: db},
	}

	if _, err := svc.HandleNotification(context.Background(), models.PaymentEvent{
		BookingID: 8,
		Outcome:   "failure",
	}); err != nil {
		t.Fatalf("HandleNotification error: %v", err)
	}
	if len(stub.cancelled) != 1 || stub.cancelled[0] != 8 {
		t.Fatalf("cancel not routed: %+v", stub.cancelled)
	}
	if stub.reason != "payment failed" {
		t.Fatalf("reason mismatch: %s", stub.reason)
	}
}

func TestHandleNotificationAuditFailureDoesNotBlock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO payment_events").
		WillReturnError(context.DeadlineExceeded)

	stub := &finalizerStub{}
	svc := PaymentService{
		Ledger:   stub,
		Payments: repositories.PaymentRepository{DB: db},
	}

	if _, err := svc.HandleNotification(context.Background(), models.PaymentEvent{
		BookingID: 9,
		Outcome:   "success",
	}); err != nil {
		t.Fatalf("audit failure must not block the transition: %v", err)
	}
	if len(stub.confirmed) != 1 {
		t.Fatalf("confirm not routed despite audit failure")
	}
}

func TestHandleNotificationRejectsUnknownOutcome(t *testing.T) {
	stub := &finalizerStub{}
	svc := PaymentService{Ledger: stub}

	_, err := svc.HandleNotification(context.Background(), models.PaymentEvent{
		BookingID: 7,
		Outcome:   "maybe",
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(stub.confirmed)+len(stub.cancelled) != 0 {
		t.Fatalf("no transition may happen on invalid outcome")
	}
}
