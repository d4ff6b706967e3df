package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/domain"
	"backend/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerStub struct {
	holdResult models.HoldResult
	holdErr    error
	confirmErr error
	cancelErr  error
	booking    models.Booking
	bookingErr error

	gotHold   models.HoldRequest
	cancelled int64
	reason    string
}

func (l *ledgerStub) RequestHold(_ context.Context, req models.HoldRequest) (models.HoldResult, error) {
	l.gotHold = req
	return l.holdResult, l.holdErr
}

func (l *ledgerStub) ConfirmPayment(_ context.Context, id int64, _ string) (models.Booking, error) {
	if l.confirmErr != nil {
		return models.Booking{}, l.confirmErr
	}
	b := l.booking
	b.ID = id
	b.PaymentStatus = models.StatusPaid
	return b, nil
}

func (l *ledgerStub) CancelHold(_ context.Context, id int64, reason string) error {
	l.cancelled = id
	l.reason = reason
	return l.cancelErr
}

func (l *ledgerStub) GetBooking(_ context.Context, id int64) (models.Booking, error) {
	if l.bookingErr != nil {
		return models.Booking{}, l.bookingErr
	}
	b := l.booking
	b.ID = id
	return b, nil
}

func (l *ledgerStub) GetBookingByReference(_ context.Context, ref string) (models.Booking, error) {
	if l.bookingErr != nil {
		return models.Booking{}, l.bookingErr
	}
	b := l.booking
	b.Reference = ref
	return b, nil
}

func (l *ledgerStub) OccupiedSeats(_ context.Context, _ int64, _ string) ([]string, error) {
	return nil, nil
}

func (l *ledgerStub) SeatMap(_ context.Context, _ int64, _ string, _ int64) ([]models.SeatState, error) {
	return nil, nil
}

func newTestRouter(h Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/bookings/hold", h.CreateHold)
	r.GET("/api/bookings/:id", h.GetBooking)
	r.POST("/api/bookings/:id/confirm-payment", h.ConfirmBookingPayment)
	r.POST("/api/bookings/:id/cancel", h.CancelBooking)
	r.POST("/api/payments/notify", h.NotifyPayment)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateHoldReturnsCreated(t *testing.T) {
	expires := time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC)
	stub := &ledgerStub{holdResult: models.HoldResult{
		BookingID:   7,
		BookingNo:   101,
		Reference:   "ref-7",
		TotalAmount: 200000,
		ExpiresAt:   expires,
	}}
	r := newTestRouter(Handler{Ledger: stub})

	w := doJSON(t, r, http.MethodPost, "/api/bookings/hold", gin.H{
		"bus_id":      1,
		"travel_date": "2025-06-01",
		"seats":       []string{"1A", "1B"},
		"session_id":  "sess-x",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var got models.HoldResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(7), got.BookingID)
	assert.Equal(t, int64(101), got.BookingNo)
	assert.Equal(t, []string{"1A", "1B"}, stub.gotHold.Seats)
	assert.Equal(t, "sess-x", stub.gotHold.SessionID)
}

func TestCreateHoldSeatConflict(t *testing.T) {
	stub := &ledgerStub{holdErr: domain.SeatConflictError{Seats: []string{"1A"}}}
	r := newTestRouter(Handler{Ledger: stub})

	w := doJSON(t, r, http.MethodPost, "/api/bookings/hold", gin.H{
		"bus_id":      1,
		"travel_date": "2025-06-01",
		"seats":       []string{"1A"},
		"session_id":  "sess-x",
	})

	require.Equal(t, http.StatusConflict, w.Code)
	var resp struct {
		Code    string `json:"code"`
		Details struct {
			Seats []string `json:"seats"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "seat_conflict", resp.Code)
	assert.Equal(t, []string{"1A"}, resp.Details.Seats)
}

func TestCreateHoldRejectsBadPayload(t *testing.T) {
	r := newTestRouter(Handler{Ledger: &ledgerStub{}})

	req := httptest.NewRequest(http.MethodPost, "/api/bookings/hold", bytes.NewBufferString("{bukan json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmPaymentExpiredHold(t *testing.T) {
	stub := &ledgerStub{confirmErr: domain.HoldExpiredError{BookingID: 7}}
	r := newTestRouter(Handler{Ledger: stub})

	w := doJSON(t, r, http.MethodPost, "/api/bookings/7/confirm-payment", gin.H{
		"payment_method": "transfer",
	})

	require.Equal(t, http.StatusGone, w.Code)
	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "hold_expired", resp.Code)
}

func TestConfirmPaymentHappyPath(t *testing.T) {
	stub := &ledgerStub{}
	r := newTestRouter(Handler{Ledger: stub})

	w := doJSON(t, r, http.MethodPost, "/api/bookings/7/confirm-payment", gin.H{
		"payment_method": "transfer",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var got models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.StatusPaid, got.PaymentStatus)
	assert.Equal(t, int64(7), got.ID)
}

func TestCancelBookingAlreadyPaid(t *testing.T) {
	stub := &ledgerStub{cancelErr: domain.AlreadyFinalizedError{BookingID: 7, Status: models.StatusPaid}}
	r := newTestRouter(Handler{Ledger: stub})

	w := doJSON(t, r, http.MethodPost, "/api/bookings/7/cancel", gin.H{"reason": "batal"})

	require.Equal(t, http.StatusConflict, w.Code)
	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "already_finalized", resp.Code)
}

func TestCancelBookingReleasesHold(t *testing.T) {
	stub := &ledgerStub{}
	r := newTestRouter(Handler{Ledger: stub})

	w := doJSON(t, r, http.MethodPost, "/api/bookings/7/cancel", gin.H{"reason": "berubah pikiran"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), stub.cancelled)
	assert.Equal(t, "berubah pikiran", stub.reason)
}

func TestGetBookingByReferenceFallback(t *testing.T) {
	stub := &ledgerStub{booking: models.Booking{PaymentStatus: models.StatusPending}}
	r := newTestRouter(Handler{Ledger: stub})

	w := doJSON(t, r, http.MethodGet, "/api/bookings/ref-abc", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "ref-abc", got.Reference)
}

func TestGetBookingNotFound(t *testing.T) {
	stub := &ledgerStub{bookingErr: domain.NotFoundError{Resource: "booking"}}
	r := newTestRouter(Handler{Ledger: stub})

	w := doJSON(t, r, http.MethodGet, "/api/bookings/99", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

type notifierStub struct {
	got models.PaymentEvent
}

func (n *notifierStub) HandleNotification(_ context.Context, ev models.PaymentEvent) (models.Booking, error) {
	n.got = ev
	if ev.Outcome == "failure" {
		return models.Booking{}, nil
	}
	return models.Booking{ID: ev.BookingID, PaymentStatus: models.StatusPaid}, nil
}

func TestNotifyPaymentFailureReportsCancelled(t *testing.T) {
	stub := &notifierStub{}
	r := newTestRouter(Handler{Payments: stub})

	w := doJSON(t, r, http.MethodPost, "/api/payments/notify", gin.H{
		"booking_id": 7,
		"outcome":    "failure",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		BookingID     int64  `json:"booking_id"`
		PaymentStatus string `json:"payment_status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.BookingID)
	assert.Equal(t, models.StatusCancelled, resp.PaymentStatus)
	assert.NotEmpty(t, stub.got.Payload, "raw body disimpan sebagai audit payload")
}

func TestNotifyPaymentSuccessReturnsBooking(t *testing.T) {
	stub := &notifierStub{}
	r := newTestRouter(Handler{Payments: stub})

	w := doJSON(t, r, http.MethodPost, "/api/payments/notify", gin.H{
		"booking_id":     7,
		"outcome":        "success",
		"payment_method": "transfer",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var got models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.StatusPaid, got.PaymentStatus)
}
