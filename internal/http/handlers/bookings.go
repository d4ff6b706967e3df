package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"backend/internal/domain/models"
	"backend/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type holdRequest struct {
	BusID          int64    `json:"bus_id"`
	TravelDate     string   `json:"travel_date"`
	Seats          []string `json:"seats"`
	SessionID      string   `json:"session_id"`
	PassengerName  string   `json:"passenger_name"`
	PassengerPhone string   `json:"passenger_phone"`
}

// POST /api/bookings/hold
func (h Handler) CreateHold(c *gin.Context) {
	var req holdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "payload tidak valid", nil)
		return
	}

	result, err := h.Ledger.RequestHold(c.Request.Context(), models.HoldRequest{
		BusID:          req.BusID,
		TravelDate:     strings.TrimSpace(req.TravelDate),
		Seats:          req.Seats,
		SessionID:      strings.TrimSpace(req.SessionID),
		PassengerName:  req.PassengerName,
		PassengerPhone: req.PassengerPhone,
		AgentID:        middleware.GetAgentID(c),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GET /api/bookings/:id
// Accepts a numeric id or the public reference string.
func (h Handler) GetBooking(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("id"))
	var (
		booking models.Booking
		err     error
	)
	if id, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil {
		booking, err = h.Ledger.GetBooking(c.Request.Context(), id)
	} else {
		booking, err = h.Ledger.GetBookingByReference(c.Request.Context(), raw)
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

type confirmRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// POST /api/bookings/:id/confirm-payment
func (h Handler) ConfirmBookingPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req confirmRequest
	_ = c.ShouldBindJSON(&req)

	booking, err := h.Ledger.ConfirmPayment(c.Request.Context(), id, req.PaymentMethod)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// POST /api/bookings/:id/cancel
func (h Handler) CancelBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req cancelRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.Ledger.CancelHold(c.Request.Context(), id, strings.TrimSpace(req.Reason)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking_id": id, "payment_status": models.StatusCancelled})
}
