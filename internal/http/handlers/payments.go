package handlers

import (
	"encoding/json"
	"net/http"

	"backend/internal/domain/models"

	"github.com/gin-gonic/gin"
)

type paymentNotification struct {
	BookingID     int64  `json:"booking_id"`
	Outcome       string `json:"outcome"`
	PaymentMethod string `json:"payment_method"`
}

// POST /api/payments/notify
// Gateway stub callback: {booking_id, outcome: success|failure}.
func (h Handler) NotifyPayment(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "payload tidak valid", nil)
		return
	}
	var req paymentNotification
	if err := json.Unmarshal(raw, &req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "payload tidak valid", nil)
		return
	}

	booking, err := h.Payments.HandleNotification(c.Request.Context(), models.PaymentEvent{
		BookingID:     req.BookingID,
		Outcome:       req.Outcome,
		PaymentMethod: req.PaymentMethod,
		Payload:       string(raw),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if booking.ID == 0 {
		// Failure outcome: the hold was cancelled.
		c.JSON(http.StatusOK, gin.H{"booking_id": req.BookingID, "payment_status": models.StatusCancelled})
		return
	}
	c.JSON(http.StatusOK, booking)
}
