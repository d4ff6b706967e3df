package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"backend/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GET /api/buses
func (h Handler) GetBuses(c *gin.Context) {
	buses, err := h.Buses.List()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"buses": buses})
}

// GET /api/buses/:id/seats?date=YYYY-MM-DD
// Seat map for one trip: layout flags merged with live occupancy.
// Agent-reserved seats show as bookable only to the owning agent.
func (h Handler) GetBusSeatMap(c *gin.Context) {
	busID, ok := pathID(c)
	if !ok {
		return
	}
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "query date wajib diisi", nil)
		return
	}

	seats, err := h.Ledger.SeatMap(c.Request.Context(), busID, date, middleware.GetAgentID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bus_id":      busID,
		"travel_date": date,
		"seats":       seats,
	})
}

// GET /api/buses/:id/occupied?date=YYYY-MM-DD
func (h Handler) GetOccupiedSeats(c *gin.Context) {
	busID, ok := pathID(c)
	if !ok {
		return
	}
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "query date wajib diisi", nil)
		return
	}

	seats, err := h.Ledger.OccupiedSeats(c.Request.Context(), busID, date)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bus_id":      busID,
		"travel_date": date,
		"occupied":    seats,
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "id tidak valid", nil)
		return 0, false
	}
	return id, true
}
