package handlers

import (
	"context"

	"backend/internal/domain/models"
	"backend/internal/repositories"
)

// Ledger is the slice of the reservation ledger the HTTP layer uses.
type Ledger interface {
	RequestHold(ctx context.Context, req models.HoldRequest) (models.HoldResult, error)
	ConfirmPayment(ctx context.Context, bookingID int64, method string) (models.Booking, error)
	CancelHold(ctx context.Context, bookingID int64, reason string) error
	GetBooking(ctx context.Context, bookingID int64) (models.Booking, error)
	GetBookingByReference(ctx context.Context, ref string) (models.Booking, error)
	OccupiedSeats(ctx context.Context, busID int64, travelDate string) ([]string, error)
	SeatMap(ctx context.Context, busID int64, travelDate string, viewerAgentID int64) ([]models.SeatState, error)
}

// PaymentNotifier consumes payment gateway callbacks.
type PaymentNotifier interface {
	HandleNotification(ctx context.Context, ev models.PaymentEvent) (models.Booking, error)
}

// BusCatalog is the read-only bus lookup.
type BusCatalog interface {
	List() ([]models.Bus, error)
	GetByID(id int64) (models.Bus, error)
}

// Handler bundles the collaborators behind the REST endpoints.
type Handler struct {
	Ledger    Ledger
	Payments  PaymentNotifier
	Buses     BusCatalog
	Agents    repositories.AgentRepository
	JWTSecret []byte
}
