package models

import "time"

// Payment status values. PENDING is the only non-terminal state; a
// booking transitions exactly once, to PAID or CANCELLED.
const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusCancelled = "CANCELLED"
)

// IsTerminalStatus reports whether a payment status permits no further
// transition.
func IsTerminalStatus(s string) bool {
	return s == StatusPaid || s == StatusCancelled
}

// Booking is the authoritative record a hold lives on. Seat occupancy
// for a (bus, travel date) is always derived from bookings, never
// cached on the bus itself.
type Booking struct {
	ID               int64     `json:"id"`
	BookingNo        int64     `json:"booking_no"`
	Reference        string    `json:"reference"`
	BusID            int64     `json:"bus_id"`
	TravelDate       string    `json:"travel_date"`
	SessionID        string    `json:"session_id"`
	Seats            []string  `json:"seats"`
	PassengerName    string    `json:"passenger_name"`
	PassengerPhone   string    `json:"passenger_phone"`
	TotalAmount      int64     `json:"total_amount"`
	PaymentStatus    string    `json:"payment_status"`
	PaymentMethod    string    `json:"payment_method"`
	CancelReason     string    `json:"cancel_reason,omitempty"`
	PaymentExpiresAt time.Time `json:"payment_expires_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// Active reports whether the booking still blocks its seats at the
// given instant: PAID always does, PENDING only until expiry.
func (b Booking) Active(now time.Time) bool {
	switch b.PaymentStatus {
	case StatusPaid:
		return true
	case StatusPending:
		return now.Before(b.PaymentExpiresAt)
	default:
		return false
	}
}

// HoldRequest asks the ledger for an all-or-nothing hold on seats.
type HoldRequest struct {
	BusID          int64
	TravelDate     string
	Seats          []string
	SessionID      string
	PassengerName  string
	PassengerPhone string
	// AgentID is the authenticated agent placing the request, 0 for
	// ordinary passengers. Required to book agent-reserved seats.
	AgentID int64
}

// HoldResult is returned on a successful hold.
type HoldResult struct {
	BookingID   int64     `json:"booking_id"`
	BookingNo   int64     `json:"booking_no"`
	Reference   string    `json:"reference"`
	TotalAmount int64     `json:"total_amount"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// PaymentEvent is one gateway notification, kept as an audit trail.
type PaymentEvent struct {
	ID            int64
	BookingID     int64
	Outcome       string
	PaymentMethod string
	Payload       string
}
