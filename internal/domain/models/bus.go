package models

// Bus describes a vehicle and its static seat layout. The layout is
// read-only input to the ledger; per-date occupancy never lives here.
type Bus struct {
	ID         int64  `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	TotalSeats int    `json:"total_seats"`
	Fare       int64  `json:"fare"`
}

// BusSeat is one seat in a bus layout.
type BusSeat struct {
	SeatCode           string `json:"seat_code"`
	IsLadiesOnly       bool   `json:"is_ladies_only"`
	IsReservedForAgent bool   `json:"is_reserved_for_agent"`
	ReservedAgentID    int64  `json:"reserved_agent_id,omitempty"`
}

// Seat map statuses as shown to a viewer.
const (
	SeatAvailable = "available"
	SeatOccupied  = "occupied"
	SeatAgentOnly = "agent"
)

// SeatState is one entry of the per-date seat map: layout flags merged
// with derived occupancy for a particular viewer.
type SeatState struct {
	SeatCode     string `json:"seat_code"`
	Status       string `json:"status"`
	IsLadiesOnly bool   `json:"is_ladies_only"`
}
