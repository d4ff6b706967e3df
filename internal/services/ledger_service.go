package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
	"backend/internal/utils"

	"github.com/google/uuid"
)

// LedgerService owns seat occupancy per (bus, travel date): it grants
// all-or-nothing holds, drives the PENDING -> PAID/CANCELLED state
// machine, and derives occupancy from bookings on every read. All
// mutations for one trip are linearizable: they run in a transaction
// whose conflicting writes are rejected either by the status CAS or by
// the unique key on (bus_id, travel_date, seat_code).
type LedgerService struct {
	DB        *sql.DB
	Bookings  repositories.BookingRepository
	Buses     repositories.BusRepository
	Counters  repositories.CounterRepository
	RequestID string

	// HoldTTL is the payment window for new holds; zero means 10 minutes.
	HoldTTL time.Duration
	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time
}

const bookingCounter = "booking_no"

func (s LedgerService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s LedgerService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s LedgerService) holdTTL() time.Duration {
	if s.HoldTTL > 0 {
		return s.HoldTTL
	}
	return 10 * time.Minute
}

// RequestHold grants a temporary claim on the requested seats, or fails
// as a whole. On success one PENDING booking covering exactly the
// requested seats exists, with a fresh booking number and a payment
// deadline of now + HoldTTL.
func (s LedgerService) RequestHold(ctx context.Context, req models.HoldRequest) (models.HoldResult, error) {
	seats := utils.NormalizeSeatCodes(req.Seats)
	if len(seats) == 0 {
		return models.HoldResult{}, domain.ValidationError{Field: "seats", Msg: "daftar kursi kosong"}
	}
	if req.SessionID == "" {
		return models.HoldResult{}, domain.ValidationError{Field: "session_id", Msg: "session_id kosong"}
	}
	if _, err := utils.ParseDate(req.TravelDate); err != nil {
		return models.HoldResult{}, domain.ValidationError{Field: "travel_date", Msg: "format tanggal harus YYYY-MM-DD"}
	}

	bus, err := s.Buses.GetByID(req.BusID)
	if err != nil {
		return models.HoldResult{}, err
	}
	layout, err := s.Buses.GetSeatLayout(bus.ID)
	if err != nil {
		return models.HoldResult{}, domain.UnavailableError{Err: err}
	}
	if err := validateSeatsAgainstLayout(seats, layout, req.AgentID); err != nil {
		return models.HoldResult{}, err
	}

	now := s.now()
	tx, err := s.db().BeginTx(ctx, nil)
	if err != nil {
		return models.HoldResult{}, domain.UnavailableError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	// Re-request by the same session replaces its own active holds.
	if err := s.Bookings.CancelSupersededForSession(tx, bus.ID, req.TravelDate, req.SessionID, seats); err != nil {
		return models.HoldResult{}, domain.UnavailableError{Err: err}
	}
	// Lazy expiry: finalize stale holds on this trip and drop the hold
	// rows of everything cancelled, so a request at the boundary never
	// loses to a dead hold.
	if err := s.Bookings.CancelExpiredForTrip(tx, bus.ID, req.TravelDate, now); err != nil {
		return models.HoldResult{}, domain.UnavailableError{Err: err}
	}

	conflicts, err := s.Bookings.ConflictingSeats(tx, bus.ID, req.TravelDate, seats, now)
	if err != nil {
		return models.HoldResult{}, domain.UnavailableError{Err: err}
	}
	if len(conflicts) > 0 {
		return models.HoldResult{}, domain.SeatConflictError{Seats: conflicts}
	}

	no, err := s.Counters.Next(tx, bookingCounter)
	if err != nil {
		return models.HoldResult{}, domain.UnavailableError{Err: err}
	}

	booking := models.Booking{
		BookingNo:        no,
		Reference:        uuid.NewString(),
		BusID:            bus.ID,
		TravelDate:       req.TravelDate,
		SessionID:        req.SessionID,
		Seats:            seats,
		PassengerName:    req.PassengerName,
		PassengerPhone:   req.PassengerPhone,
		TotalAmount:      bus.Fare * int64(len(seats)),
		PaymentExpiresAt: now.Add(s.holdTTL()),
	}
	id, err := s.Bookings.Insert(tx, booking)
	if err != nil {
		return models.HoldResult{}, domain.UnavailableError{Err: err}
	}

	if err := s.Bookings.InsertHeldSeats(tx, id, bus.ID, req.TravelDate, seats); err != nil {
		if errors.Is(err, repositories.ErrSeatTaken) {
			// A concurrent hold slipped in between the conflict check
			// and our insert; the unique key caught it.
			_ = tx.Rollback()
			return models.HoldResult{}, s.enumerateConflicts(bus.ID, req.TravelDate, seats, now)
		}
		return models.HoldResult{}, domain.UnavailableError{Err: err}
	}

	if err := tx.Commit(); err != nil {
		return models.HoldResult{}, domain.UnavailableError{Err: err}
	}

	utils.LogEvent(s.RequestID, "ledger", "hold",
		"booking_id="+i64(id)+" bus_id="+i64(bus.ID)+" date="+req.TravelDate+" seats="+join(seats))
	return models.HoldResult{
		BookingID:   id,
		BookingNo:   no,
		Reference:   booking.Reference,
		TotalAmount: booking.TotalAmount,
		ExpiresAt:   booking.PaymentExpiresAt,
	}, nil
}

func (s LedgerService) enumerateConflicts(busID int64, travelDate string, seats []string, now time.Time) error {
	conflicts, err := s.Bookings.ConflictingSeats(s.db(), busID, travelDate, seats, now)
	if err != nil || len(conflicts) == 0 {
		// Fall back to the whole request when the re-read cannot say
		// which seat lost the race.
		return domain.SeatConflictError{Seats: seats}
	}
	return domain.SeatConflictError{Seats: conflicts}
}

// ConfirmPayment transitions PENDING -> PAID while the payment window
// is open. An expired PENDING booking is cancelled instead and reported
// as hold-expired, so a slow gateway callback can never resurrect seats
// that were already released. Re-confirming a PAID booking is a no-op
// success; confirming a CANCELLED one is rejected.
func (s LedgerService) ConfirmPayment(ctx context.Context, bookingID int64, method string) (models.Booking, error) {
	if bookingID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "id tidak valid"}
	}
	now := s.now()

	tx, err := s.db().BeginTx(ctx, nil)
	if err != nil {
		return models.Booking{}, domain.UnavailableError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	paid, err := s.Bookings.MarkPaidIfActive(tx, bookingID, method, now)
	if err != nil {
		return models.Booking{}, domain.UnavailableError{Err: err}
	}
	if paid {
		booking, err := s.Bookings.GetByID(tx, bookingID)
		if err != nil {
			return models.Booking{}, err
		}
		if err := tx.Commit(); err != nil {
			return models.Booking{}, domain.UnavailableError{Err: err}
		}
		utils.LogEvent(s.RequestID, "ledger", "confirm", "booking_id="+i64(bookingID)+" status=PAID")
		return booking, nil
	}

	// The CAS did not land: finished already, expired, or missing.
	status, _, err := s.Bookings.StatusForUpdate(tx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	switch status {
	case models.StatusPaid:
		booking, err := s.Bookings.GetByID(tx, bookingID)
		if err != nil {
			return models.Booking{}, err
		}
		_ = tx.Commit()
		return booking, nil
	case models.StatusCancelled:
		return models.Booking{}, domain.AlreadyFinalizedError{BookingID: bookingID, Status: models.StatusCancelled}
	}

	// Still PENDING, so the window must have closed. Finalize now and
	// release the seats.
	if _, err := s.Bookings.UpdateStatusIf(tx, bookingID, models.StatusPending, models.StatusCancelled, "payment window expired"); err != nil {
		return models.Booking{}, domain.UnavailableError{Err: err}
	}
	if err := s.Bookings.DeleteSeats(tx, bookingID); err != nil {
		return models.Booking{}, domain.UnavailableError{Err: err}
	}
	if err := tx.Commit(); err != nil {
		return models.Booking{}, domain.UnavailableError{Err: err}
	}
	utils.LogEvent(s.RequestID, "ledger", "confirm", "booking_id="+i64(bookingID)+" hold expired, cancelled")
	return models.Booking{}, domain.HoldExpiredError{BookingID: bookingID}
}

// CancelHold finalizes a PENDING booking as CANCELLED and releases its
// seats immediately. Cancelling an already CANCELLED booking is a
// no-op; cancelling a PAID one is rejected.
func (s LedgerService) CancelHold(ctx context.Context, bookingID int64, reason string) error {
	if bookingID <= 0 {
		return domain.ValidationError{Field: "booking_id", Msg: "id tidak valid"}
	}
	if reason == "" {
		reason = "cancelled by caller"
	}

	tx, err := s.db().BeginTx(ctx, nil)
	if err != nil {
		return domain.UnavailableError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := s.Bookings.UpdateStatusIf(tx, bookingID, models.StatusPending, models.StatusCancelled, reason)
	if err != nil {
		return domain.UnavailableError{Err: err}
	}
	if ok {
		if err := s.Bookings.DeleteSeats(tx, bookingID); err != nil {
			return domain.UnavailableError{Err: err}
		}
		if err := tx.Commit(); err != nil {
			return domain.UnavailableError{Err: err}
		}
		utils.LogEvent(s.RequestID, "ledger", "cancel", "booking_id="+i64(bookingID)+" reason="+reason)
		return nil
	}

	status, _, err := s.Bookings.StatusForUpdate(tx, bookingID)
	if err != nil {
		return err
	}
	if status == models.StatusCancelled {
		return nil
	}
	return domain.AlreadyFinalizedError{BookingID: bookingID, Status: status}
}

// GetBooking fetches one booking by id.
func (s LedgerService) GetBooking(ctx context.Context, bookingID int64) (models.Booking, error) {
	_ = ctx
	return s.Bookings.GetByID(s.db(), bookingID)
}

// GetBookingByReference fetches one booking by its reference string.
func (s LedgerService) GetBookingByReference(ctx context.Context, ref string) (models.Booking, error) {
	_ = ctx
	return s.Bookings.GetByReference(s.db(), ref)
}

// OccupiedSeats returns the seats blocked for new holds on a trip:
// PAID bookings plus unexpired PENDING holds, evaluated at call time.
func (s LedgerService) OccupiedSeats(ctx context.Context, busID int64, travelDate string) ([]string, error) {
	_ = ctx
	if _, err := utils.ParseDate(travelDate); err != nil {
		return nil, domain.ValidationError{Field: "travel_date", Msg: "format tanggal harus YYYY-MM-DD"}
	}
	seats, err := s.Bookings.HeldOrPaidSeats(s.db(), busID, travelDate, s.now())
	if err != nil {
		return nil, domain.UnavailableError{Err: err}
	}
	return seats, nil
}

// SeatMap merges the static layout with derived occupancy for one
// viewer. Agent-reserved seats show as blocked to ordinary passengers
// and as available to the owning agent.
func (s LedgerService) SeatMap(ctx context.Context, busID int64, travelDate string, viewerAgentID int64) ([]models.SeatState, error) {
	layout, err := s.Buses.GetSeatLayout(busID)
	if err != nil {
		return nil, err
	}
	occupied, err := s.OccupiedSeats(ctx, busID, travelDate)
	if err != nil {
		return nil, err
	}
	occ := map[string]bool{}
	for _, seat := range occupied {
		occ[seat] = true
	}

	out := make([]models.SeatState, 0, len(layout))
	for _, seat := range layout {
		state := models.SeatState{
			SeatCode:     seat.SeatCode,
			Status:       models.SeatAvailable,
			IsLadiesOnly: seat.IsLadiesOnly,
		}
		switch {
		case occ[seat.SeatCode]:
			state.Status = models.SeatOccupied
		case seat.IsReservedForAgent && seat.ReservedAgentID != viewerAgentID:
			state.Status = models.SeatAgentOnly
		}
		out = append(out, state)
	}
	return out, nil
}

func i64(v int64) string { return strconv.FormatInt(v, 10) }

func join(seats []string) string { return strings.Join(seats, ",") }

func validateSeatsAgainstLayout(seats []string, layout []models.BusSeat, agentID int64) error {
	byCode := map[string]models.BusSeat{}
	for _, seat := range layout {
		byCode[seat.SeatCode] = seat
	}
	for _, code := range seats {
		seat, ok := byCode[code]
		if !ok {
			return domain.ValidationError{Field: "seats", Msg: "kursi " + code + " tidak ada di layout bus"}
		}
		if seat.IsReservedForAgent && seat.ReservedAgentID != agentID {
			return domain.ValidationError{Field: "seats", Msg: "kursi " + code + " khusus agen"}
		}
	}
	return nil
}
