package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intdb "backend/internal/db"
	"backend/internal/domain"
	"backend/internal/domain/models"
)

// ErrSeatTaken is returned when inserting hold rows hits the unique key
// on (bus_id, travel_date, seat_code), i.e. a concurrent hold won.
var ErrSeatTaken = errors.New("seat already held")

// BookingRepository owns all SQL touching bookings and their hold rows.
// Every method takes a Queryer so callers decide the transaction scope;
// the conditional writes here are the ledger's serialization points.
type BookingRepository struct{}

// Insert stores a new booking row and returns its id.
func (r BookingRepository) Insert(q intdb.Queryer, b models.Booking) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO bookings
			(booking_no, reference, bus_id, travel_date, session_id, seat_codes,
			 passenger_name, passenger_phone, total_amount,
			 payment_status, payment_expires_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		b.BookingNo,
		b.Reference,
		b.BusID,
		b.TravelDate,
		b.SessionID,
		strings.Join(b.Seats, ","),
		strings.TrimSpace(b.PassengerName),
		strings.TrimSpace(b.PassengerPhone),
		b.TotalAmount,
		models.StatusPending,
		b.PaymentExpiresAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertHeldSeats writes one hold row per seat. A duplicate-key error
// means another active booking already covers one of the seats; the
// caller must roll back the surrounding transaction.
func (r BookingRepository) InsertHeldSeats(q intdb.Queryer, bookingID, busID int64, travelDate string, seats []string) error {
	for _, seat := range seats {
		_, err := q.Exec(`
			INSERT INTO booking_seats (booking_id, bus_id, travel_date, seat_code)
			VALUES (?,?,?,?)`,
			bookingID, busID, travelDate, seat,
		)
		if err != nil {
			if intdb.IsDuplicateKey(err) {
				return fmt.Errorf("%w: %s", ErrSeatTaken, seat)
			}
			return err
		}
	}
	return nil
}

// HeldOrPaidSeats returns the derived occupancy for a trip: seats under
// a PAID booking plus seats under a PENDING booking whose payment
// window is still open at now. Expiry is applied in the query itself so
// the answer is correct even if the sweeper has not run.
func (r BookingRepository) HeldOrPaidSeats(q intdb.Queryer, busID int64, travelDate string, now time.Time) ([]string, error) {
	return r.seatQuery(q, busID, travelDate, now, nil, false)
}

// ConflictingSeats returns, with row locks, the subset of the requested
// seats that are already occupied for the trip at now.
func (r BookingRepository) ConflictingSeats(q intdb.Queryer, busID int64, travelDate string, seats []string, now time.Time) ([]string, error) {
	if len(seats) == 0 {
		return nil, nil
	}
	return r.seatQuery(q, busID, travelDate, now, seats, true)
}

func (r BookingRepository) seatQuery(q intdb.Queryer, busID int64, travelDate string, now time.Time, onlySeats []string, forUpdate bool) ([]string, error) {
	query := `
		SELECT bs.seat_code
		FROM booking_seats bs
		JOIN bookings b ON b.id = bs.booking_id
		WHERE bs.bus_id = ? AND bs.travel_date = ?
		  AND (b.payment_status = 'PAID'
		       OR (b.payment_status = 'PENDING' AND b.payment_expires_at > ?))`
	args := []any{busID, travelDate, now}
	if len(onlySeats) > 0 {
		query += ` AND bs.seat_code IN (` + placeholders(len(onlySeats)) + `)`
		for _, s := range onlySeats {
			args = append(args, s)
		}
	}
	query += ` ORDER BY bs.seat_code`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return out, err
		}
		out = append(out, seat)
	}
	return out, rows.Err()
}

// UpdateStatusIf transitions payment_status from one value to another
// only when the current value matches (compare-and-swap). Returns false
// when the row was not in the expected state, so a concurrent
// transition that landed first is never overwritten.
func (r BookingRepository) UpdateStatusIf(q intdb.Queryer, id int64, from, to, reason string) (bool, error) {
	res, err := q.Exec(`
		UPDATE bookings
		SET payment_status = ?, cancel_reason = ?
		WHERE id = ? AND payment_status = ?`,
		to, strings.TrimSpace(reason), id, from,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkPaidIfActive is the happy-path confirm: PENDING -> PAID only
// while the payment window is still open.
func (r BookingRepository) MarkPaidIfActive(q intdb.Queryer, id int64, method string, now time.Time) (bool, error) {
	res, err := q.Exec(`
		UPDATE bookings
		SET payment_status = 'PAID', payment_method = ?
		WHERE id = ? AND payment_status = 'PENDING' AND payment_expires_at > ?`,
		strings.TrimSpace(method), id, now,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteSeats releases all hold rows of a booking. Called when the
// booking is cancelled so the seats become available immediately.
func (r BookingRepository) DeleteSeats(q intdb.Queryer, bookingID int64) error {
	_, err := q.Exec(`DELETE FROM booking_seats WHERE booking_id = ?`, bookingID)
	return err
}

// StatusForUpdate reads a booking's status and expiry under a row lock.
func (r BookingRepository) StatusForUpdate(q intdb.Queryer, id int64) (string, time.Time, error) {
	var status string
	var expires time.Time
	err := q.QueryRow(`
		SELECT payment_status, payment_expires_at
		FROM bookings WHERE id = ? FOR UPDATE`, id,
	).Scan(&status, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, domain.NotFoundError{Resource: "booking"}
		}
		return "", time.Time{}, err
	}
	return status, expires, nil
}

// CancelExpiredForTrip lazily finalizes expired PENDING bookings that
// still hold seats on the given trip, then drops their hold rows. Run
// inside the hold transaction so a request right at the expiry boundary
// sees the seats as free without waiting for the sweeper.
func (r BookingRepository) CancelExpiredForTrip(q intdb.Queryer, busID int64, travelDate string, now time.Time) error {
	_, err := q.Exec(`
		UPDATE bookings b
		JOIN (SELECT DISTINCT booking_id FROM booking_seats WHERE bus_id = ? AND travel_date = ?) s
		  ON s.booking_id = b.id
		SET b.payment_status = 'CANCELLED', b.cancel_reason = 'hold expired'
		WHERE b.payment_status = 'PENDING' AND b.payment_expires_at <= ?`,
		busID, travelDate, now,
	)
	if err != nil {
		return err
	}
	_, err = q.Exec(`
		DELETE bs FROM booking_seats bs
		JOIN bookings b ON b.id = bs.booking_id
		WHERE bs.bus_id = ? AND bs.travel_date = ? AND b.payment_status = 'CANCELLED'`,
		busID, travelDate,
	)
	return err
}

// CancelSupersededForSession cancels the session's own active holds on
// the requested seats so a re-request replaces them instead of
// colliding with them. At most one active hold per seat survives.
func (r BookingRepository) CancelSupersededForSession(q intdb.Queryer, busID int64, travelDate, sessionID string, seats []string) error {
	if sessionID == "" || len(seats) == 0 {
		return nil
	}
	args := []any{busID, travelDate}
	for _, s := range seats {
		args = append(args, s)
	}
	args = append(args, sessionID)
	_, err := q.Exec(`
		UPDATE bookings b
		JOIN booking_seats bs ON bs.booking_id = b.id
		SET b.payment_status = 'CANCELLED', b.cancel_reason = 'superseded by new hold'
		WHERE bs.bus_id = ? AND bs.travel_date = ?
		  AND bs.seat_code IN (`+placeholders(len(seats))+`)
		  AND b.session_id = ? AND b.payment_status = 'PENDING'`,
		args...,
	)
	return err
}

// ExpiredPending lists PENDING bookings whose payment window closed
// before now, oldest first.
func (r BookingRepository) ExpiredPending(q intdb.Queryer, now time.Time, limit int) ([]int64, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := q.Query(`
		SELECT id FROM bookings
		WHERE payment_status = 'PENDING' AND payment_expires_at <= ?
		ORDER BY payment_expires_at ASC
		LIMIT ?`, now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return out, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GetByID fetches a booking with its seats.
func (r BookingRepository) GetByID(q intdb.Queryer, id int64) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	return r.scanBooking(q.QueryRow(bookingSelect+` WHERE id = ? LIMIT 1`, id))
}

// GetByReference fetches a booking by its public reference string.
func (r BookingRepository) GetByReference(q intdb.Queryer, ref string) (models.Booking, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Booking{}, domain.ValidationError{Field: "reference", Msg: "reference kosong"}
	}
	return r.scanBooking(q.QueryRow(bookingSelect+` WHERE reference = ? LIMIT 1`, ref))
}

const bookingSelect = `
	SELECT id, booking_no, reference, bus_id,
	       DATE_FORMAT(travel_date, '%Y-%m-%d'), session_id, seat_codes,
	       passenger_name, passenger_phone, total_amount,
	       payment_status, payment_method, cancel_reason,
	       payment_expires_at, created_at
	FROM bookings`

func (r BookingRepository) scanBooking(row *sql.Row) (models.Booking, error) {
	var b models.Booking
	var seatCodes string
	err := row.Scan(
		&b.ID,
		&b.BookingNo,
		&b.Reference,
		&b.BusID,
		&b.TravelDate,
		&b.SessionID,
		&seatCodes,
		&b.PassengerName,
		&b.PassengerPhone,
		&b.TotalAmount,
		&b.PaymentStatus,
		&b.PaymentMethod,
		&b.CancelReason,
		&b.PaymentExpiresAt,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking"}
		}
		return models.Booking{}, err
	}
	b.Seats = splitSeatCodes(seatCodes)
	return b, nil
}

func splitSeatCodes(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
