package repositories

import (
	"database/sql"
	"fmt"

	intconfig "backend/internal/config"
	intdb "backend/internal/db"
	"backend/internal/domain/models"
)

// PaymentRepository keeps an append-only audit log of gateway
// notifications. The booking status itself lives on bookings and is
// only changed through the ledger's CAS transitions.
type PaymentRepository struct {
	DB *sql.DB
}

func (r PaymentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// InsertEvent appends one notification record.
func (r PaymentRepository) InsertEvent(ev models.PaymentEvent) (int64, error) {
	if ev.BookingID <= 0 {
		return 0, fmt.Errorf("booking_id tidak valid")
	}
	res, err := r.db().Exec(`
		INSERT INTO payment_events (booking_id, outcome, payment_method, payload)
		VALUES (?,?,?,?)`,
		ev.BookingID, ev.Outcome, ev.PaymentMethod, intdb.NullIfEmpty(ev.Payload),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListByBookingID returns the notification history for a booking.
func (r PaymentRepository) ListByBookingID(bookingID int64) ([]models.PaymentEvent, error) {
	if bookingID <= 0 {
		return nil, fmt.Errorf("booking_id tidak valid")
	}
	rows, err := r.db().Query(`
		SELECT id, booking_id, outcome, payment_method, COALESCE(payload, '')
		FROM payment_events WHERE booking_id = ? ORDER BY id ASC`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PaymentEvent{}
	for rows.Next() {
		var ev models.PaymentEvent
		if err := rows.Scan(&ev.ID, &ev.BookingID, &ev.Outcome, &ev.PaymentMethod, &ev.Payload); err != nil {
			return out, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
