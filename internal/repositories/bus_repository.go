package repositories

import (
	"database/sql"
	"errors"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
)

type BusRepository struct {
	DB *sql.DB
}

func (r BusRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// List returns all buses ordered by code.
func (r BusRepository) List() ([]models.Bus, error) {
	rows, err := r.db().Query(`
		SELECT id, code, name, total_seats, fare
		FROM buses ORDER BY code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Bus{}
	for rows.Next() {
		var b models.Bus
		if err := rows.Scan(&b.ID, &b.Code, &b.Name, &b.TotalSeats, &b.Fare); err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetByID fetches one bus.
func (r BusRepository) GetByID(id int64) (models.Bus, error) {
	if id <= 0 {
		return models.Bus{}, domain.ValidationError{Field: "bus_id", Msg: "id tidak valid"}
	}
	var b models.Bus
	err := r.db().QueryRow(`
		SELECT id, code, name, total_seats, fare
		FROM buses WHERE id = ? LIMIT 1`, id,
	).Scan(&b.ID, &b.Code, &b.Name, &b.TotalSeats, &b.Fare)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Bus{}, domain.NotFoundError{Resource: "bus"}
		}
		return models.Bus{}, err
	}
	return b, nil
}

// GetSeatLayout returns the static seat layout of a bus. The layout is
// read-only input to the ledger; occupancy never lives here.
func (r BusRepository) GetSeatLayout(busID int64) ([]models.BusSeat, error) {
	if busID <= 0 {
		return nil, domain.ValidationError{Field: "bus_id", Msg: "id tidak valid"}
	}
	rows, err := r.db().Query(`
		SELECT seat_code, is_ladies_only, is_reserved_for_agent, COALESCE(reserved_agent_id, 0)
		FROM bus_seats WHERE bus_id = ? ORDER BY id ASC`, busID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.BusSeat{}
	for rows.Next() {
		var s models.BusSeat
		if err := rows.Scan(&s.SeatCode, &s.IsLadiesOnly, &s.IsReservedForAgent, &s.ReservedAgentID); err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
