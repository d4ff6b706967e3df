package repositories

import (
	"fmt"

	intdb "backend/internal/db"
)

// CounterRepository hands out monotonically increasing numbers from a
// shared counter row. The increment-and-read is a single statement, so
// concurrent booking creation can never observe the same value.
type CounterRepository struct{}

// Next increments the named counter and returns the new value. The
// LAST_INSERT_ID(expr) trick makes the new value readable from the same
// statement's result, connection-locally, with no read-then-write gap.
func (r CounterRepository) Next(q intdb.Queryer, name string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("counter name kosong")
	}
	res, err := q.Exec(`
		INSERT INTO counters (name, value) VALUES (?, LAST_INSERT_ID(1))
		ON DUPLICATE KEY UPDATE value = LAST_INSERT_ID(value + 1)`,
		name,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
