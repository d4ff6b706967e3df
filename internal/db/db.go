package db

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// Queryer is satisfied by *sql.DB and *sql.Tx so repositories can run
// inside or outside a transaction without caring which.
type Queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// IsDuplicateKey reports whether err is a MySQL duplicate-entry error
// (error 1062). The unique key on (bus_id, travel_date, seat_code) turns
// concurrent hold inserts for the same seat into this error.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// NullIfEmpty helps store optional strings without wiping existing data.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
