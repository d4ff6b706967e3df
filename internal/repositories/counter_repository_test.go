package repositories

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCounterNextReturnsIncrementedValue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	// LAST_INSERT_ID(value+1) surfaces the new counter value as the
	// statement's insert id.
	mock.ExpectExec("INSERT INTO counters").WithArgs("booking_no").
		WillReturnResult(sqlmock.NewResult(42, 1))

	repo := CounterRepository{}
	got, err := repo.Next(db, "booking_no")
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if got != 42 {
		t.Fatalf("counter value mismatch: got %d want 42", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCounterNextRejectsEmptyName(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	if _, err := (CounterRepository{}).Next(db, ""); err == nil {
		t.Fatalf("expected error for empty counter name")
	}
}
