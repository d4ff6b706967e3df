package domain

import (
	"errors"
	"fmt"
	"strings"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// SeatConflictError rejects a hold whose seats are already taken.
// Seats lists the conflicting seat codes so the caller can refresh
// its seat map and let the passenger pick again.
type SeatConflictError struct {
	Seats []string
}

func (e SeatConflictError) Error() string {
	if len(e.Seats) == 0 {
		return "seat conflict"
	}
	return fmt.Sprintf("seats not available: %s", strings.Join(e.Seats, ", "))
}

// HoldExpiredError means a payment confirmation arrived after the hold
// window closed; the booking has been cancelled as a side effect.
type HoldExpiredError struct {
	BookingID int64
}

func (e HoldExpiredError) Error() string {
	return fmt.Sprintf("hold for booking %d expired", e.BookingID)
}

// AlreadyFinalizedError rejects a transition on a booking that already
// reached a terminal payment status.
type AlreadyFinalizedError struct {
	BookingID int64
	Status    string
}

func (e AlreadyFinalizedError) Error() string {
	return fmt.Sprintf("booking %d already %s", e.BookingID, strings.ToLower(e.Status))
}

// UnavailableError wraps transient storage failures. The caller may
// retry the whole operation; every mutation is conditional so no
// partial state is left behind.
type UnavailableError struct {
	Err error
}

func (e UnavailableError) Error() string {
	if e.Err != nil {
		return "storage unavailable: " + e.Err.Error()
	}
	return "storage unavailable"
}

func (e UnavailableError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsSeatConflict(err error) bool {
	var target SeatConflictError
	return errors.As(err, &target)
}

func IsHoldExpired(err error) bool {
	var target HoldExpiredError
	return errors.As(err, &target)
}

func IsAlreadyFinalized(err error) bool {
	var target AlreadyFinalizedError
	return errors.As(err, &target)
}

func IsUnavailable(err error) bool {
	var target UnavailableError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
