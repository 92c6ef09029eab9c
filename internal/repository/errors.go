// Package repository defines error types that are reused across multiple
// repositories and by the booking engine. These sentinel values allow
// higher layers such as handlers to distinguish between different
// failure scenarios with errors.Is and map each one to a stable HTTP
// status, so a client can tell "try a different slot" apart from
// "you may not do this".
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller is authenticated but not
// authorized for the requested action: not the booking owner, not an
// admin, or attempting a policy-restricted transition. Handlers
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an active booking already occupies the
// requested slot, when a second review references the same booking,
// or when a unique name already exists. Handlers translate this into
// an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrInvalidInput is returned when a structurally invalid field value
// reaches the engine: a malformed date or time, a party size outside
// 1–20, an over-long text field or an unknown status value.
var ErrInvalidInput = errors.New("invalid input")

// ErrCapacityExceeded is returned when the requested party size
// exceeds the capacity of the assigned table.
var ErrCapacityExceeded = errors.New("table capacity exceeded")

// ErrInvalidTransition is returned when a requested status change is
// not reachable from the booking's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInvalidState is returned when a non-admin attempts to mutate a
// booking that is already cancelled or completed.
var ErrInvalidState = errors.New("booking is in a terminal state")

// isDuplicate reports whether err is a uniqueness violation from the
// underlying driver. MySQL reports error 1062, SQLite (used by the
// test suite) reports "UNIQUE constraint failed".
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique constraint")
}
