package domain

import (
	"errors"
	"fmt"
)

// ValidationCode identifies which booking-acceptance rule failed.
type ValidationCode string

const (
	CodeResourceUnavailable ValidationCode = "ResourceUnavailable"
	CodeInvalidRange        ValidationCode = "InvalidRange"
	CodePastStart           ValidationCode = "PastStart"
	CodeTooSoon             ValidationCode = "TooSoon"
	CodeTooFarAhead         ValidationCode = "TooFarAhead"
	CodeDurationExceeded    ValidationCode = "DurationExceeded"
	CodeConflict            ValidationCode = "Conflict"
	CodeMaintenanceConflict ValidationCode = "MaintenanceConflict"
	CodeAccessDenied        ValidationCode = "AccessDenied"
)

// ValidationError is a booking-acceptance failure. It is always recoverable
// and surfaced to the caller verbatim.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(code ValidationCode, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Lookup failures.
var (
	ErrResourceNotFound    = errors.New("resource not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrClubNotFound        = errors.New("club not found")
	ErrMaintenanceNotFound = errors.New("maintenance window not found")
)

// State errors: the caller asked for a transition the booking's current
// state does not allow.
var (
	ErrNotPending       = errors.New("booking is not pending")
	ErrNotApproved      = errors.New("booking is not approved")
	ErrNotOngoing       = errors.New("booking is not ongoing")
	ErrAlreadyTerminal  = errors.New("booking already reached a final state")
	ErrAlreadyCheckedIn = errors.New("already checked in")
	ErrNoActiveCheckIn  = errors.New("no active check-in found")
	ErrTooEarly         = errors.New("too early to check in")
)

// ErrConflictAtApproval is returned when the slot was taken between
// submission and approval. Transient: the caller may retry against fresh
// availability data.
var ErrConflictAtApproval = errors.New("time slot conflicts with an existing booking")

// ErrForbidden is returned when the actor may not perform the operation.
var ErrForbidden = errors.New("forbidden")

// IsStateError reports whether err belongs to the state-error taxonomy.
func IsStateError(err error) bool {
	for _, e := range []error{
		ErrNotPending, ErrNotApproved, ErrNotOngoing,
		ErrAlreadyTerminal, ErrAlreadyCheckedIn, ErrNoActiveCheckIn, ErrTooEarly,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
