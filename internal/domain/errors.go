package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers missing flights and bookings.
	ErrNotFound = errors.New("not found")

	// ErrSeatUnavailable means a requested seat is already assigned or the
	// flight has fewer seats remaining than requested. Callers may retry
	// against a fresh snapshot and price.
	ErrSeatUnavailable = errors.New("seat unavailable")

	// ErrDuplicatePNR is a transient internal collision. The booking
	// manager retries PNR generation and never surfaces this to callers.
	ErrDuplicatePNR = errors.New("duplicate pnr")

	// ErrPaymentMismatch means the offered amount does not equal the price
	// recorded at booking time.
	ErrPaymentMismatch = errors.New("payment amount mismatch")

	// ErrPaymentFailed is a gateway decline. The booking is rolled back to
	// CANCELLED with its seats released before this is returned.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrAlreadyCancelled guards repeat cancellations. No mutation happens
	// on the repeated call.
	ErrAlreadyCancelled = errors.New("booking already cancelled")
)

// ValidationError marks malformed or missing caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
