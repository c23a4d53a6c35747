package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrRefundIneligible = errors.New("refund cannot be processed for this booking")
)

// ValidationError is a recoverable, user-visible rejection of a booking
// request. The operation that returns it has no side effects.
type ValidationError struct {
	Msg              string
	ConflictingSeats []string
}

func (e *ValidationError) Error() string {
	if len(e.ConflictingSeats) > 0 {
		return e.Msg + ": " + strings.Join(e.ConflictingSeats, ", ")
	}
	return e.Msg
}

func NewValidationError(msg string, seats ...string) *ValidationError {
	return &ValidationError{Msg: msg, ConflictingSeats: seats}
}
