package domain

import "errors"

var (
	// ErrInvalidInput marks caller-correctable validation failures.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition is returned when a status change is not allowed
	// from the record's current state.
	ErrInvalidTransition = errors.New("invalid status transition")
)
