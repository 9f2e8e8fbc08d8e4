package domain

import "errors"

// Common errors
var (
	ErrNotFound  = errors.New("record not found")
	ErrForbidden = errors.New("access forbidden: you don't own this resource")
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidInput marks a malformed or contradictory record handed to a calculator.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidPeriod marks a period whose start falls after its end, or an unknown period kind.
	ErrInvalidPeriod = errors.New("invalid period")
)
