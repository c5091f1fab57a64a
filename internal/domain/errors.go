package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrValidation is returned for malformed input such as non-positive amounts.
	ErrValidation = errors.New("validation error")
	// ErrNotLoaded is returned by financial mutations issued before the seed data has loaded.
	ErrNotLoaded = fmt.Errorf("%w: financial data not loaded", ErrInvalidTransition)
)
