package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by validation and the rescue engine.
// Callers branch with errors.Is rather than string matching.
var (
	ErrInvalidTimeWindow   = errors.New("time window end precedes start")
	ErrNonPositiveCapacity = errors.New("truck capacity must be positive")
	ErrNonPositiveSpeed    = errors.New("truck speed must be positive")
	ErrDemandExceedsFleet  = errors.New("delivery demand exceeds every truck capacity")
	ErrIllegalTransition   = errors.New("illegal status transition")
	ErrNoRescueAvailable   = errors.New("no rescue available")
)

// ValidationError identifies the input field that was rejected before
// optimization started.
type ValidationError struct {
	Field  string
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input %s: %v", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }
