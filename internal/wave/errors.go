package wave

import "errors"

// ErrInvariantViolation marks agent state that valid mutation can never produce.
var ErrInvariantViolation = errors.New("agent invariant violation")

// InvariantError describes a corrupted agent or term
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return ErrInvariantViolation.Error() + ": " + e.Reason
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}
