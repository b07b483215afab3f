package orbit

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingParameter is returned when a physical parameter needed for a
	// derived quantity was not supplied.
	ErrMissingParameter = errors.New("missing orbital parameter")
	// ErrNoTransit indicates the geometry gives no (full) transit or eclipse.
	ErrNoTransit = errors.New("orbit geometry produces no event")
	// ErrNonPhysical is returned for a supplied parameter outside its physical range.
	ErrNonPhysical = errors.New("non-physical orbital parameter")
)

// ParameterError names the parameter that could not be resolved.
type ParameterError struct {
	Name string
	// For is the quantity that needed it, e.g. "eclipse phase".
	For string
}

func (e *ParameterError) Error() string {
	if e.For == "" {
		return fmt.Sprintf("%s: %s", ErrMissingParameter, e.Name)
	}
	return fmt.Sprintf("%s: %s (needed for %s)", ErrMissingParameter, e.Name, e.For)
}

func (e *ParameterError) Unwrap() error {
	return ErrMissingParameter
}
