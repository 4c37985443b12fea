package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for soft body operations.
var (
	// ErrInvalidTopology indicates a ring with fewer than three particles.
	ErrInvalidTopology = errors.New("dynamo: invalid topology (ring needs at least 3 particles)")

	// ErrInvalidParameter indicates a parameter value is outside valid range.
	ErrInvalidParameter = errors.New("dynamo: parameter out of valid bounds")

	// ErrDegenerateVolume indicates the enclosed area collapsed or inverted.
	ErrDegenerateVolume = errors.New("dynamo: degenerate enclosed volume")

	// ErrInvalidState indicates a state with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// StepError wraps an error with the point in the step where it surfaced.
type StepError struct {
	Tick         int
	SubIteration int
	Stage        string
	Volume       float64
	Wrapped      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("tick %d, sub-iteration %d (%s): %v", e.Tick, e.SubIteration, e.Stage, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
