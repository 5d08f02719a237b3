package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrDiverged indicates a batch run exceeded its step or time cap
	// before reaching the target velocity.
	ErrDiverged = errors.New("dynamo: simulation diverged (target velocity not reached)")

	// ErrInvalidStep indicates a non-positive or non-finite time step.
	ErrInvalidStep = errors.New("dynamo: time step must be positive")

	// ErrUnbounded indicates a batch configuration without a finite step
	// or time cap.
	ErrUnbounded = errors.New("dynamo: batch run needs a positive max_steps or max_time")

	// ErrInvalidState indicates a sample with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// DivergedError carries the point at which a batch run gave up.
type DivergedError struct {
	Steps    int
	Time     float64
	Velocity float64
	Target   float64
	Cap      string // "max_steps" or "max_time"
}

func (e *DivergedError) Error() string {
	return fmt.Sprintf("dynamo: %s reached after %d steps (t=%.1fs): velocity %.2f m/s, target %.2f m/s",
		e.Cap, e.Steps, e.Time, e.Velocity, e.Target)
}

func (e *DivergedError) Unwrap() error {
	return ErrDiverged
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
