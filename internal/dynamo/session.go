package dynamo

import (
	"fmt"

	"github.com/san-kum/takeoff/internal/aero"
)

// Session drives the stepper in interactive mode: one step per external
// trigger, state kept between triggers until Reset.
type Session struct {
	params    aero.Params
	constants aero.Constants
	dt        float64
	state     State
	observers []Observer
}

func NewSession(p aero.Params, dt float64) (*Session, error) {
	if err := validateDt(dt); err != nil {
		return nil, fmt.Errorf("%w, got %f", err, dt)
	}
	c, err := aero.Compute(p)
	if err != nil {
		return nil, err
	}
	return &Session{
		params:    p,
		constants: c,
		dt:        dt,
		observers: make([]Observer, 0),
	}, nil
}

func (s *Session) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Step advances the session by one time step.
func (s *Session) Step() Sample {
	sample := Advance(&s.state, s.constants, s.params, s.dt)
	for _, o := range s.observers {
		o.OnSample(sample)
	}
	return sample
}

// TakeoffAchieved reports whether the current velocity has reached the
// takeoff velocity scaled by the safety margin.
func (s *Session) TakeoffAchieved() bool {
	return s.state.Velocity >= s.constants.TakeoffVelocity*s.params.Margin
}

// Reset zeroes velocity, time and altitude and clears all samples.
func (s *Session) Reset() {
	s.state.Reset()
}

// SetParams replaces the parameter set and recomputes the derived
// constants. The current state is kept. On error the session is unchanged.
func (s *Session) SetParams(p aero.Params) error {
	c, err := aero.Compute(p)
	if err != nil {
		return err
	}
	s.params, s.constants = p, c
	return nil
}

func (s *Session) Params() aero.Params       { return s.params }
func (s *Session) Constants() aero.Constants { return s.constants }
func (s *Session) Dt() float64               { return s.dt }

// State returns a view of the session state. The sample slice is shared
// and must not be modified.
func (s *Session) State() State { return s.state }
