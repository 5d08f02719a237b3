package dynamo

import (
	"context"
	"fmt"
	"iter"
	"math"

	"github.com/san-kum/takeoff/internal/aero"
)

// Climb returns the batch-mode sample sequence for p. Every iteration
// starts from rest and ends with the first sample whose velocity reaches
// the target. If cfg.MaxSteps or cfg.MaxTime is exceeded first, the final
// element carries a *DivergedError. Cancelling ctx ends the sequence with
// ctx.Err(). A cfg that fails Validate yields its error as the only element.
func Climb(ctx context.Context, p aero.Params, c aero.Constants, cfg Config) iter.Seq2[Sample, error] {
	return func(yield func(Sample, error) bool) {
		if err := cfg.Validate(); err != nil {
			yield(Sample{}, err)
			return
		}

		var st State
		steps := 0

		for {
			select {
			case <-ctx.Done():
				yield(Sample{}, ctx.Err())
				return
			default:
			}

			if exceeded := capExceeded(cfg, steps, st.Time); exceeded != "" {
				yield(Sample{}, &DivergedError{
					Steps:    steps,
					Time:     st.Time,
					Velocity: st.Velocity,
					Target:   c.TargetVelocity,
					Cap:      exceeded,
				})
				return
			}

			s := step(&st, c, p, cfg.Dt)
			steps++

			if !s.IsValid() {
				yield(s, &SimulationError{Step: steps, Time: s.Time, Wrapped: ErrInvalidState})
				return
			}
			if !yield(s, nil) {
				return
			}
			if st.Velocity >= c.TargetVelocity {
				return
			}
		}
	}
}

func capExceeded(cfg Config, steps int, t float64) string {
	if cfg.MaxSteps > 0 && steps >= cfg.MaxSteps {
		return "max_steps"
	}
	if cfg.MaxTime > 0 && t >= cfg.MaxTime {
		return "max_time"
	}
	return ""
}

// Runner drives the stepper in batch mode.
type Runner struct {
	cfg       Config
	metrics   []Metric
	observers []Observer
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:       cfg,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }
func (r *Runner) Config() Config         { return r.cfg }

// Run steps from rest until the target velocity is reached. When the run
// diverges or is cancelled the partial result is returned with the error.
func (r *Runner) Run(ctx context.Context, p aero.Params) (*Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := aero.Compute(p)
	if err != nil {
		return nil, err
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	result := &Result{
		Params:    p,
		Constants: c,
		Samples:   make([]Sample, 0, r.initialCapacity()),
		Phase:     Accelerating,
		Metrics:   make(map[string]float64),
	}

	var runErr error
	for s, err := range Climb(ctx, p, c, r.cfg) {
		if err != nil {
			runErr = err
			break
		}
		result.Samples = append(result.Samples, s)
		result.Steps++

		for _, m := range r.metrics {
			m.Observe(s)
		}
		for _, o := range r.observers {
			o.OnSample(s)
		}
	}

	final := result.Final()
	result.Airborne = final.Airborne()
	if runErr == nil && final.Velocity >= c.TargetVelocity {
		result.Phase = TargetReached
	}
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, runErr
}

// Validate reports whether a batch run with cfg is guaranteed to stop:
// the time step must advance and at least one cap must be finite.
func (cfg Config) Validate() error {
	if err := validateDt(cfg.Dt); err != nil {
		return fmt.Errorf("%w, got %f", err, cfg.Dt)
	}
	timeCapped := cfg.MaxTime > 0 && !math.IsInf(cfg.MaxTime, 1)
	if cfg.MaxSteps <= 0 && !timeCapped {
		return ErrUnbounded
	}
	return nil
}

func (r *Runner) initialCapacity() int {
	n := 1024
	if r.cfg.MaxSteps > 0 && r.cfg.MaxSteps < n {
		n = r.cfg.MaxSteps
	}
	return n
}
