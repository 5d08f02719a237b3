package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/san-kum/takeoff/internal/aero"
	"github.com/san-kum/takeoff/internal/config"
	"github.com/san-kum/takeoff/internal/dynamo"
	"github.com/san-kum/takeoff/internal/logging"
	"github.com/san-kum/takeoff/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// ParameterSweep runs one batch simulation per value of a single parameter.
type ParameterSweep struct {
	Base      aero.Params
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Sim       dynamo.Config
	Workers   int // concurrent runs; 0 means GOMAXPROCS
}

// Result is the outcome of one sweep point. Diverged runs have Err set
// and NaN timing fields.
type Result struct {
	ParamValue  float64
	TargetTime  float64
	LiftoffTime float64
	GroundRoll  float64
	Steps       int
	Err         error
}

func (r Result) Diverged() bool {
	return errors.Is(r.Err, dynamo.ErrDiverged)
}

// Values returns the evenly spaced parameter values of the sweep.
func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.ParamMin}
	}
	step := (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	vals := make([]float64, s.NumSteps)
	for i := range vals {
		vals[i] = s.ParamMin + float64(i)*step
	}
	return vals
}

// Run executes every sweep point. Divergence is recorded per point; any
// other error aborts the sweep. Values outside config.Ranges are rejected
// before any point runs.
func (s *ParameterSweep) Run(ctx context.Context) ([]Result, error) {
	if s.NumSteps < 1 {
		return nil, fmt.Errorf("sweep: need at least one step, got %d", s.NumSteps)
	}
	if err := config.CheckDt(s.Sim.Dt); err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	values := s.Values()
	for _, val := range values {
		if err := config.CheckParam(s.ParamName, val); err != nil {
			return nil, fmt.Errorf("sweep: %w", err)
		}
	}
	first := s.Base
	if err := first.SetParam(s.ParamName, values[0]); err != nil {
		return nil, err
	}
	if err := config.CheckParams(first); err != nil {
		return nil, fmt.Errorf("sweep base: %w", err)
	}

	log := logging.FromContext(ctx)
	results := make([]Result, len(values))

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, val := range values {
		g.Go(func() error {
			p := s.Base
			if err := p.SetParam(s.ParamName, val); err != nil {
				return err
			}

			res, err := runPoint(gctx, p, s.Sim)
			res.ParamValue = val
			results[i] = res
			if err != nil {
				return fmt.Errorf("sweep %s=%g: %w", s.ParamName, val, err)
			}

			log.Debug("sweep point done", "param", s.ParamName, "value", val, "steps", res.Steps, "diverged", res.Diverged())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runPoint(ctx context.Context, p aero.Params, cfg dynamo.Config) (Result, error) {
	liftoff := metrics.NewLiftoff()
	roll := metrics.NewGroundRoll()

	r := dynamo.NewRunner(cfg)
	r.AddMetric(liftoff)
	r.AddMetric(roll)

	result, err := r.Run(ctx, p)
	switch {
	case errors.Is(err, dynamo.ErrDiverged):
		return Result{
			TargetTime:  math.NaN(),
			LiftoffTime: liftoffOrNaN(liftoff),
			GroundRoll:  math.NaN(),
			Steps:       result.Steps,
			Err:         err,
		}, nil
	case err != nil:
		return Result{Err: err}, err
	}

	return Result{
		TargetTime:  result.Final().Time,
		LiftoffTime: liftoffOrNaN(liftoff),
		GroundRoll:  roll.Value(),
		Steps:       result.Steps,
	}, nil
}

func liftoffOrNaN(l *metrics.Liftoff) float64 {
	if !l.Reached() {
		return math.NaN()
	}
	return l.Value()
}

// Best returns the converged point with the shortest time to target.
func Best(results []Result) (Result, bool) {
	best, found := Result{}, false
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if !found || r.TargetTime < best.TargetTime {
			best, found = r, true
		}
	}
	return best, found
}
