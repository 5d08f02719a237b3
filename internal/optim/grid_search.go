package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/takeoff/internal/aero"
	"github.com/san-kum/takeoff/internal/config"
	"github.com/san-kum/takeoff/internal/dynamo"
	"github.com/san-kum/takeoff/internal/logging"
	"github.com/san-kum/takeoff/internal/metrics"
)

// GridSearch evaluates every combination of the given parameter values
// and keeps the one that minimizes a run metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// NewGridSearch rejects unknown parameters and any grid value outside
// config.Ranges.
func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", name)
		}
		for _, v := range ranges[i] {
			if err := config.CheckParam(name, v); err != nil {
				return nil, fmt.Errorf("optim: %w", err)
			}
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Outcome is the best grid point found.
type Outcome struct {
	Params    map[string]float64
	Value     float64
	Evaluated int
	Diverged  int
}

// Search runs base with every grid combination applied and minimizes
// metricName. Diverged points are skipped.
func (g *GridSearch) Search(ctx context.Context, base aero.Params, cfg dynamo.Config, metricName string) (Outcome, error) {
	out := Outcome{Value: math.Inf(1)}
	if !slices.Contains(metrics.Names(), metricName) {
		return out, fmt.Errorf("optim: unknown metric %q (available: %v)", metricName, metrics.Names())
	}
	if err := config.CheckParams(base); err != nil {
		return out, fmt.Errorf("optim base: %w", err)
	}
	err := g.searchRecursive(ctx, 0, base, make(map[string]float64), cfg, metricName, &out)
	if err != nil {
		return out, err
	}
	if out.Params == nil {
		return out, fmt.Errorf("optim: no grid point reached the target")
	}
	return out, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	p aero.Params,
	current map[string]float64,
	cfg dynamo.Config,
	metricName string,
	out *Outcome,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		return g.evaluate(ctx, p, current, cfg, metricName, out)
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := p
		if err := next.SetParam(name, val); err != nil {
			return err
		}
		current[name] = val
		if err := g.searchRecursive(ctx, depth+1, next, current, cfg, metricName, out); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) evaluate(ctx context.Context, p aero.Params, current map[string]float64, cfg dynamo.Config, metricName string, out *Outcome) error {
	log := logging.FromContext(ctx)

	r := dynamo.NewRunner(cfg)
	for _, m := range metrics.Defaults() {
		r.AddMetric(m)
	}

	result, err := r.Run(ctx, p)
	out.Evaluated++
	switch {
	case errors.Is(err, dynamo.ErrDiverged):
		out.Diverged++
		log.Debug("grid point diverged", "params", current)
		return nil
	case err != nil:
		return err
	}

	val := result.Metrics[metricName]
	if val < out.Value {
		out.Value = val
		out.Params = make(map[string]float64, len(current))
		for k, v := range current {
			out.Params[k] = v
		}
	}
	return nil
}
