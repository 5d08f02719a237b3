package optim

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/takeoff/internal/aero"
	"github.com/san-kum/takeoff/internal/dynamo"
)

func TestGridSearchGroundRoll(t *testing.T) {
	g, err := NewGridSearch(
		[]string{"thrust", "mass"},
		[][]float64{{150000, 250000}, {60000, 80000}},
	)
	if err != nil {
		t.Fatal(err)
	}

	out, err := g.Search(context.Background(), aero.DefaultParams(), dynamo.DefaultConfig(), "ground_roll")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if out.Evaluated != 4 {
		t.Errorf("expected 4 evaluations, got %d", out.Evaluated)
	}
	if out.Params["thrust"] != 250000 || out.Params["mass"] != 60000 {
		t.Errorf("expected most thrust and least mass, got %v", out.Params)
	}
	if out.Value <= 0 {
		t.Errorf("expected positive ground roll, got %f", out.Value)
	}
}

func TestGridSearchSkipsDiverged(t *testing.T) {
	base := aero.DefaultParams()
	base.DragCoefficient = 0.2

	g, err := NewGridSearch([]string{"thrust"}, [][]float64{{1000, 300000}})
	if err != nil {
		t.Fatal(err)
	}

	out, err := g.Search(context.Background(), base, dynamo.Config{Dt: 0.1, MaxSteps: 3000}, "liftoff_time")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if out.Diverged != 1 {
		t.Errorf("expected one diverged point, got %d", out.Diverged)
	}
	if out.Params["thrust"] != 300000 {
		t.Errorf("expected converged point, got %v", out.Params)
	}
}

func TestGridSearchErrors(t *testing.T) {
	if _, err := NewGridSearch([]string{"flaps"}, [][]float64{{1}}); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if _, err := NewGridSearch([]string{"mass"}, nil); err == nil {
		t.Error("expected error for mismatched ranges")
	}

	if _, err := NewGridSearch([]string{"thrust"}, [][]float64{{250000, 5e7}}); !errors.Is(err, aero.ErrInvalidParameter) {
		t.Errorf("expected out-of-range grid value rejected, got %v", err)
	}

	g, _ := NewGridSearch([]string{"mass"}, [][]float64{{70000}})
	if _, err := g.Search(context.Background(), aero.DefaultParams(), dynamo.DefaultConfig(), "wingspan"); err == nil {
		t.Error("expected error for unknown metric")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Search(ctx, aero.DefaultParams(), dynamo.DefaultConfig(), "ground_roll"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestGridSearchUnknownMetricBeforeRunning(t *testing.T) {
	base := aero.DefaultParams()
	base.DragCoefficient = 0.2

	g, err := NewGridSearch([]string{"thrust"}, [][]float64{{1000, 1500}})
	if err != nil {
		t.Fatal(err)
	}

	out, err := g.Search(context.Background(), base, dynamo.Config{Dt: 0.1, MaxSteps: 500}, "wingspan")
	if err == nil || !strings.Contains(err.Error(), "unknown metric") {
		t.Fatalf("expected unknown metric error, got %v", err)
	}
	if out.Evaluated != 0 {
		t.Errorf("expected no runs, got %d", out.Evaluated)
	}
}
