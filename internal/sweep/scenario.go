package sweep

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/takeoff/internal/aero"
	"github.com/san-kum/takeoff/internal/config"
	"github.com/san-kum/takeoff/internal/dynamo"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted list of batch runs, each starting from a preset
// or the default aircraft and overriding selected parameters.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Dt          float64        `yaml:"dt"`
	MaxSteps    int            `yaml:"max_steps"`
	Steps       []ScenarioStep `yaml:"steps"`
}

type ScenarioStep struct {
	Name   string             `yaml:"name"`
	Preset string             `yaml:"preset"`
	Params map[string]float64 `yaml:"params"`
}

// StepOutcome pairs a scenario step with its batch result. Result is
// non-nil for completed and diverged runs.
type StepOutcome struct {
	Step   ScenarioStep
	Result *dynamo.Result
	Err    error
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

func (sc *Scenario) simConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	if sc.Dt > 0 {
		cfg.Dt = sc.Dt
	}
	if sc.MaxSteps > 0 {
		cfg.MaxSteps = sc.MaxSteps
	}
	return cfg
}

// ResolveParams returns the aircraft parameters of one step.
func (st ScenarioStep) ResolveParams() (aero.Params, error) {
	p := aero.DefaultParams()
	if st.Preset != "" {
		preset, ok := config.GetPreset(st.Preset)
		if !ok {
			return p, fmt.Errorf("unknown preset: %s (available: %v)", st.Preset, config.ListPresets())
		}
		p = preset
	}
	for k, v := range st.Params {
		if err := p.SetParam(k, v); err != nil {
			return p, err
		}
	}
	return p, nil
}

// Validate checks the stepping settings and every step's parameters
// against config.Ranges.
func (sc *Scenario) Validate() error {
	if sc.Dt != 0 {
		if err := config.CheckDt(sc.Dt); err != nil {
			return err
		}
	}
	if sc.MaxSteps < 0 {
		return &aero.InvalidParameterError{Name: "max_steps", Value: float64(sc.MaxSteps), Reason: "must not be negative"}
	}
	for i, step := range sc.Steps {
		p, err := step.ResolveParams()
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := config.CheckParams(p); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// RunScenario executes the steps in order. Divergence is reported per
// step. An invalid scenario is rejected before any step runs.
func RunScenario(ctx context.Context, sc *Scenario, observers ...dynamo.Observer) ([]StepOutcome, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	cfg := sc.simConfig()
	outcomes := make([]StepOutcome, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		p, err := step.ResolveParams()
		if err != nil {
			return outcomes, fmt.Errorf("step %d: %w", i+1, err)
		}

		r := dynamo.NewRunner(cfg)
		for _, o := range observers {
			r.AddObserver(o)
		}

		result, err := r.Run(ctx, p)
		if result == nil {
			return outcomes, fmt.Errorf("step %d: %w", i+1, err)
		}
		outcomes = append(outcomes, StepOutcome{Step: step, Result: result, Err: err})
		if ctx.Err() != nil {
			return outcomes, ctx.Err()
		}
	}

	return outcomes, nil
}
