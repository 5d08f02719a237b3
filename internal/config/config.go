package config

import (
	"fmt"
	"os"

	"github.com/san-kum/takeoff/internal/aero"
	"github.com/san-kum/takeoff/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.1
	DefaultMaxSteps = 100000
	DefaultMaxTime  = 3600.0
	DefaultDataDir  = ".takeoff"
)

type Config struct {
	Aircraft    aero.Params `yaml:"aircraft"`
	Dt          float64     `yaml:"dt"`
	MaxSteps    int         `yaml:"max_steps"`
	MaxTime     float64     `yaml:"max_time"`
	DataDir     string      `yaml:"data_dir"`
	MetricsAddr string      `yaml:"metrics_addr"`
}

func DefaultConfig() *Config {
	return &Config{
		Aircraft: aero.DefaultParams(),
		Dt:       DefaultDt,
		MaxSteps: DefaultMaxSteps,
		MaxTime:  DefaultMaxTime,
		DataDir:  DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Range is an inclusive bound on a user-supplied value.
type Range struct {
	Min, Max float64
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Ranges are the input bounds accepted at the boundary, keyed by the
// names used in aero.Params.SetParam.
var Ranges = map[string]Range{
	"mass":        {1000, 500000},
	"wing_area":   {10, 500},
	"cl":          {0.1, 3.0},
	"cd":          {0.01, 0.2},
	"pressure":    {50000, 120000},
	"temperature": {-50, 50},
	"thrust":      {1000, 1000000},
	"margin":      {1.0, 3.0},
}

// CheckParam reports whether v is an accepted input for the named
// parameter.
func CheckParam(name string, v float64) error {
	r, ok := Ranges[name]
	if !ok {
		return &aero.InvalidParameterError{Name: name, Value: v, Reason: "unknown parameter"}
	}
	if !r.Contains(v) {
		return &aero.InvalidParameterError{
			Name:   name,
			Value:  v,
			Reason: fmt.Sprintf("must be within [%g, %g]", r.Min, r.Max),
		}
	}
	return nil
}

// CheckParams checks every field of p against Ranges.
func CheckParams(p aero.Params) error {
	params := p.GetParams()
	for _, name := range aero.ParamNames() {
		if err := CheckParam(name, params[name]); err != nil {
			return err
		}
	}
	return p.Validate()
}

// CheckDt reports whether dt is an accepted time step.
func CheckDt(dt float64) error {
	if !(dt > 0 && dt <= 1) {
		return &aero.InvalidParameterError{Name: "dt", Value: dt, Reason: "must be within (0, 1]"}
	}
	return nil
}

// Validate checks the aircraft parameters against Ranges and the stepping
// settings. Failures are *aero.InvalidParameterError.
func (c *Config) Validate() error {
	params := c.Aircraft.GetParams()
	for _, name := range aero.ParamNames() {
		if err := CheckParam(name, params[name]); err != nil {
			return err
		}
	}
	if err := CheckDt(c.Dt); err != nil {
		return err
	}
	if c.MaxSteps < 0 {
		return &aero.InvalidParameterError{Name: "max_steps", Value: float64(c.MaxSteps), Reason: "must not be negative"}
	}
	if c.MaxTime < 0 {
		return &aero.InvalidParameterError{Name: "max_time", Value: c.MaxTime, Reason: "must not be negative"}
	}
	if c.MaxSteps == 0 && c.MaxTime == 0 {
		return &aero.InvalidParameterError{Name: "max_steps", Value: 0, Reason: "a step or time cap is required"}
	}
	return c.Aircraft.Validate()
}

func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:       c.Dt,
		MaxSteps: c.MaxSteps,
		MaxTime:  c.MaxTime,
	}
}
