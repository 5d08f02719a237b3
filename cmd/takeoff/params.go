package main

import (
	"fmt"
	"strings"

	"github.com/san-kum/takeoff/internal/aero"
	"github.com/san-kum/takeoff/internal/config"
	"github.com/spf13/pflag"
)

// paramFlags holds one flag value per aircraft parameter, keyed by the
// name SetParam accepts.
type paramFlags map[string]*float64

func flagName(param string) string {
	return strings.ReplaceAll(param, "_", "-")
}

func registerParamFlags(fs *pflag.FlagSet) paramFlags {
	defaults := aero.DefaultParams().GetParams()
	usage := map[string]string{
		"mass":        "aircraft mass (kg)",
		"wing_area":   "wing area (m²)",
		"cl":          "lift coefficient",
		"cd":          "drag coefficient",
		"pressure":    "ambient pressure (Pa)",
		"temperature": "ambient temperature (°C)",
		"thrust":      "engine thrust (N)",
		"margin":      "safety margin on takeoff velocity",
	}

	pf := make(paramFlags)
	for _, name := range aero.ParamNames() {
		v := new(float64)
		fs.Float64Var(v, flagName(name), defaults[name], usage[name])
		pf[name] = v
	}
	return pf
}

// simFlags are the stepping and source flags shared by run, live and
// reference.
type simFlags struct {
	params     paramFlags
	dt         float64
	maxSteps   int
	maxTime    float64
	preset     string
	configFile string
}

func registerSimFlags(fs *pflag.FlagSet) *simFlags {
	sf := &simFlags{params: registerParamFlags(fs)}
	fs.Float64Var(&sf.dt, "dt", config.DefaultDt, "time step (s)")
	fs.IntVar(&sf.maxSteps, "max-steps", config.DefaultMaxSteps, "step cap for batch runs (0 disables)")
	fs.Float64Var(&sf.maxTime, "max-time", config.DefaultMaxTime, "simulated time cap for batch runs in seconds (0 disables)")
	fs.StringVar(&sf.preset, "preset", "", "start from a named aircraft preset")
	fs.StringVar(&sf.configFile, "config", "", "config file path (yaml)")
	return sf
}

// resolve builds the effective configuration. Later sources win:
// defaults, config file, preset, then explicitly set flags.
func (sf *simFlags) resolve(fs *pflag.FlagSet) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	label := "custom"

	if sf.configFile != "" {
		loaded, err := config.Load(sf.configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if sf.preset != "" {
		p, ok := config.GetPreset(sf.preset)
		if !ok {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", sf.preset, config.ListPresets())
		}
		cfg.Aircraft = p
		label = sf.preset
	}

	for name, v := range sf.params {
		if !fs.Changed(flagName(name)) {
			continue
		}
		if err := cfg.Aircraft.SetParam(name, *v); err != nil {
			return nil, "", err
		}
	}
	if fs.Changed("dt") {
		cfg.Dt = sf.dt
	}
	if fs.Changed("max-steps") {
		cfg.MaxSteps = sf.maxSteps
	}
	if fs.Changed("max-time") {
		cfg.MaxTime = sf.maxTime
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, label, nil
}

// dataDirFor picks the storage directory of a resolved run: an explicit
// --data flag wins over data_dir from the config, which wins over the
// flag default.
func dataDirFor(fs *pflag.FlagSet, cfg *config.Config, flagVal string) string {
	if fs.Changed("data") || cfg.DataDir == "" {
		return flagVal
	}
	return cfg.DataDir
}
