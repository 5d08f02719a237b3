package config

import (
	"sort"

	"github.com/san-kum/takeoff/internal/aero"
)

var Presets = map[string]aero.Params{
	"a320": aero.DefaultParams(),
	"heavy": {
		Mass: 330000, WingArea: 430, LiftCoefficient: 1.8, DragCoefficient: 0.035,
		Pressure: 101325, TemperatureC: 15, Thrust: 900000, Margin: 1.2,
	},
	"regional": {
		Mass: 22000, WingArea: 61, LiftCoefficient: 1.6, DragCoefficient: 0.03,
		Pressure: 101325, TemperatureC: 15, Thrust: 40000, Margin: 1.1,
	},
	"hot_high": {
		Mass: 70000, WingArea: 124.6, LiftCoefficient: 1.5, DragCoefficient: 0.03,
		Pressure: 78000, TemperatureC: 40, Thrust: 200000, Margin: 1.1,
	},
	"cold_day": {
		Mass: 70000, WingArea: 124.6, LiftCoefficient: 1.5, DragCoefficient: 0.03,
		Pressure: 103000, TemperatureC: -30, Thrust: 200000, Margin: 1.1,
	},
	"underpowered": {
		Mass: 70000, WingArea: 124.6, LiftCoefficient: 1.5, DragCoefficient: 0.2,
		Pressure: 101325, TemperatureC: 15, Thrust: 1000, Margin: 1.5,
	},
}

// GetPreset returns a copy of the named parameter set.
func GetPreset(name string) (aero.Params, bool) {
	p, ok := Presets[name]
	return p, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
