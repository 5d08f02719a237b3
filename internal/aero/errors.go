package aero

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter indicates a parameter outside its physically valid domain.
var ErrInvalidParameter = errors.New("aero: invalid parameter")

// InvalidParameterError names the offending parameter and its value.
type InvalidParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("aero: invalid parameter %s=%g: %s", e.Name, e.Value, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// Validate checks the physical domain of every field. Range limits of
// user-facing inputs are enforced by the config package.
func (p Params) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"mass", p.Mass},
		{"wing_area", p.WingArea},
		{"cl", p.LiftCoefficient},
		{"cd", p.DragCoefficient},
		{"pressure", p.Pressure},
		{"thrust", p.Thrust},
	}
	for _, f := range positive {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &InvalidParameterError{Name: f.name, Value: f.value, Reason: "must be finite"}
		}
		if f.value <= 0 {
			return &InvalidParameterError{Name: f.name, Value: f.value, Reason: "must be positive"}
		}
	}

	if math.IsNaN(p.TemperatureC) || math.IsInf(p.TemperatureC, 0) {
		return &InvalidParameterError{Name: "temperature", Value: p.TemperatureC, Reason: "must be finite"}
	}
	if AbsoluteTemperature(p.TemperatureC) <= 0 {
		return &InvalidParameterError{Name: "temperature", Value: p.TemperatureC, Reason: "absolute temperature must be above 0 K"}
	}

	if math.IsNaN(p.Margin) || math.IsInf(p.Margin, 0) || p.Margin < 1.0 {
		return &InvalidParameterError{Name: "margin", Value: p.Margin, Reason: "must be at least 1.0"}
	}
	return nil
}
