package aero

import (
	"math"
)

const (
	GasConstant = 287.05 // specific gas constant for dry air, J/(kg·K)
	Gravity     = 9.81
	ZeroCelsius = 273.15
)

// Params is one aircraft/atmosphere configuration. Margin is a takeoff
// safety multiplier in interactive mode and the final-velocity multiplier
// in batch mode.
type Params struct {
	Mass            float64 `yaml:"mass" json:"mass"`
	WingArea        float64 `yaml:"wing_area" json:"wing_area"`
	LiftCoefficient float64 `yaml:"lift_coefficient" json:"lift_coefficient"`
	DragCoefficient float64 `yaml:"drag_coefficient" json:"drag_coefficient"`
	Pressure        float64 `yaml:"pressure" json:"pressure"`
	TemperatureC    float64 `yaml:"temperature" json:"temperature"`
	Thrust          float64 `yaml:"thrust" json:"thrust"`
	Margin          float64 `yaml:"margin" json:"margin"`
}

func DefaultParams() Params {
	return Params{
		Mass:            70000,
		WingArea:        124.6,
		LiftCoefficient: 1.5,
		DragCoefficient: 0.03,
		Pressure:        101325,
		TemperatureC:    15,
		Thrust:          200000,
		Margin:          1.1,
	}
}

// Constants are derived from a Params value and must be recomputed
// whenever any parameter changes.
type Constants struct {
	AirDensity      float64 `json:"air_density"`
	Weight          float64 `json:"weight"`
	TakeoffVelocity float64 `json:"takeoff_velocity"`
	TargetVelocity  float64 `json:"target_velocity"`
}

func AbsoluteTemperature(celsius float64) float64 {
	return celsius + ZeroCelsius
}

// Compute validates p and derives air density, weight and the reference
// velocities.
func Compute(p Params) (Constants, error) {
	if err := p.Validate(); err != nil {
		return Constants{}, err
	}

	rho := p.Pressure / (GasConstant * AbsoluteTemperature(p.TemperatureC))
	w := p.Mass * Gravity
	vto := math.Sqrt(2 * w / (rho * p.WingArea * p.LiftCoefficient))

	return Constants{
		AirDensity:      rho,
		Weight:          w,
		TakeoffVelocity: vto,
		TargetVelocity:  vto * p.Margin,
	}, nil
}

// DragAt returns the aerodynamic drag in newtons at velocity v.
func (c Constants) DragAt(v float64, p Params) float64 {
	return 0.5 * c.AirDensity * v * v * p.WingArea * p.DragCoefficient
}

// LiftAt returns the lift in newtons at velocity v.
func (c Constants) LiftAt(v float64, p Params) float64 {
	return 0.5 * c.AirDensity * v * v * p.WingArea * p.LiftCoefficient
}

// TerminalVelocity is the ground speed at which drag balances thrust.
func (c Constants) TerminalVelocity(p Params) float64 {
	return math.Sqrt(2 * p.Thrust / (c.AirDensity * p.WingArea * p.DragCoefficient))
}

func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":        p.Mass,
		"wing_area":   p.WingArea,
		"cl":          p.LiftCoefficient,
		"cd":          p.DragCoefficient,
		"pressure":    p.Pressure,
		"temperature": p.TemperatureC,
		"thrust":      p.Thrust,
		"margin":      p.Margin,
	}
}

// SetParam updates a single field by its short name. The result is not
// validated; call Compute before using it.
func (p *Params) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		p.Mass = value
	case "wing_area":
		p.WingArea = value
	case "cl":
		p.LiftCoefficient = value
	case "cd":
		p.DragCoefficient = value
	case "pressure":
		p.Pressure = value
	case "temperature":
		p.TemperatureC = value
	case "thrust":
		p.Thrust = value
	case "margin":
		p.Margin = value
	default:
		return &InvalidParameterError{Name: name, Value: value, Reason: "unknown parameter"}
	}
	return nil
}

// ParamNames lists the names accepted by SetParam in display order.
func ParamNames() []string {
	return []string{"mass", "wing_area", "cl", "cd", "pressure", "temperature", "thrust", "margin"}
}
