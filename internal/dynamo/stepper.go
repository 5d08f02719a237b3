package dynamo

import (
	"math"

	"github.com/san-kum/takeoff/internal/aero"
)

// climbVelocityFactor scales ground speed into the per-step altitude gain.
// The climb term is a crude approximation, not an integral of vertical
// velocity.
const climbVelocityFactor = 0.1

// Advance performs one step of the ground roll, appends the resulting
// sample to st and returns it.
func Advance(st *State, c aero.Constants, p aero.Params, dt float64) Sample {
	s := step(st, c, p, dt)
	st.Samples = append(st.Samples, s)
	return s
}

// step commits velocity, time and altitude into st without recording the
// sample.
func step(st *State, c aero.Constants, p aero.Params, dt float64) Sample {
	v := st.Velocity

	drag := c.DragAt(v, p)
	accel := (p.Thrust - drag) / p.Mass

	v += accel * dt
	t := st.Time + dt
	lift := c.LiftAt(v, p)

	alt := st.Altitude
	if lift > c.Weight {
		av := (lift - c.Weight) / p.Mass
		alt += 0.5*av*dt*dt + v*climbVelocityFactor
	}

	st.Velocity, st.Time, st.Altitude = v, t, alt

	return Sample{
		Time:         t,
		Velocity:     v,
		Acceleration: accel,
		Drag:         drag,
		Lift:         lift,
		Weight:       c.Weight,
		Altitude:     alt,
	}
}

func validateDt(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return ErrInvalidStep
	}
	return nil
}
