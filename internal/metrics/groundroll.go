package metrics

import (
	"github.com/san-kum/takeoff/internal/dynamo"
)

// GroundRoll integrates runway distance with the trapezoidal rule until
// the first airborne sample.
type GroundRoll struct {
	name     string
	distance float64
	lastT    float64
	lastV    float64
	done     bool
}

func NewGroundRoll() *GroundRoll {
	return &GroundRoll{
		name: "ground_roll",
	}
}

func (g *GroundRoll) Name() string { return g.name }

func (g *GroundRoll) Observe(s dynamo.Sample) {
	if g.done {
		return
	}
	g.distance += 0.5 * (g.lastV + s.Velocity) * (s.Time - g.lastT)
	g.lastT, g.lastV = s.Time, s.Velocity
	if s.Airborne() {
		g.done = true
	}
}

func (g *GroundRoll) Value() float64 {
	return g.distance
}

func (g *GroundRoll) Reset() {
	g.distance = 0
	g.lastT = 0
	g.lastV = 0
	g.done = false
}
