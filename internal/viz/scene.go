package viz

import (
	"math"

	"github.com/san-kum/takeoff/internal/dynamo"
)

const (
	runwayView   = 2500.0 // metres shown before the scene starts to zoom out
	altitudeView = 50.0
)

type trailPoint struct {
	distance, altitude float64
}

// RunwayScene draws the side view of a recorded run: the runway, the
// ground track and climb of every sample, and the aircraft at the last
// sample. Distance is integrated from rest with the trapezoid rule.
func RunwayScene(samples []dynamo.Sample) *Canvas {
	c := NewCanvas(canvasWidth, canvasHeight)

	trail := make([]trailPoint, len(samples))
	var dist, prevV, prevT, alt float64
	for i, s := range samples {
		dist += 0.5 * (prevV + s.Velocity) * (s.Time - prevT)
		prevV, prevT, alt = s.Velocity, s.Time, s.Altitude
		trail[i] = trailPoint{distance: dist, altitude: s.Altitude}
	}

	drawRunway(c, trail, dist, alt)
	return c
}

func drawRunway(c *Canvas, trail []trailPoint, distance, alt float64) {
	c.Clear()
	pw, ph := c.PixelSize()
	ground := ph - 2

	c.DrawLine(0, ground, pw-1, ground)
	for x := 0; x < pw; x += 8 {
		c.Set(x, ground+1)
	}

	span := math.Max(runwayView, distance*1.2)
	ceiling := math.Max(altitudeView, alt*1.5)
	project := func(d, a float64) (int, int) {
		x := 6 + int(d/span*float64(pw-12))
		y := ground - 2 - int(a/ceiling*float64(ground-6))
		return x, y
	}

	for _, pt := range trail {
		x, y := project(pt.distance, pt.altitude)
		c.Set(x, y)
	}

	x, y := project(distance, alt)
	c.DrawLine(x-5, y, x+4, y)
	c.DrawLine(x-5, y, x-6, y-3)
	c.DrawLine(x-1, y, x-3, y+1)
}
