package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/takeoff/internal/dynamo"
)

// Series extracts one column of a sample sequence.
func Series(samples []dynamo.Sample, field func(dynamo.Sample) float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = field(s)
	}
	return out
}

var (
	velocityOf     = func(s dynamo.Sample) float64 { return s.Velocity }
	accelerationOf = func(s dynamo.Sample) float64 { return s.Acceleration }
	dragOf         = func(s dynamo.Sample) float64 { return s.Drag }
	liftOf         = func(s dynamo.Sample) float64 { return s.Lift }
	weightOf       = func(s dynamo.Sample) float64 { return s.Weight }
	altitudeOf     = func(s dynamo.Sample) float64 { return s.Altitude }
)

// PlotSamples renders velocity, acceleration, drag, lift against weight
// and altitude as ASCII charts.
func PlotSamples(samples []dynamo.Sample, width, height int) string {
	if len(samples) < 2 {
		return "not enough samples to plot\n"
	}

	opts := func(caption string) []asciigraph.Option {
		return []asciigraph.Option{
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(caption),
		}
	}

	var b strings.Builder
	write := func(graph string) {
		b.WriteString(graph)
		b.WriteString("\n\n")
	}

	last := samples[len(samples)-1]
	write(asciigraph.Plot(Series(samples, velocityOf), opts(fmt.Sprintf("velocity (m/s) over %.1fs", last.Time))...))
	write(asciigraph.Plot(Series(samples, accelerationOf), opts("acceleration (m/s²)")...))
	write(asciigraph.Plot(Series(samples, dragOf), opts("drag (N)")...))

	liftOpts := append(opts("lift (green) vs weight (red), N"),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red))
	write(asciigraph.PlotMany([][]float64{Series(samples, liftOf), Series(samples, weightOf)}, liftOpts...))

	if last.Altitude > 0 {
		write(asciigraph.Plot(Series(samples, altitudeOf), opts("altitude (m)")...))
	}

	return b.String()
}
