package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/takeoff/internal/dynamo"
	"github.com/san-kum/takeoff/internal/viz"
)

// Point is one vertex of an SVG trace.
type Point struct {
	X, Y float64
}

// CanvasToSVG draws every lit sub-pixel of canvas as a dot on a square
// grid of the given pitch.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.PixelSize()
	width, height := float64(pw)*scale, float64(ph)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff88">
`, width, height, width, height)

	for y := range ph {
		for x := range pw {
			if !canvas.Lit(x, y) {
				continue
			}
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
				(float64(x)+0.5)*scale, (float64(y)+0.5)*scale, 0.4*scale)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func boundsOf(traces [][]Point) bounds {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, pts := range traces {
		for _, p := range pts {
			b.minX = math.Min(b.minX, p.X)
			b.maxX = math.Max(b.maxX, p.X)
			b.minY = math.Min(b.minY, p.Y)
			b.maxY = math.Max(b.maxY, p.Y)
		}
	}
	if b.maxX == b.minX {
		b.maxX = b.minX + 1
	}
	if b.maxY == b.minY {
		b.maxY = b.minY + 1
	}
	return b
}

func writePath(sb *strings.Builder, pts []Point, b bounds, width, height int, stroke string) {
	const pad = 0.05
	rx, ry := b.maxX-b.minX, b.maxY-b.minY

	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke)
	for i, p := range pts {
		x := (pad + (1-2*pad)*(p.X-b.minX)/rx) * float64(width)
		y := float64(height) - (pad+(1-2*pad)*(p.Y-b.minY)/ry)*float64(height)
		if i == 0 {
			fmt.Fprintf(sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

// TraceToSVG draws one or more traces on shared axes. Colors are applied
// to traces in order.
func TraceToSVG(traces [][]Point, colors []string, width, height int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	b := boundsOf(traces)
	for i, pts := range traces {
		if len(pts) < 2 {
			continue
		}
		stroke := "#00ff88"
		if i < len(colors) {
			stroke = colors[i]
		}
		writePath(&sb, pts, b, width, height, stroke)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// Chart selects what SamplesToSVG draws.
type Chart string

const (
	ChartVelocity   Chart = "velocity"
	ChartLiftWeight Chart = "lift"
	ChartAltitude   Chart = "altitude"
	ChartFlightPath Chart = "path"
	ChartRunway     Chart = "runway"
)

func Charts() []Chart {
	return []Chart{ChartVelocity, ChartLiftWeight, ChartAltitude, ChartFlightPath, ChartRunway}
}

// SamplesToSVG writes one chart of a recorded run. The flight path plots
// altitude against ground distance, integrated with the trapezoid rule.
// The runway chart is the dot scene of the interactive view, scaled to
// fit width x height.
func SamplesToSVG(w io.Writer, samples []dynamo.Sample, chart Chart, width, height int) error {
	if len(samples) < 2 {
		return fmt.Errorf("export: need at least 2 samples, got %d", len(samples))
	}

	var traces [][]Point
	colors := []string{"#00ff88", "#ff4444"}

	switch chart {
	case ChartVelocity:
		traces = [][]Point{series(samples, func(s dynamo.Sample) float64 { return s.Velocity })}
	case ChartLiftWeight:
		traces = [][]Point{
			series(samples, func(s dynamo.Sample) float64 { return s.Lift }),
			series(samples, func(s dynamo.Sample) float64 { return s.Weight }),
		}
	case ChartAltitude:
		traces = [][]Point{series(samples, func(s dynamo.Sample) float64 { return s.Altitude })}
	case ChartFlightPath:
		traces = [][]Point{flightPath(samples)}
	case ChartRunway:
		scene := viz.RunwayScene(samples)
		pw, ph := scene.PixelSize()
		scale := math.Min(float64(width)/float64(pw), float64(height)/float64(ph))
		_, err := io.WriteString(w, CanvasToSVG(scene, scale))
		return err
	default:
		return fmt.Errorf("export: unknown chart %q (available: %v)", chart, Charts())
	}

	_, err := io.WriteString(w, TraceToSVG(traces, colors, width, height))
	return err
}

func series(samples []dynamo.Sample, field func(dynamo.Sample) float64) []Point {
	pts := make([]Point, len(samples))
	for i, s := range samples {
		pts[i] = Point{X: s.Time, Y: field(s)}
	}
	return pts
}

func flightPath(samples []dynamo.Sample) []Point {
	pts := make([]Point, len(samples))
	var dist, prevV, prevT float64
	for i, s := range samples {
		dist += 0.5 * (prevV + s.Velocity) * (s.Time - prevT)
		prevV, prevT = s.Velocity, s.Time
		pts[i] = Point{X: dist, Y: s.Altitude}
	}
	return pts
}
