package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/takeoff/internal/aero"
	"github.com/san-kum/takeoff/internal/config"
	"github.com/san-kum/takeoff/internal/dynamo"
)

const (
	canvasWidth   = 60
	canvasHeight  = 12
	trailCapacity = 400
	chartWindow   = 120
	tickRate      = time.Second / 30

	paramStep       = 0.05
	temperatureStep = 1.0 // °C
)

type TickMsg time.Time

// Model drives an interactive session. Each accelerate key press, or
// each tick while auto mode is on, is exactly one stepper trigger.
type Model struct {
	session   *dynamo.Session
	label     string
	paramKeys []string
	selected  int
	auto      bool
	distance  float64
	trail     []trailPoint
	canvas    *Canvas
	err       error
	onReset   func()
	onParams  func(aero.Constants)
}

func NewModel(s *dynamo.Session, label string) Model {
	return Model{
		session:   s,
		label:     label,
		paramKeys: aero.ParamNames(),
		trail:     make([]trailPoint, 0, trailCapacity),
		canvas:    NewCanvas(canvasWidth, canvasHeight),
	}
}

// OnReset registers a callback invoked after every session reset.
func (m Model) OnReset(f func()) Model {
	m.onReset = f
	return m
}

// OnParams registers a callback invoked with the recomputed constants
// after every parameter change.
func (m Model) OnParams(f func(aero.Constants)) Model {
	m.onParams = f
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "enter":
			m.accelerate()
		case "a":
			m.auto = !m.auto
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(m.paramKeys)
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		}
	case TickMsg:
		if m.auto {
			m.accelerate()
		}
		return m, tick()
	}
	return m, nil
}

// accelerate performs one stepper trigger.
func (m *Model) accelerate() {
	prev := m.session.State().Velocity
	s := m.session.Step()
	m.distance += 0.5 * (prev + s.Velocity) * m.session.Dt()

	m.trail = append(m.trail, trailPoint{distance: m.distance, altitude: s.Altitude})
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
}

func (m *Model) reset() {
	m.session.Reset()
	m.auto = false
	m.distance = 0
	m.trail = m.trail[:0]
	m.err = nil
	if m.onReset != nil {
		m.onReset()
	}
}

// adjustParam moves the selected parameter one notch in direction dir,
// clamped to its input range. Temperature moves in whole degrees; every
// other parameter moves by paramStep of its value.
func (m *Model) adjustParam(dir float64) {
	key := m.paramKeys[m.selected]
	p := m.session.Params()
	val := p.GetParams()[key]
	if key == "temperature" {
		val += dir * temperatureStep
	} else {
		val *= 1 + dir*paramStep
	}
	if r, ok := config.Ranges[key]; ok {
		val = math.Max(r.Min, math.Min(r.Max, val))
	}
	if err := p.SetParam(key, val); err != nil {
		m.err = err
		return
	}
	if err := m.session.SetParams(p); err != nil {
		m.err = err
		return
	}
	m.err = nil
	if m.onParams != nil {
		m.onParams(m.session.Constants())
	}
}

func (m Model) View() string {
	st := m.session.State()
	cs := m.session.Constants()
	p := m.session.Params()
	last, _ := st.Last()
	threshold := cs.TakeoffVelocity * p.Margin

	drawRunway(m.canvas, m.trail, m.distance, st.Altitude)

	var s strings.Builder
	s.WriteString(headerStyle.Render("TAKEOFF  "+strings.ToUpper(m.label)) + "\n")

	if m.session.TakeoffAchieved() {
		s.WriteString(statusAirborne.Render("Enough lift: the aircraft takes off") + "\n")
	} else {
		s.WriteString(statusGround.Render("Takeoff speed not reached yet") + "\n")
	}
	s.WriteString(ProgressBar(st.Velocity/threshold, 30) + fmt.Sprintf(" %.0f%%\n\n", 100*st.Velocity/threshold))

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.1f s", st.Time))
	row("Velocity", fmt.Sprintf("%.2f m/s", st.Velocity))
	row("Acceleration", fmt.Sprintf("%.3f m/s²", last.Acceleration))
	row("Drag", fmt.Sprintf("%.0f N", last.Drag))
	row("Lift", fmt.Sprintf("%.0f N", last.Lift))
	row("Weight", fmt.Sprintf("%.0f N", cs.Weight))
	row("Altitude", fmt.Sprintf("%.1f m", st.Altitude))
	row("Distance", fmt.Sprintf("%.0f m", m.distance))
	row("Air density", fmt.Sprintf("%.4f kg/m³", cs.AirDensity))
	row("Takeoff speed", fmt.Sprintf("%.2f m/s", cs.TakeoffVelocity))
	row("Threshold", fmt.Sprintf("%.2f m/s (x%.2f)", threshold, p.Margin))

	s.WriteString("\nPARAMETERS\n")
	values := p.GetParams()
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-12s %12.3f", k, values[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}

	auto := "off"
	if m.auto {
		auto = "on"
	}
	s.WriteString(helpStyle.Render(fmt.Sprintf("SPACE:Accelerate  A:Auto(%s)  R:Reset\nTAB:Param  ↑↓:Tune  Q:Quit", auto)))

	left := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(m.canvas.String()),
		m.charts(st.Samples),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, panelStyle.Render(s.String()))
}

func (m Model) charts(samples []dynamo.Sample) string {
	if len(samples) < 2 {
		return graphStyle.Render("\n  press SPACE to accelerate")
	}
	if len(samples) > chartWindow {
		samples = samples[len(samples)-chartWindow:]
	}

	vel := asciigraph.Plot(Series(samples, velocityOf),
		asciigraph.Height(5), asciigraph.Width(canvasWidth-6), asciigraph.Caption("velocity (m/s)"))
	accel := asciigraph.Plot(Series(samples, accelerationOf),
		asciigraph.Height(4), asciigraph.Width(canvasWidth-6), asciigraph.Caption("acceleration (m/s²)"))
	drag := asciigraph.Plot(Series(samples, dragOf),
		asciigraph.Height(4), asciigraph.Width(canvasWidth-6),
		asciigraph.SeriesColors(asciigraph.Yellow), asciigraph.Caption("drag (N)"))
	lift := asciigraph.PlotMany([][]float64{Series(samples, liftOf), Series(samples, weightOf)},
		asciigraph.Height(5), asciigraph.Width(canvasWidth-6),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.Caption("lift vs weight (N)"))

	return graphStyle.Render(strings.Join([]string{vel, accel, drag, lift}, "\n\n"))
}
