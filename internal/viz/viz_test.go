package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/takeoff/internal/aero"
	"github.com/san-kum/takeoff/internal/dynamo"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(100, 100)

	if c.Grid[0][0] != rune(brailleBlank|0x1) {
		t.Errorf("unexpected cell 0: %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != rune(brailleBlank|0x80) {
		t.Errorf("unexpected cell 1: %U", c.Grid[0][1])
	}

	c.Clear()
	if c.String() != "⠀⠀\n" {
		t.Errorf("expected blank canvas, got %q", c.String())
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 0)
	for i, r := range c.Grid[0] {
		if r != rune(brailleBlank|0x1|0x8) {
			t.Errorf("cell %d not fully lit on top row: %U", i, r)
		}
	}
}

func referenceSamples(t *testing.T, n int) []dynamo.Sample {
	t.Helper()
	s, err := dynamo.NewSession(aero.DefaultParams(), 0.1)
	if err != nil {
		t.Fatal(err)
	}
	for range n {
		s.Step()
	}
	return s.State().Samples
}

func TestPlotSamples(t *testing.T) {
	if got := PlotSamples(nil, 40, 5); !strings.Contains(got, "not enough") {
		t.Errorf("expected placeholder, got %q", got)
	}

	out := PlotSamples(referenceSamples(t, 400), 40, 5)
	for _, want := range []string{"velocity", "acceleration", "drag", "lift", "altitude"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q chart", want)
		}
	}

	ground := PlotSamples(referenceSamples(t, 50), 40, 5)
	if strings.Contains(ground, "altitude") {
		t.Error("altitude chart should be omitted while on the ground")
	}
}

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(2, 10); !strings.Contains(got, strings.Repeat("█", 10)) {
		t.Errorf("expected full bar, got %q", got)
	}
	if got := ProgressBar(-1, 10); strings.Contains(got, "█") {
		t.Errorf("expected empty bar, got %q", got)
	}
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func newTestModel(t *testing.T) (Model, *dynamo.Session) {
	t.Helper()
	s, err := dynamo.NewSession(aero.DefaultParams(), 0.1)
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(s, "test"), s
}

func TestModelAccelerate(t *testing.T) {
	m, s := newTestModel(t)

	for range 10 {
		m = press(m, " ")
	}
	if got := len(s.State().Samples); got != 10 {
		t.Fatalf("expected 10 steps, got %d", got)
	}
	if m.distance <= 0 {
		t.Error("distance should grow while accelerating")
	}
	if len(m.trail) != 10 {
		t.Errorf("expected 10 trail points, got %d", len(m.trail))
	}
}

func TestModelAutoTick(t *testing.T) {
	m, s := newTestModel(t)

	next, cmd := m.Update(TickMsg{})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("tick should reschedule itself")
	}
	if len(s.State().Samples) != 0 {
		t.Fatal("tick must not step while auto is off")
	}

	m = press(m, "a")
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	if len(s.State().Samples) != 1 {
		t.Errorf("expected one step per tick in auto mode, got %d", len(s.State().Samples))
	}
}

func TestModelReset(t *testing.T) {
	m, s := newTestModel(t)
	resets := 0
	m = m.OnReset(func() { resets++ })

	for range 5 {
		m = press(m, " ")
	}
	m = press(m, "r")

	if s.State().Velocity != 0 || len(s.State().Samples) != 0 {
		t.Error("session not reset")
	}
	if m.distance != 0 || len(m.trail) != 0 {
		t.Error("view state not reset")
	}
	if resets != 1 {
		t.Errorf("expected reset hook once, got %d", resets)
	}
}

func TestModelAdjustParam(t *testing.T) {
	m, s := newTestModel(t)
	var got aero.Constants
	m = m.OnParams(func(c aero.Constants) { got = c })

	before := s.Constants().Weight
	m = press(m, "up")
	if s.Params().Mass <= aero.DefaultParams().Mass {
		t.Fatal("mass should increase")
	}
	if s.Constants().Weight <= before || got.Weight != s.Constants().Weight {
		t.Error("constants not recomputed")
	}

	m = press(m, "tab")
	if m.paramKeys[m.selected] != aero.ParamNames()[1] {
		t.Error("tab should select the next parameter")
	}
}

func TestModelAdjustTemperature(t *testing.T) {
	m, s := newTestModel(t)
	p := s.Params()
	p.TemperatureC = -10
	if err := s.SetParams(p); err != nil {
		t.Fatal(err)
	}
	for m.paramKeys[m.selected] != "temperature" {
		m = press(m, "tab")
	}

	m = press(m, "up")
	if got := s.Params().TemperatureC; got != -9 {
		t.Errorf("up from -10 °C: expected -9, got %f", got)
	}
	m = press(m, "down")
	m = press(m, "down")
	if got := s.Params().TemperatureC; got != -11 {
		t.Errorf("down twice from -9 °C: expected -11, got %f", got)
	}

	p = s.Params()
	p.TemperatureC = 0
	if err := s.SetParams(p); err != nil {
		t.Fatal(err)
	}
	m = press(m, "up")
	if got := s.Params().TemperatureC; got != 1 {
		t.Errorf("up from 0 °C: expected 1, got %f", got)
	}

	p = s.Params()
	p.TemperatureC = 50
	if err := s.SetParams(p); err != nil {
		t.Fatal(err)
	}
	press(m, "up")
	if got := s.Params().TemperatureC; got != 50 {
		t.Errorf("expected clamp at 50 °C, got %f", got)
	}
}

func TestRunwayScene(t *testing.T) {
	empty := RunwayScene(nil)
	pw, ph := empty.PixelSize()
	if !empty.Lit(0, ph-2) || !empty.Lit(pw-1, ph-2) {
		t.Error("expected the runway line along the bottom")
	}

	samples := referenceSamples(t, 600)
	scene := RunwayScene(samples)
	if scene.String() == empty.String() {
		t.Error("expected the run drawn over the runway")
	}

	// the aircraft sits above the runway once it has climbed
	var above bool
	for x := range pw {
		for y := range ph - 4 {
			if scene.Lit(x, y) {
				above = true
			}
		}
	}
	if samples[len(samples)-1].Altitude > 0 && !above {
		t.Error("expected the climb drawn above the ground")
	}
}

func TestCanvasLit(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(3, 3)
	if !c.Lit(3, 3) || c.Lit(2, 3) || c.Lit(-1, 0) || c.Lit(10, 10) {
		t.Error("unexpected lit state")
	}
}

func TestModelView(t *testing.T) {
	m, _ := newTestModel(t)
	if !strings.Contains(m.View(), "press SPACE") {
		t.Error("expected hint before the first step")
	}

	for range 400 {
		m = press(m, " ")
	}
	view := m.View()
	for _, want := range []string{"Velocity", "Altitude", "takes off", "lift vs weight", "acceleration (m/s²)", "drag (N)"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view", want)
		}
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
