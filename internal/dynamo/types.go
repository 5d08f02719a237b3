package dynamo

import (
	"math"

	"github.com/san-kum/takeoff/internal/aero"
)

// Sample is one immutable snapshot of the ground roll.
type Sample struct {
	Time         float64 `json:"time"`
	Velocity     float64 `json:"velocity"`
	Acceleration float64 `json:"acceleration"`
	Drag         float64 `json:"drag"`
	Lift         float64 `json:"lift"`
	Weight       float64 `json:"weight"`
	Altitude     float64 `json:"altitude"`
}

// Airborne reports whether lift exceeded weight at this sample.
func (s Sample) Airborne() bool {
	return s.Lift > s.Weight
}

func (s Sample) IsValid() bool {
	for _, v := range []float64{s.Time, s.Velocity, s.Acceleration, s.Drag, s.Lift, s.Weight, s.Altitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// State is the mutable simulation state. The zero value is the start of
// a session.
type State struct {
	Velocity float64
	Time     float64
	Altitude float64
	Samples  []Sample
}

// Reset returns the state to its zero value.
func (s *State) Reset() {
	s.Velocity = 0
	s.Time = 0
	s.Altitude = 0
	s.Samples = nil
}

// Last returns the most recent sample, if any.
func (s *State) Last() (Sample, bool) {
	if len(s.Samples) == 0 {
		return Sample{}, false
	}
	return s.Samples[len(s.Samples)-1], true
}

type Phase int

const (
	Accelerating Phase = iota
	TargetReached
)

func (p Phase) String() string {
	switch p {
	case Accelerating:
		return "accelerating"
	case TargetReached:
		return "target_reached"
	default:
		return "unknown"
	}
}

type Observer interface {
	OnSample(s Sample)
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s Sample)

func (f ObserverFunc) OnSample(s Sample) { f(s) }

type Config struct {
	Dt       float64
	MaxSteps int
	MaxTime  float64
}

func DefaultConfig() Config {
	return Config{
		Dt:       0.1,
		MaxSteps: 100000,
		MaxTime:  3600,
	}
}

type Result struct {
	Params    aero.Params
	Constants aero.Constants
	Samples   []Sample
	Steps     int
	Phase     Phase
	Airborne  bool // lift exceeds weight at the final sample
	Metrics   map[string]float64
}

// Final returns the last sample of the run.
func (r *Result) Final() Sample {
	if len(r.Samples) == 0 {
		return Sample{}
	}
	return r.Samples[len(r.Samples)-1]
}
