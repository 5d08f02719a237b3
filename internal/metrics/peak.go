package metrics

import (
	"math"

	"github.com/san-kum/takeoff/internal/dynamo"
)

type PeakDrag struct {
	name string
	max  float64
}

func NewPeakDrag() *PeakDrag {
	return &PeakDrag{name: "peak_drag"}
}

func (p *PeakDrag) Name() string { return p.name }

func (p *PeakDrag) Observe(s dynamo.Sample) {
	p.max = math.Max(p.max, s.Drag)
}

func (p *PeakDrag) Value() float64 { return p.max }
func (p *PeakDrag) Reset()         { p.max = 0 }

type MaxAltitude struct {
	name string
	max  float64
}

func NewMaxAltitude() *MaxAltitude {
	return &MaxAltitude{name: "max_altitude"}
}

func (m *MaxAltitude) Name() string { return m.name }

func (m *MaxAltitude) Observe(s dynamo.Sample) {
	m.max = math.Max(m.max, s.Altitude)
}

func (m *MaxAltitude) Value() float64 { return m.max }
func (m *MaxAltitude) Reset()         { m.max = 0 }

// MeanAcceleration averages longitudinal acceleration over the run.
type MeanAcceleration struct {
	name    string
	sum     float64
	samples int
}

func NewMeanAcceleration() *MeanAcceleration {
	return &MeanAcceleration{name: "mean_acceleration"}
}

func (m *MeanAcceleration) Name() string { return m.name }

func (m *MeanAcceleration) Observe(s dynamo.Sample) {
	m.sum += s.Acceleration
	m.samples++
}

func (m *MeanAcceleration) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanAcceleration) Reset() {
	m.sum = 0
	m.samples = 0
}
