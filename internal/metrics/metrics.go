package metrics

import (
	"github.com/san-kum/takeoff/internal/dynamo"
)

// Defaults returns a fresh set of the standard takeoff metrics.
func Defaults() []dynamo.Metric {
	return []dynamo.Metric{
		NewLiftoff(),
		NewGroundRoll(),
		NewPeakDrag(),
		NewMaxAltitude(),
		NewMeanAcceleration(),
	}
}

// Names lists the metric names produced by Defaults.
func Names() []string {
	ms := Defaults()
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name()
	}
	return names
}
