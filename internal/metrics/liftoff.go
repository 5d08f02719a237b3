package metrics

import (
	"github.com/san-kum/takeoff/internal/dynamo"
)

// Liftoff records the time of the first sample where lift exceeds weight.
type Liftoff struct {
	name    string
	time    float64
	reached bool
}

func NewLiftoff() *Liftoff {
	return &Liftoff{
		name: "liftoff_time",
	}
}

func (l *Liftoff) Name() string {
	return l.name
}

func (l *Liftoff) Observe(s dynamo.Sample) {
	if l.reached || !s.Airborne() {
		return
	}
	l.time = s.Time
	l.reached = true
}

// Value is the liftoff time in seconds, or 0 if lift never exceeded weight.
func (l *Liftoff) Value() float64 {
	return l.time
}

func (l *Liftoff) Reached() bool {
	return l.reached
}

func (l *Liftoff) Reset() {
	l.time = 0
	l.reached = false
}
