// Package telemetry exposes the live state of a takeoff session as
// Prometheus metrics.
package telemetry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/takeoff/internal/aero"
	"github.com/san-kum/takeoff/internal/dynamo"
)

// Recorder holds the gauges and counters for one process. It implements
// dynamo.Observer so it can be attached to a Session or Runner.
type Recorder struct {
	registry *prometheus.Registry

	velocity     prometheus.Gauge
	acceleration prometheus.Gauge
	drag         prometheus.Gauge
	lift         prometheus.Gauge
	weight       prometheus.Gauge
	altitude     prometheus.Gauge
	simTime      prometheus.Gauge
	airDensity   prometheus.Gauge
	takeoffSpeed prometheus.Gauge

	steps     prometheus.Counter
	resets    prometheus.Counter
	runs      *prometheus.CounterVec
	runLength prometheus.Histogram
}

func NewRecorder() *Recorder {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "takeoff", Name: name, Help: help})
	}

	r := &Recorder{
		registry:     prometheus.NewRegistry(),
		velocity:     gauge("velocity_mps", "Current ground speed in m/s"),
		acceleration: gauge("acceleration_mps2", "Current longitudinal acceleration in m/s²"),
		drag:         gauge("drag_newton", "Current aerodynamic drag in N"),
		lift:         gauge("lift_newton", "Current lift in N"),
		weight:       gauge("weight_newton", "Aircraft weight in N"),
		altitude:     gauge("altitude_meters", "Accumulated altitude in m"),
		simTime:      gauge("simulated_seconds", "Simulated time since the last reset"),
		airDensity:   gauge("air_density_kg_per_m3", "Air density of the active parameter set"),
		takeoffSpeed: gauge("takeoff_velocity_mps", "Velocity at which lift equals weight"),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "takeoff", Name: "steps_total", Help: "Stepper invocations",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "takeoff", Name: "resets_total", Help: "Interactive session resets",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "takeoff", Name: "runs_total", Help: "Finished batch runs by outcome",
		}, []string{"outcome"}),
		runLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "takeoff", Name: "run_simulated_seconds",
			Help:    "Simulated time to reach the target velocity",
			Buckets: prometheus.LinearBuckets(10, 10, 12),
		}),
	}

	r.registry.MustRegister(
		r.velocity, r.acceleration, r.drag, r.lift, r.weight, r.altitude,
		r.simTime, r.airDensity, r.takeoffSpeed,
		r.steps, r.resets, r.runs, r.runLength,
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) OnSample(s dynamo.Sample) {
	r.velocity.Set(s.Velocity)
	r.acceleration.Set(s.Acceleration)
	r.drag.Set(s.Drag)
	r.lift.Set(s.Lift)
	r.weight.Set(s.Weight)
	r.altitude.Set(s.Altitude)
	r.simTime.Set(s.Time)
	r.steps.Inc()
}

// SetConstants publishes the derived constants of the active parameter set.
func (r *Recorder) SetConstants(c aero.Constants) {
	r.airDensity.Set(c.AirDensity)
	r.takeoffSpeed.Set(c.TakeoffVelocity)
	r.weight.Set(c.Weight)
}

// Reset zeroes the live gauges after a session reset.
func (r *Recorder) Reset() {
	for _, g := range []prometheus.Gauge{r.velocity, r.acceleration, r.drag, r.lift, r.altitude, r.simTime} {
		g.Set(0)
	}
	r.resets.Inc()
}

// RunFinished records the outcome of a batch run.
func (r *Recorder) RunFinished(result *dynamo.Result, err error) {
	outcome := "target_reached"
	switch {
	case errors.Is(err, dynamo.ErrDiverged):
		outcome = "diverged"
	case err != nil:
		outcome = "error"
	}
	r.runs.WithLabelValues(outcome).Inc()
	if err == nil && result != nil {
		r.runLength.Observe(result.Final().Time)
	}
}

// Serve exposes the registry on addr under /metrics until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
