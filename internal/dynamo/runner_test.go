package dynamo_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/takeoff/internal/aero"
	"github.com/san-kum/takeoff/internal/dynamo"
)

type countingMetric struct {
	observed int
	resets   int
}

func (m *countingMetric) Name() string          { return "count" }
func (m *countingMetric) Observe(dynamo.Sample) { m.observed++ }
func (m *countingMetric) Value() float64        { return float64(m.observed) }
func (m *countingMetric) Reset()                { m.observed = 0; m.resets++ }

var _ = Describe("Runner", func() {
	var (
		params aero.Params
		cfg    dynamo.Config
	)

	BeforeEach(func() {
		params = aero.DefaultParams()
		params.Margin = 1.5
		cfg = dynamo.DefaultConfig()
	})

	Context("with the reference aircraft", func() {
		It("reaches the target velocity in finite steps", func() {
			result, err := dynamo.NewRunner(cfg).Run(context.Background(), params)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Phase).To(Equal(dynamo.TargetReached))
			Expect(result.Steps).To(Equal(len(result.Samples)))
			Expect(result.Steps).To(BeNumerically("<", cfg.MaxSteps))
			Expect(result.Final().Velocity).To(BeNumerically(">=", result.Constants.TargetVelocity))
			Expect(result.Airborne).To(BeTrue())
		})

		It("stops at the first sample past the target", func() {
			result, err := dynamo.NewRunner(cfg).Run(context.Background(), params)
			Expect(err).NotTo(HaveOccurred())

			for _, s := range result.Samples[:len(result.Samples)-1] {
				Expect(s.Velocity).To(BeNumerically("<", result.Constants.TargetVelocity))
			}
		})

		It("feeds metrics and observers once per sample", func() {
			m := &countingMetric{}
			seen := 0
			r := dynamo.NewRunner(cfg)
			r.AddMetric(m)
			r.AddObserver(dynamo.ObserverFunc(func(dynamo.Sample) { seen++ }))

			result, err := r.Run(context.Background(), params)
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal(result.Steps))
			Expect(result.Metrics).To(HaveKeyWithValue("count", float64(result.Steps)))
			Expect(m.resets).To(Equal(1))
		})
	})

	Context("with thrust too low to overcome drag", func() {
		BeforeEach(func() {
			params.Thrust = 1000
			params.DragCoefficient = 0.2
			cfg.MaxSteps = 5000
		})

		It("fails with a diverged error at the step cap", func() {
			result, err := dynamo.NewRunner(cfg).Run(context.Background(), params)
			Expect(errors.Is(err, dynamo.ErrDiverged)).To(BeTrue())

			var de *dynamo.DivergedError
			Expect(errors.As(err, &de)).To(BeTrue())
			Expect(de.Cap).To(Equal("max_steps"))
			Expect(de.Steps).To(Equal(cfg.MaxSteps))
			Expect(de.Velocity).To(BeNumerically("<", de.Target))

			Expect(result).NotTo(BeNil())
			Expect(result.Phase).To(Equal(dynamo.Accelerating))
			Expect(result.Samples).To(HaveLen(cfg.MaxSteps))
		})

		It("honours the simulated time cap", func() {
			cfg.MaxSteps = 0
			cfg.MaxTime = 60

			_, err := dynamo.NewRunner(cfg).Run(context.Background(), params)
			var de *dynamo.DivergedError
			Expect(errors.As(err, &de)).To(BeTrue())
			Expect(de.Cap).To(Equal("max_time"))
			Expect(de.Time).To(BeNumerically("~", 60, 2*cfg.Dt))
		})
	})

	It("rejects invalid parameters before stepping", func() {
		params.Mass = 0
		result, err := dynamo.NewRunner(cfg).Run(context.Background(), params)
		Expect(errors.Is(err, aero.ErrInvalidParameter)).To(BeTrue())
		Expect(result).To(BeNil())
	})

	It("rejects a configuration without any cap", func() {
		cfg.MaxSteps, cfg.MaxTime = 0, 0
		_, err := dynamo.NewRunner(cfg).Run(context.Background(), params)
		Expect(err).To(MatchError(dynamo.ErrUnbounded))
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := dynamo.NewRunner(cfg).Run(ctx, params)
		Expect(err).To(MatchError(context.Canceled))
		Expect(result.Samples).To(BeEmpty())
	})
})

var _ = Describe("Climb", func() {
	It("is restartable from rest", func() {
		p := aero.DefaultParams()
		c, err := aero.Compute(p)
		Expect(err).NotTo(HaveOccurred())

		seq := dynamo.Climb(context.Background(), p, c, dynamo.DefaultConfig())

		var first, second []dynamo.Sample
		for s, err := range seq {
			Expect(err).NotTo(HaveOccurred())
			first = append(first, s)
		}
		for s, err := range seq {
			Expect(err).NotTo(HaveOccurred())
			second = append(second, s)
		}

		Expect(first).NotTo(BeEmpty())
		Expect(second).To(Equal(first))
		Expect(first[0].Time).To(BeNumerically("~", 0.1, 1e-12))
	})

	Context("with an unbounded configuration", func() {
		var (
			p aero.Params
			c aero.Constants
		)

		BeforeEach(func() {
			p = aero.DefaultParams()
			p.Thrust, p.DragCoefficient = 1000, 0.2
			var err error
			c, err = aero.Compute(p)
			Expect(err).NotTo(HaveOccurred())
		})

		collect := func(cfg dynamo.Config) ([]dynamo.Sample, []error) {
			var samples []dynamo.Sample
			var errs []error
			for s, err := range dynamo.Climb(context.Background(), p, c, cfg) {
				if err != nil {
					errs = append(errs, err)
					continue
				}
				samples = append(samples, s)
				if len(samples) > 10000 {
					break
				}
			}
			return samples, errs
		}

		It("yields ErrUnbounded when no cap is set", func() {
			samples, errs := collect(dynamo.Config{Dt: 0.1})
			Expect(samples).To(BeEmpty())
			Expect(errs).To(HaveLen(1))
			Expect(errs[0]).To(MatchError(dynamo.ErrUnbounded))
		})

		It("yields ErrInvalidStep when dt does not advance time", func() {
			samples, errs := collect(dynamo.Config{Dt: 0, MaxTime: 60})
			Expect(samples).To(BeEmpty())
			Expect(errs).To(HaveLen(1))
			Expect(errors.Is(errs[0], dynamo.ErrInvalidStep)).To(BeTrue())
		})

		It("treats an infinite time cap as no cap", func() {
			_, errs := collect(dynamo.Config{Dt: 0.1, MaxTime: math.Inf(1)})
			Expect(errs).To(ConsistOf(MatchError(dynamo.ErrUnbounded)))
		})
	})

	It("stops early when the consumer breaks", func() {
		p := aero.DefaultParams()
		c, err := aero.Compute(p)
		Expect(err).NotTo(HaveOccurred())

		n := 0
		for range dynamo.Climb(context.Background(), p, c, dynamo.DefaultConfig()) {
			n++
			if n == 10 {
				break
			}
		}
		Expect(n).To(Equal(10))
	})
})
