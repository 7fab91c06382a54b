package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineCollector bundles Prometheus metrics for the physics engine and
// satisfies core.MetricsRecorder so the engine can drive them directly from
// its mutators.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	SubSteps     prometheus.Counter
	StepDuration prometheus.Histogram
	StepErrors   *prometheus.CounterVec

	Bodies           prometheus.Gauge
	TrajectoryPoints prometheus.Gauge
}

// NewEngineCollector registers engine Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	subSteps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "engine_substeps_total",
		Help: "Total number of executed fixed-dt physics sub-steps.",
	}), "engine_substeps_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "engine_step_duration_seconds",
		Help:    "Wall-clock duration of one Step call (all sub-steps).",
		Buckets: []float64{0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}), "engine_step_duration_seconds")
	if err != nil {
		return nil, err
	}

	stepErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_step_errors_total",
		Help: "Total number of failed Step calls, labeled by error kind.",
	}, []string{"kind"})
	stepErrors, err = registerCounterVec(reg, stepErrors, "engine_step_errors_total")
	if err != nil {
		return nil, err
	}

	bodies, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "engine_bodies",
		Help: "Current number of bodies owned by the engine.",
	}), "engine_bodies")
	if err != nil {
		return nil, err
	}

	trajectoryPoints, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "engine_trajectory_points",
		Help: "Total recorded trajectory points across all bodies.",
	}), "engine_trajectory_points")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:         gatherer,
		SubSteps:         subSteps,
		StepDuration:     duration,
		StepErrors:       stepErrors,
		Bodies:           bodies,
		TrajectoryPoints: trajectoryPoints,
	}, nil
}

// RecordStep satisfies core.MetricsRecorder.
func (c *EngineCollector) RecordStep(subSteps int, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.SubSteps != nil && subSteps > 0 {
		c.SubSteps.Add(float64(subSteps))
	}
	if c.StepDuration != nil {
		c.StepDuration.Observe(elapsed.Seconds())
	}
}

// RecordStepError satisfies core.MetricsRecorder.
func (c *EngineCollector) RecordStepError(kind string) {
	if c == nil || c.StepErrors == nil {
		return
	}
	c.StepErrors.WithLabelValues(kind).Inc()
}

// SetBodyCount satisfies core.MetricsRecorder.
func (c *EngineCollector) SetBodyCount(n int) {
	if c == nil || c.Bodies == nil {
		return
	}
	c.Bodies.Set(float64(n))
}

// SetTrajectoryPoints satisfies core.MetricsRecorder.
func (c *EngineCollector) SetTrajectoryPoints(n int) {
	if c == nil || c.TrajectoryPoints == nil {
		return
	}
	c.TrajectoryPoints.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
