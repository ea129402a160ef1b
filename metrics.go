package licensekit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records validation outcomes.
type Metrics interface {
	ObserveValidation(state State, d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveValidation(State, time.Duration) {}

// PromMetrics implements Metrics with Prometheus collectors.
type PromMetrics struct {
	validations *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewPromMetrics creates the collectors and registers them with reg. A nil
// reg selects prometheus.DefaultRegisterer.
func NewPromMetrics(reg prometheus.Registerer) (*PromMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PromMetrics{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "licensekit",
			Name:      "validations_total",
			Help:      "License validations by resulting state",
		}, []string{"state"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "licensekit",
			Name:      "validation_duration_seconds",
			Help:      "Time spent validating a license",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	for _, c := range []prometheus.Collector{m.validations, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PromMetrics) ObserveValidation(state State, d time.Duration) {
	m.validations.WithLabelValues(state.String()).Inc()
	m.duration.Observe(d.Seconds())
}
