package sweep

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments of a sweep. Each instance owns
// its own registry so that several sweeps in one process never collide.
type Metrics struct {
	registry *prometheus.Registry

	Trials           prometheus.Counter
	OriginsCompleted prometheus.Counter
	OutbreakSize     prometheus.Histogram
	SweepDuration    prometheus.Gauge
}

// NewMetrics creates and registers the sweep instruments under namespace
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	trials := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_total",
			Help:      "Total number of simulated outbreaks",
		},
	)

	origins := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "origins_completed_total",
			Help:      "Number of origins whose repetitions have all finished",
		},
	)

	outbreakSize := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trial_outbreak_size",
			Help:      "Final outbreak size of individual trials, in nodes",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
		},
	)

	duration := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Wall-clock duration of the last sweep",
		},
	)

	registry.MustRegister(trials, origins, outbreakSize, duration)

	return &Metrics{
		registry:         registry,
		Trials:           trials,
		OriginsCompleted: origins,
		OutbreakSize:     outbreakSize,
		SweepDuration:    duration,
	}
}

// Registry returns the registry holding the instruments
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile dumps the current values in the text exposition format,
// for pickup by a node exporter textfile collector
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
