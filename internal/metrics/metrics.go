// Package metrics collects batch export counters and writes them in the
// Prometheus text exposition format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "squawka"
	subsystem = "export"
)

// Export holds the counters of one export run on a private registry.
type Export struct {
	registry *prometheus.Registry

	documents *prometheus.CounterVec
	attempts  prometheus.Counter
	goals     prometheus.Counter
	duration  prometheus.Histogram
	lastRun   prometheus.Gauge
}

// NewExport returns a fresh set of export counters.
func NewExport() *Export {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)
	return &Export{
		registry: reg,
		documents: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "documents_total",
			Help:      "Documents processed, by result (ok, failed).",
		}, []string{"result"}),
		attempts: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "attempts_total",
			Help:      "Attempt rows written.",
		}),
		goals: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "goals_total",
			Help:      "Attempt rows that were goals.",
		}),
		duration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "document_duration_seconds",
			Help:      "Time to sequence and extract one document.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		lastRun: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the export finished.",
		}),
	}
}

// DocumentOK records a successfully extracted document.
func (e *Export) DocumentOK(attempts, goals int, took time.Duration) {
	e.documents.WithLabelValues("ok").Inc()
	e.attempts.Add(float64(attempts))
	e.goals.Add(float64(goals))
	e.duration.Observe(took.Seconds())
}

// DocumentFailed records a skipped document.
func (e *Export) DocumentFailed() {
	e.documents.WithLabelValues("failed").Inc()
}

// Finish stamps the completion time.
func (e *Export) Finish(at time.Time) {
	e.lastRun.Set(float64(at.Unix()))
}

// Registry exposes the underlying registry.
func (e *Export) Registry() *prometheus.Registry { return e.registry }

// WriteTextfile atomically writes all counters to path.
func (e *Export) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
