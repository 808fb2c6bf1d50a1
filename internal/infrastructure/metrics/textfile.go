// Package metrics exports validation run statistics in the Prometheus
// text format, for node-exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

const namespace = "hubdoc"

// TextfileSink records run outcomes and rewrites a .prom file after each run.
type TextfileSink struct {
	registry  *prometheus.Registry
	documents *prometheus.CounterVec
	errors    *prometheus.CounterVec
	duration  prometheus.Gauge
	lastRun   prometheus.Gauge
	path      string
}

// NewTextfileSink creates a sink writing to path. An empty path keeps the
// metrics in memory only.
func NewTextfileSink(path string) *TextfileSink {
	registry := prometheus.NewRegistry()
	s := &TextfileSink{
		registry: registry,
		path:     path,
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Validated documents by outcome.",
		}, []string{"status"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_errors_total",
			Help:      "Failed documents by error kind.",
		}, []string{"kind"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Wall time of the last validation run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last validation run finished.",
		}),
	}
	registry.MustRegister(s.documents, s.errors, s.duration, s.lastRun)

	// Expose every status series even before it is first observed.
	for _, status := range []values.Status{values.StatusPass, values.StatusFail, values.StatusError, values.StatusSkipped} {
		s.documents.WithLabelValues(string(status))
	}
	return s
}

// Observe accumulates result into the counters and writes the textfile.
func (s *TextfileSink) Observe(result *execution.ValidationResult) error {
	sum := result.Summary
	s.documents.WithLabelValues(string(values.StatusPass)).Add(float64(sum.Passed))
	s.documents.WithLabelValues(string(values.StatusFail)).Add(float64(sum.Failed))
	s.documents.WithLabelValues(string(values.StatusError)).Add(float64(sum.Errored))
	s.documents.WithLabelValues(string(values.StatusSkipped)).Add(float64(sum.Skipped))
	for kind, n := range sum.ErrorsByKind {
		s.errors.WithLabelValues(string(kind)).Add(float64(n))
	}
	s.duration.Set(result.Duration.Seconds())
	if !result.EndTime.IsZero() {
		s.lastRun.Set(float64(result.EndTime.Unix()))
	}

	if s.path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(s.path, s.registry); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", s.path, err)
	}
	return nil
}

// Registry returns the registry backing the sink.
func (s *TextfileSink) Registry() *prometheus.Registry {
	return s.registry
}
