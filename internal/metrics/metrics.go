// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package metrics records batch run counters and exports them in the
// Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels for documents_total.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultSkipped = "skipped"
)

// Recorder holds the counters of one run on a private registry.
type Recorder struct {
	registry    *prometheus.Registry
	documents   *prometheus.CounterVec
	violations  prometheus.Counter
	cycleHits   prometheus.Counter
	runDuration prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "validate",
			Name:      "documents_total",
			Help:      "Documents processed, by result.",
		}, []string{"result"}),
		violations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "validate",
			Name:      "violations_total",
			Help:      "Violations recorded, children included.",
		}),
		cycleHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "validate",
			Name:      "cycle_guard_hits_total",
			Help:      "Recursive schema re-entries assumed to pass.",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "validate",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
	}
	r.registry.MustRegister(r.documents, r.violations, r.cycleHits, r.runDuration)
	for _, result := range []string{ResultValid, ResultInvalid, ResultSkipped} {
		r.documents.WithLabelValues(result)
	}
	return r
}

// ObserveDocument records one validated document.
func (r *Recorder) ObserveDocument(violations, cycleHits int) {
	result := ResultValid
	if violations > 0 {
		result = ResultInvalid
	}
	r.documents.WithLabelValues(result).Inc()
	r.violations.Add(float64(violations))
	r.cycleHits.Add(float64(cycleHits))
}

// ObserveSkipped records a file excluded by the extension filter.
func (r *Recorder) ObserveSkipped() {
	r.documents.WithLabelValues(ResultSkipped).Inc()
}

// ObserveRun records the run duration.
func (r *Recorder) ObserveRun(d time.Duration) {
	r.runDuration.Set(d.Seconds())
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
