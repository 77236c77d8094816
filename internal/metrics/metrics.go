// Package metrics holds the engine's Prometheus instrumentation: one
// counter or histogram per error-taxonomy item in spec §7, built on the
// small constructors in internal/metric.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vishalvchavan/streamsmt/internal/metric"
)

// Recorder owns every metric the engine emits, each registered against its
// own Registry rather than the global default one, so a process (or a
// test) can construct any number of Recorders without a duplicate
// registration panic.
type Recorder struct {
	Registry *prometheus.Registry

	MappingMiss            prometheus.Counter
	RequiredFieldMissing   prometheus.Counter
	TransformSoftFailure   *prometheus.CounterVec
	ReloadSuccess          prometheus.Counter
	ReloadFailure          prometheus.Counter
	ReloadLatencySeconds   prometheus.Histogram
	ReloadLastSuccessEpoch prometheus.Gauge
}

// New registers and returns a fresh Recorder backed by its own Registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	return &Recorder{
		Registry: reg,

		MappingMiss: metric.NewCounter(reg,
			"smt_mapping_miss_total",
			"Records for which no mapping rule was found by connector or topic name.",
		),
		RequiredFieldMissing: metric.NewCounter(reg,
			"smt_required_field_missing_total",
			"Field specifications marked required that resolved to no value.",
		),
		TransformSoftFailure: metric.NewCounterVec(reg,
			"smt_transform_soft_failure_total",
			"Transform steps that could not produce a value and degraded to null or pass-through.",
			"transform",
		),
		ReloadSuccess: metric.NewCounter(reg,
			"smt_reload_success_total",
			"Successful mapping reloads adopted by the store.",
		),
		ReloadFailure: metric.NewCounter(reg,
			"smt_reload_failure_total",
			"Reload attempts that failed at fetch, parse, or validation and left the current mapping unchanged.",
		),
		ReloadLatencySeconds: metric.NewHistogram(reg,
			"smt_reload_latency_seconds",
			"Time spent performing a single reload attempt (fetch through swap).",
			0.01, 2, 12,
		),
		ReloadLastSuccessEpoch: metric.NewGauge(reg,
			"smt_reload_last_success_unix_seconds",
			"Unix timestamp of the last successful mapping adoption.",
		),
	}
}
