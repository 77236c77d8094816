// Package metric provides small constructors around the Prometheus client
// so domain packages never reach for promauto directly.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewHistogram returns a new Prometheus Histogram for execution time metrics,
// registered against reg rather than the global default registerer so
// callers can give every instance its own registry.
func NewHistogram(reg prometheus.Registerer, name string, help string, start float64, factor float64, count int) prometheus.Histogram {
	return promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
		Name:    name,
		Help:    help,
		Buckets: prometheus.ExponentialBuckets(start, factor, count),
	})
}

// NewCounter returns a new Prometheus counter registered against reg.
func NewCounter(reg prometheus.Registerer, name string, help string) prometheus.Counter {
	return promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: name,
		Help: help,
	})
}

// NewCounterVec returns a new Prometheus counter vector labeled by
// labelNames, registered against reg.
func NewCounterVec(reg prometheus.Registerer, name string, help string, labelNames ...string) *prometheus.CounterVec {
	return promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, labelNames)
}

// NewGauge returns a new Prometheus gauge registered against reg.
func NewGauge(reg prometheus.Registerer, name string, help string) prometheus.Gauge {
	return promauto.With(reg).NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	})
}
