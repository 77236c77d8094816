// Package template implements the Template Interpreter of spec §4.2: a
// recursive walk over a compiled mapping.Template that produces a fresh
// internal/tree.Node per record, consulting the Path Engine for
// extraction and the Transform Pipeline for per-field rewriting.
package template

import (
	"github.com/vishalvchavan/streamsmt/internal/events"
	"github.com/vishalvchavan/streamsmt/internal/metrics"
	"github.com/vishalvchavan/streamsmt/internal/transform"
)

// Context carries the per-record collaborators Project needs: where to
// raise structured events, and where to record the metrics of spec §7.
// A Context holds no per-record mutable state of its own, so one instance
// may be shared (read-only) across concurrently-projected records.
type Context struct {
	Sink    events.Sink
	Metrics *metrics.Recorder
}

func (c *Context) sink() events.Sink {
	if c == nil || c.Sink == nil {
		return events.DiscardSink{}
	}
	return c.Sink
}

func (c *Context) onRequiredMissing(fieldPath string) {
	c.sink().Emit(events.New(events.SeverityWarn, "required-field-missing", fieldPath, "required field %q resolved to no value", fieldPath))
	if c != nil && c.Metrics != nil {
		c.Metrics.RequiredFieldMissing.Inc()
	}
}

func (c *Context) onSoftFailure(fieldPath string) func(kind transform.Kind) {
	return func(kind transform.Kind) {
		if c != nil && c.Metrics != nil {
			c.Metrics.TransformSoftFailure.WithLabelValues(string(kind)).Inc()
		}
	}
}
