// Package orchestrator implements the thin Record Orchestrator of spec
// §4: for each record it looks up the mapping by connector-then-topic
// precedence, drives the Template Interpreter, and decides between a
// structured failure and a pass-through.
package orchestrator

import (
	"github.com/vishalvchavan/streamsmt/internal/events"
	"github.com/vishalvchavan/streamsmt/internal/mapping"
	"github.com/vishalvchavan/streamsmt/internal/metrics"
	"github.com/vishalvchavan/streamsmt/internal/template"
	"github.com/vishalvchavan/streamsmt/internal/tree"
	engerrors "github.com/vishalvchavan/streamsmt/pkg/errors"
	"github.com/vishalvchavan/streamsmt/pkg/logger"
)

// Config carries the orchestrator-level options of spec §6.4 that are not
// owned by the Mapping Store or Reload Controller.
type Config struct {
	FailOnMissingMapping bool
	AttachSourceMetadata bool
	StoreRawPayload      bool
}

// Record is one inbound message the orchestrator projects.
type Record struct {
	ConnectorName string
	Topic         string
	Partition     int
	Payload       []byte
}

// Orchestrator ties the Mapping Store, Template Interpreter and Transform
// Pipeline together into a single per-record entry point. It holds no
// per-record mutable state, so one instance is shared across concurrent
// worker flows (spec §5 "Scheduling model").
type Orchestrator struct {
	store   *mapping.Store
	metrics *metrics.Recorder
	log     logger.Logger
	cfg     Config
}

// New builds an Orchestrator.
func New(store *mapping.Store, rec *metrics.Recorder, log logger.Logger, cfg Config) *Orchestrator {
	return &Orchestrator{store: store, metrics: rec, log: log, cfg: cfg}
}

// Process implements spec §4's per-record path: parse → lookup (miss: pass
// the parsed payload through unchanged) → project → frame. A parse failure is a
// structured failure surfaced to the caller (spec §7
// "Parse-failure"); every other per-record condition either degrades
// in place or passes the record through.
func (o *Orchestrator) Process(rec Record) (tree.Node, error) {
	payload, err := tree.Decode(rec.Payload)
	if err != nil {
		return tree.Missing, engerrors.Wrap(err, engerrors.EInvalid, "failed to parse record payload as JSON")
	}

	tm, ok := o.store.Lookup(rec.ConnectorName, rec.Topic)
	if !ok {
		o.logMiss(rec)
		return payload, nil
	}

	ctx := &template.Context{Sink: o.sink(), Metrics: o.metrics}
	projected := template.Project(payload, tm.Output, ctx)

	framed := template.Frame(projected, tm.Root, tm.Wrapped, template.FrameOptions{
		AttachMetadata:  o.cfg.AttachSourceMetadata,
		SourceTopic:     rec.Topic,
		SourcePartition: rec.Partition,
		StoreRawPayload: o.cfg.StoreRawPayload,
		RawPayload:      payload,
	})

	return framed, nil
}

func (o *Orchestrator) logMiss(rec Record) {
	if o.log == nil {
		return
	}
	if o.cfg.FailOnMissingMapping {
		o.log.Errorw("no mapping rule found for record; passing through unchanged", "connector", rec.ConnectorName, "topic", rec.Topic)
	} else {
		o.log.Warnw("no mapping rule found for record; passing through unchanged", "connector", rec.ConnectorName, "topic", rec.Topic)
	}
}

func (o *Orchestrator) sink() events.Sink {
	if o.log == nil {
		return events.DiscardSink{}
	}
	return events.NewLoggingSink(o.log)
}
