// Package events defines the structured per-record events the Template
// Interpreter and Transform Pipeline raise for non-fatal conditions
// (required-field-missing, transform-soft-failure) so a host can log or
// forward them without the engine ever aborting the record (spec §7).
package events

import (
	"fmt"

	"github.com/google/uuid"
)

// Severity classifies an Event for the purposes of logging and metrics.
type Severity string

// Severities.
const (
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Event is one structured, non-fatal condition raised while projecting a
// single record.
type Event struct {
	ID       string
	Severity Severity
	Code     string
	Message  string
	Field    string
}

// New builds an Event with a fresh random id that identifies this one event
// in logs. Events raised while projecting the same record do not share an
// id.
func New(severity Severity, code, field, format string, args ...any) Event {
	return Event{
		ID:       uuid.NewString(),
		Severity: severity,
		Code:     code,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Sink receives events as they are raised. Implementations must not block
// the per-record path (spec §5 "Suspension points": the per-record path
// performs no blocking I/O).
type Sink interface {
	Emit(Event)
}

// DiscardSink drops every event. Useful in tests that don't assert on
// event content.
type DiscardSink struct{}

// Emit implements Sink.
func (DiscardSink) Emit(Event) {}

// CollectingSink accumulates events in memory, for tests.
type CollectingSink struct {
	Events []Event
}

// Emit implements Sink.
func (s *CollectingSink) Emit(e Event) {
	s.Events = append(s.Events, e)
}
