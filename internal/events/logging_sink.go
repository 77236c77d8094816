package events

import "github.com/vishalvchavan/streamsmt/pkg/logger"

// LoggingSink forwards events to a structured logger at the severity the
// event was raised with.
type LoggingSink struct {
	Logger logger.Logger
}

// NewLoggingSink returns a Sink that logs every event through log.
func NewLoggingSink(log logger.Logger) *LoggingSink {
	return &LoggingSink{Logger: log}
}

// Emit implements Sink.
func (s *LoggingSink) Emit(e Event) {
	switch e.Severity {
	case SeverityError:
		s.Logger.Errorw(e.Message, "event_id", e.ID, "code", e.Code, "field", e.Field)
	default:
		s.Logger.Warnw(e.Message, "event_id", e.ID, "code", e.Code, "field", e.Field)
	}
}
