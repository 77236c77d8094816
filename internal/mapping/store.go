package mapping

import (
	"sync/atomic"

	"github.com/vishalvchavan/streamsmt/internal/metrics"
	"github.com/vishalvchavan/streamsmt/internal/transform"
)

// Store holds exactly one current, validated Rules value behind an atomic
// pointer: single-writer (the Reload Controller), many-reader (record
// workers), with load-acquire/store-release semantics and no lock on the
// read path (spec §5 "Atomic current mapping").
type Store struct {
	current atomic.Pointer[Rules]
	keys    *transform.KeyStore
	metrics *metrics.Recorder
}

// NewStore returns an empty Store (no current mapping until TryAdopt
// succeeds). keys is the shared encryption-helper cache; rec may be nil in
// tests that don't assert on metrics.
func NewStore(keys *transform.KeyStore, rec *metrics.Recorder) *Store {
	return &Store{keys: keys, metrics: rec}
}

// TryAdopt parses, validates, and — only on full success — atomically
// replaces the current mapping (spec §4.4 "Adoption"). On any failure the
// current mapping is left exactly as it was.
func (s *Store) TryAdopt(data []byte) error {
	rules, err := ParseRules(data)
	if err != nil {
		return err
	}
	if err := Validate(rules, s.keys); err != nil {
		return err
	}
	s.current.Store(rules)
	return nil
}

// Current returns the current Rules, or nil if no mapping has ever been
// adopted.
func (s *Store) Current() *Rules {
	return s.current.Load()
}

// Lookup implements spec §4.4's precedence: a non-empty connector name
// found in Connectors wins, otherwise topic is looked up in Topics, else
// it is a miss. A miss increments the mapping-miss metric; the caller
// (Record Orchestrator) is responsible for passing the record through
// unchanged on a miss.
func (s *Store) Lookup(connectorName, topic string) (*TopicMapping, bool) {
	rules := s.current.Load()
	if rules == nil {
		s.recordMiss()
		return nil, false
	}

	if connectorName != "" {
		if tm, ok := rules.Connectors[connectorName]; ok {
			return tm, true
		}
	}
	if tm, ok := rules.Topics[topic]; ok {
		return tm, true
	}

	s.recordMiss()
	return nil, false
}

func (s *Store) recordMiss() {
	if s.metrics != nil {
		s.metrics.MappingMiss.Inc()
	}
}
