// Package reload implements the Reload Controller of spec §4.5: a
// background poller that detects a changed mapping document via an
// entity-tag-with-hash-fallback protocol, fetches it with bounded retry,
// and adopts it into a mapping.Store with last-known-good semantics.
package reload

import "context"

// Metadata is the result of a metadata probe (spec §4.5 "Metadata
// probe"): an opaque entity tag, when the source can supply one.
type Metadata struct {
	ETag    string
	HasETag bool
}

// Fetched is the result of a body fetch: the raw bytes plus the entity tag
// observed alongside them, if any.
type Fetched struct {
	Body    []byte
	ETag    string
	HasETag bool
}

// Source is a mapping-document origin the Reload Controller can poll.
// Implementations are long-lived clients released via Close on teardown
// (spec §4.5 "Remote sources are long-lived clients that must be released
// on teardown").
type Source interface {
	// Probe fetches only metadata, cheaply, for change detection.
	Probe(ctx context.Context) (Metadata, error)
	// Fetch retrieves the full body.
	Fetch(ctx context.Context) (Fetched, error)
	// Close releases any held resources. Sources with nothing to release
	// may implement it as a no-op.
	Close() error
}
