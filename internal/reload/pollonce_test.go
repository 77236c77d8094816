package reload

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishalvchavan/streamsmt/internal/mapping"
	"github.com/vishalvchavan/streamsmt/internal/metrics"
	"github.com/vishalvchavan/streamsmt/internal/transform"
	"github.com/vishalvchavan/streamsmt/pkg/logger"
)

const pollOnceTestDoc = `{"topics":{"t":{"root":"r","output":{"id":{"paths":["$.id"]}}}}}`

// stubSource is a minimal same-package Source double so pollOnce's
// unexported change-detection path can be driven directly, independent of
// ForceReload (which bypasses classifyByETag entirely).
type stubSource struct {
	etag    string
	hasETag bool
	body    []byte
}

func (s *stubSource) Probe(_ context.Context) (Metadata, error) {
	return Metadata{ETag: s.etag, HasETag: s.hasETag}, nil
}

func (s *stubSource) Fetch(_ context.Context) (Fetched, error) {
	return Fetched{Body: s.body, ETag: s.etag, HasETag: s.hasETag}, nil
}

func (s *stubSource) Close() error { return nil }

func newPollOnceController(t *testing.T, src *stubSource) (*Controller, *mapping.Store) {
	t.Helper()
	store := mapping.NewStore(transform.NewKeyStore(), metrics.New())
	log, _ := logger.NewForTest()
	cfg := DefaultConfig()
	cfg.RetryAttempts = 1
	cfg.ProbeTimeout = time.Second
	cfg.FetchTimeout = time.Second
	ctrl := NewController(cfg, src, store, log, metrics.New())
	return ctrl, store
}

// TestPollOnce_EqualETagEqualHashDoesNotSwap drives the real polling path
// (not ForceReload, which always bypasses classifyByETag) and asserts the
// "unchanged" row of the spec §4.5 rule table: identical etag and identical
// body must not re-adopt.
func TestPollOnce_EqualETagEqualHashDoesNotSwap(t *testing.T) {
	src := &stubSource{etag: "E1", hasETag: true, body: []byte(pollOnceTestDoc)}
	ctrl, store := newPollOnceController(t, src)

	require.NoError(t, ctrl.pollOnce(context.Background()))
	first := store.Current()

	require.NoError(t, ctrl.pollOnce(context.Background()))
	second := store.Current()

	assert.Same(t, first, second)
}

// TestPollOnce_DifferingETagSwaps covers the "etag changed" row: a
// definitively different etag must swap without needing the hash fallback.
func TestPollOnce_DifferingETagSwaps(t *testing.T) {
	src := &stubSource{etag: "E1", hasETag: true, body: []byte(pollOnceTestDoc)}
	ctrl, store := newPollOnceController(t, src)

	require.NoError(t, ctrl.pollOnce(context.Background()))
	first := store.Current()

	changedDoc := `{"topics":{"t":{"root":"r","output":{"id":{"paths":["$.other"]}}}}}`
	src.etag = "E2"
	src.body = []byte(changedDoc)

	require.NoError(t, ctrl.pollOnce(context.Background()))
	second := store.Current()

	assert.NotSame(t, first, second)
}

// TestPollOnce_EqualETagDifferingHashSwaps is the literal S6 scenario: the
// source reports the same etag (E1) both times but the body differs, so
// pollOnce must fall back to hashing the fetched body to detect the change.
func TestPollOnce_EqualETagDifferingHashSwaps(t *testing.T) {
	src := &stubSource{etag: "E1", hasETag: true, body: []byte(pollOnceTestDoc)}
	ctrl, store := newPollOnceController(t, src)

	require.NoError(t, ctrl.pollOnce(context.Background()))
	first := store.Current()

	changedDoc := `{"topics":{"t":{"root":"r","output":{"id":{"paths":["$.other"]}}}}}`
	src.body = []byte(changedDoc) // etag left at E1 on purpose

	require.NoError(t, ctrl.pollOnce(context.Background()))
	second := store.Current()

	assert.NotSame(t, first, second)
}
