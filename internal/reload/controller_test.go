package reload_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishalvchavan/streamsmt/internal/mapping"
	"github.com/vishalvchavan/streamsmt/internal/metrics"
	"github.com/vishalvchavan/streamsmt/internal/reload"
	"github.com/vishalvchavan/streamsmt/internal/transform"
	"github.com/vishalvchavan/streamsmt/pkg/logger"
)

const testDoc = `{"topics":{"t":{"root":"r","output":{"id":{"paths":["$.id"]}}}}}`

type fakeSource struct {
	etag    string
	hasETag bool
	body    []byte

	probeCalls int32
	fetchCalls int32
	probeErr   error
	fetchErr   error
}

func (f *fakeSource) Probe(_ context.Context) (reload.Metadata, error) {
	atomic.AddInt32(&f.probeCalls, 1)
	if f.probeErr != nil {
		return reload.Metadata{}, f.probeErr
	}
	return reload.Metadata{ETag: f.etag, HasETag: f.hasETag}, nil
}

func (f *fakeSource) Fetch(_ context.Context) (reload.Fetched, error) {
	atomic.AddInt32(&f.fetchCalls, 1)
	if f.fetchErr != nil {
		return reload.Fetched{}, f.fetchErr
	}
	return reload.Fetched{Body: f.body, ETag: f.etag, HasETag: f.hasETag}, nil
}

func (f *fakeSource) Close() error { return nil }

func testConfig() reload.Config {
	cfg := reload.DefaultConfig()
	cfg.Interval = 10 * time.Millisecond
	cfg.RetryAttempts = 2
	cfg.RetryBaseDelay = time.Millisecond
	cfg.RetryMaxDelay = 5 * time.Millisecond
	cfg.ProbeTimeout = time.Second
	cfg.FetchTimeout = time.Second
	return cfg
}

func newTestLogger() logger.Logger {
	l, _ := logger.NewForTest()
	return l
}

func TestForceReload_AdoptsOnFirstSuccess(t *testing.T) {
	store := mapping.NewStore(transform.NewKeyStore(), metrics.New())
	src := &fakeSource{etag: "E1", hasETag: true, body: []byte(testDoc)}
	ctrl := reload.NewController(testConfig(), src, store, newTestLogger(), metrics.New())

	require.NoError(t, ctrl.ForceReload(context.Background()))
	require.NotNil(t, store.Current())
	_, ok := store.Lookup("", "t")
	assert.True(t, ok)
}

// TestReload_HashFallback checks ForceReload's own contract (adopt
// whatever the source currently has, unconditionally) still picks up a
// changed body under an unchanged etag. The rule table itself
// (classifyByETag, reachable only through pollOnce) is covered by
// pollonce_test.go's TestPollOnce_EqualETagDifferingHashSwaps.
func TestReload_HashFallback(t *testing.T) {
	store := mapping.NewStore(transform.NewKeyStore(), metrics.New())
	src := &fakeSource{etag: "E1", hasETag: true, body: []byte(testDoc)}
	ctrl := reload.NewController(testConfig(), src, store, newTestLogger(), metrics.New())

	require.NoError(t, ctrl.ForceReload(context.Background()))
	first := store.Current()

	changedDoc := `{"topics":{"t":{"root":"r","output":{"id":{"paths":["$.other"]}}}}}`
	src.body = []byte(changedDoc) // etag left at E1 on purpose

	require.NoError(t, ctrl.ForceReload(context.Background()))
	second := store.Current()
	assert.NotSame(t, first, second)
}

func TestReload_FetchFailureLeavesCurrentMappingUnchanged(t *testing.T) {
	store := mapping.NewStore(transform.NewKeyStore(), metrics.New())
	src := &fakeSource{etag: "E1", hasETag: true, body: []byte(testDoc)}
	ctrl := reload.NewController(testConfig(), src, store, newTestLogger(), metrics.New())

	require.NoError(t, ctrl.ForceReload(context.Background()))
	first := store.Current()

	src.fetchErr = assertErr{}
	err := ctrl.ForceReload(context.Background())
	assert.Error(t, err)
	assert.Same(t, first, store.Current())
}

type assertErr struct{}

func (assertErr) Error() string { return "simulated fetch failure" }

func TestStartStop_PollsAndStopsWithinGrace(t *testing.T) {
	store := mapping.NewStore(transform.NewKeyStore(), metrics.New())
	src := &fakeSource{etag: "E1", hasETag: true, body: []byte(testDoc)}
	ctrl := reload.NewController(testConfig(), src, store, newTestLogger(), metrics.New())

	ctrl.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	ctrl.Stop()

	assert.GreaterOrEqual(t, atomic.LoadInt32(&src.probeCalls), int32(1))
}
