package reload

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/vishalvchavan/streamsmt/internal/mapping"
	"github.com/vishalvchavan/streamsmt/internal/metrics"
	"github.com/vishalvchavan/streamsmt/pkg/logger"
)

// Config controls the Reload Controller's timing and retry behavior (spec
// §4.5, §6.4).
type Config struct {
	Interval time.Duration

	RetryAttempts  uint
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	ProbeTimeout time.Duration
	FetchTimeout time.Duration
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		Interval:       30 * time.Second,
		RetryAttempts:  3,
		RetryBaseDelay: 200 * time.Millisecond,
		RetryMaxDelay:  5 * time.Second,
		ProbeTimeout:   5 * time.Second,
		FetchTimeout:   15 * time.Second,
	}
}

// Controller is the single background poller of spec §4.5. It owns one
// Source and drives mapping.Store.TryAdopt on detected change.
type Controller struct {
	cfg    Config
	source Source
	store  *mapping.Store
	log    logger.Logger
	rec    *metrics.Recorder

	mu         sync.Mutex
	lastETag   string
	haveETag   bool
	lastHash   string
	haveResult bool

	stop chan struct{}
	done chan struct{}
}

// NewController builds a Controller. rec may be nil in tests that don't
// assert on metrics.
func NewController(cfg Config, source Source, store *mapping.Store, log logger.Logger, rec *metrics.Recorder) *Controller {
	return &Controller{
		cfg:    cfg,
		source: source,
		store:  store,
		log:    log,
		rec:    rec,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start runs the poll loop in a background goroutine until Stop is
// called, modeled on the teacher's ticker+select background-task shape.
// An initial force-reload is attempted synchronously so the store is
// populated before Start returns control to the caller; its failure is
// logged but does not prevent the background loop from starting.
func (c *Controller) Start(ctx context.Context) {
	if err := c.ForceReload(ctx); err != nil {
		c.log.Warnw("initial mapping load failed; continuing with no mapping until next poll", "error", err)
	}

	go c.run(ctx)
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-ticker.C:
			if err := c.pollOnce(ctx); err != nil {
				c.log.Warnw("mapping reload poll failed", "error", err)
			}
		}
	}
}

// Stop signals the background loop to exit and waits up to 5s for it to
// do so (spec §5 "bounded grace window").
func (c *Controller) Stop() {
	close(c.stop)
	select {
	case <-c.done:
	case <-time.After(5 * time.Second):
	}
	if err := c.source.Close(); err != nil {
		c.log.Warnw("failed to close mapping source", "error", err)
	}
}

// pollOnce runs one change-detection-then-maybe-adopt cycle. The whole
// probe-through-adopt span is timed into ReloadLatencySeconds regardless
// of outcome, the same as the teacher observes latency around a span
// whether it succeeds or fails.
func (c *Controller) pollOnce(ctx context.Context) error {
	start := time.Now()
	err := c.pollOnceInner(ctx)
	c.observeLatency(start)
	return err
}

func (c *Controller) pollOnceInner(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, c.cfg.ProbeTimeout)
	meta, err := c.probeWithRetry(probeCtx)
	cancel()
	if err != nil {
		c.recordFailure()
		return err
	}

	changed, needHash := c.classifyByETag(meta)
	if !changed && !needHash {
		return nil
	}

	fetchCtx, cancel2 := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	fetched, err := c.fetchWithRetry(fetchCtx)
	cancel2()
	if err != nil {
		c.recordFailure()
		return err
	}

	hash := contentHash(fetched.Body)
	if needHash && !changed {
		c.mu.Lock()
		changed = !c.haveResult || hash != c.lastHash
		c.mu.Unlock()
	}

	if !changed {
		c.mu.Lock()
		c.lastETag = fetched.ETag
		c.haveETag = fetched.HasETag
		c.mu.Unlock()
		return nil
	}

	return c.adopt(fetched, hash)
}

// classifyByETag implements the rule table of spec §4.5: returns changed
// when the entity tags definitively differ, and needHash when a hash
// fallback check is required to decide.
func (c *Controller) classifyByETag(meta Metadata) (changed, needHash bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !meta.HasETag || !c.haveETag {
		return false, true
	}
	if meta.ETag != c.lastETag {
		return true, false
	}
	// Equal, present entity tags: fall back to hash for a conservative
	// re-check.
	return false, true
}

func (c *Controller) adopt(fetched Fetched, hash string) error {
	if err := c.store.TryAdopt(fetched.Body); err != nil {
		c.recordFailure()
		return err
	}
	c.recordSuccess(fetched, hash)
	c.log.Infow("adopted new mapping document", "etag", fetched.ETag)
	return nil
}

func (c *Controller) recordSuccess(fetched Fetched, hash string) {
	c.mu.Lock()
	c.lastETag = fetched.ETag
	c.haveETag = fetched.HasETag
	c.lastHash = hash
	c.haveResult = true
	c.mu.Unlock()

	if c.rec != nil {
		c.rec.ReloadSuccess.Inc()
		c.rec.ReloadLastSuccessEpoch.Set(float64(nowUnix()))
	}
}

func (c *Controller) recordFailure() {
	if c.rec != nil {
		c.rec.ReloadFailure.Inc()
	}
}

func (c *Controller) observeLatency(start time.Time) {
	if c.rec != nil {
		c.rec.ReloadLatencySeconds.Observe(time.Since(start).Seconds())
	}
}

// ForceReload implements spec §4.5 "Force-reload operation": bypasses
// change detection entirely. The fetch-through-swap span is timed into
// ReloadLatencySeconds on both the success and failure paths.
func (c *Controller) ForceReload(ctx context.Context) error {
	start := time.Now()
	err := c.forceReloadInner(ctx)
	c.observeLatency(start)
	return err
}

func (c *Controller) forceReloadInner(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	fetched, err := c.fetchWithRetry(fetchCtx)
	if err != nil {
		c.recordFailure()
		return err
	}

	hash := contentHash(fetched.Body)
	return c.adopt(fetched, hash)
}

func (c *Controller) probeWithRetry(ctx context.Context) (Metadata, error) {
	var result Metadata
	err := retry.Do(
		func() error {
			m, err := c.source.Probe(ctx)
			if err != nil {
				return err
			}
			result = m
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.RetryAttempts),
		retry.Delay(c.cfg.RetryBaseDelay),
		retry.MaxDelay(c.cfg.RetryMaxDelay),
		retry.MaxJitter(50*time.Millisecond),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
	)
	return result, err
}

func (c *Controller) fetchWithRetry(ctx context.Context) (Fetched, error) {
	var result Fetched
	err := retry.Do(
		func() error {
			f, err := c.source.Fetch(ctx)
			if err != nil {
				return err
			}
			result = f
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.RetryAttempts),
		retry.Delay(c.cfg.RetryBaseDelay),
		retry.MaxDelay(c.cfg.RetryMaxDelay),
		retry.MaxJitter(50*time.Millisecond),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
	)
	return result, err
}

func contentHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func nowUnix() int64 {
	return time.Now().Unix()
}
