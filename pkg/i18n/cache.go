package i18n

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// DefaultTTL is how long a fetched catalog is served from the store.
const DefaultTTL = time.Hour

// FetchFunc retrieves the full catalog from the backend.
type FetchFunc func(ctx context.Context) (Catalog, error)

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithStore sets the persistent store. Defaults to a MemoryStore.
func WithStore(store Store) CacheOption {
	return func(c *Cache) {
		if store != nil {
			c.store = store
		}
	}
}

// WithClock injects the clock used for expiry.
func WithClock(clock clockwork.Clock) CacheOption {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the logger for cache diagnostics.
func WithLogger(logger *zap.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Cache serves the catalog from its store while the entry is younger than
// the TTL and refetches otherwise.
type Cache struct {
	fetch  FetchFunc
	store  Store
	clock  clockwork.Clock
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache constructs a Cache around fetch.
func NewCache(fetch FetchFunc, options ...CacheOption) *Cache {
	c := &Cache{
		fetch:  fetch,
		store:  NewMemoryStore(),
		clock:  clockwork.NewRealClock(),
		ttl:    DefaultTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Load returns the cached catalog when fresh, fetching and storing a new one
// otherwise. Store failures are logged and do not fail the load.
func (c *Cache) Load(ctx context.Context) (Catalog, error) {
	entry, ok, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("translation cache read failed", zap.Error(err))
	}
	if ok && c.fresh(entry) {
		c.logger.Debug("translation cache hit", zap.Time("fetched_at", entry.FetchedAt))
		return entry.Catalog, nil
	}

	if c.fetch == nil {
		return nil, ErrNoFetcher
	}
	catalog, err := c.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("i18n: fetch translations: %w", err)
	}
	if catalog == nil {
		catalog = Catalog{}
	}
	if err := c.store.Save(ctx, Entry{Catalog: catalog, FetchedAt: c.clock.Now()}); err != nil {
		c.logger.Warn("translation cache write failed", zap.Error(err))
	}
	return catalog, nil
}

// Invalidate drops the stored entry so the next Load fetches.
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	c.logger.Debug("translation cache invalidated")
	return nil
}

func (c *Cache) fresh(entry Entry) bool {
	if entry.FetchedAt.IsZero() {
		return false
	}
	return c.clock.Since(entry.FetchedAt) < c.ttl
}
