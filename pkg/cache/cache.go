// Package cache holds short-lived prediction results keyed by the
// composite request parameters. Entries expire lazily on lookup; there
// is no background sweep.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mleray/forecastgate/pkg/forecast"
)

// DefaultTTL is how long a stored result stays servable.
const DefaultTTL = 5 * time.Minute

// ResultCache is the storage contract the orchestrator consumes. The
// in-memory implementation is the default; the Redis one serves
// multi-replica deployments.
type ResultCache interface {
	// Get returns the cached result for key, or false when the key is
	// absent or its entry has aged past the TTL.
	Get(ctx context.Context, key string) (*forecast.SegmentedResult, bool)

	// Put inserts or replaces the entry for key with storedAt = now.
	Put(ctx context.Context, key string, result *forecast.SegmentedResult)

	// InvalidateAll drops every entry. Triggered explicitly when the
	// request context changes, never automatically.
	InvalidateAll(ctx context.Context)

	// Entries reports how many entries are currently stored, counting
	// expired-but-unswept ones.
	Entries(ctx context.Context) int
}

type memoryEntry struct {
	result   *forecast.SegmentedResult
	storedAt time.Time
}

// MemoryCache is a mutex-guarded TTL map.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration

	nowFunc func() time.Time
}

// NewMemoryCache creates an empty cache. A non-positive ttl falls back
// to DefaultTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// SetNowFunc overrides the clock, for tests.
func (c *MemoryCache) SetNowFunc(f func() time.Time) {
	c.nowFunc = f
}

func (c *MemoryCache) Get(ctx context.Context, key string) (*forecast.SegmentedResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		cacheMisses.Inc()
		return nil, false
	}
	if c.nowFunc().Sub(entry.storedAt) >= c.ttl {
		// Lazy eviction: the expired entry is removed as a side effect
		// of the lookup.
		delete(c.entries, key)
		cacheEvictions.Inc()
		cacheMisses.Inc()
		return nil, false
	}
	cacheHits.Inc()
	return entry.result, true
}

func (c *MemoryCache) Put(ctx context.Context, key string, result *forecast.SegmentedResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{result: result, storedAt: c.nowFunc()}
}

func (c *MemoryCache) InvalidateAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
}

func (c *MemoryCache) Entries(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
