// Package cache stores shift buckets that were synthesized for shifts with no
// reported telemetry, so repeated queries within the TTL return the same data.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
)

// MemoryCache is a process-local ShiftCache. All operations, including
// GetOrGenerate, run under one mutex.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[models.CacheKey]models.CacheEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[models.CacheKey]models.CacheEntry),
		now:     time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

func (c *MemoryCache) Get(_ context.Context, key models.CacheKey) (models.ShiftBucket, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.lookup(key)
	return b, ok, nil
}

func (c *MemoryCache) Put(_ context.Context, key models.CacheKey, bucket models.ShiftBucket, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(key, bucket, ttl)
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, key models.CacheKey) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[models.CacheKey]models.CacheEntry)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) GetOrGenerate(_ context.Context, key models.CacheKey, ttl time.Duration, gen func() models.ShiftBucket) (models.ShiftBucket, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.lookup(key); ok {
		return b, true, nil
	}
	b := gen()
	c.store(key, b, ttl)
	return b, false, nil
}

// Len counts live entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for _, e := range c.entries {
		if !e.Expired(now) {
			n++
		}
	}
	return n
}

func (c *MemoryCache) lookup(key models.CacheKey) (models.ShiftBucket, bool) {
	e, ok := c.entries[key]
	if !ok {
		return models.ShiftBucket{}, false
	}
	if e.Expired(c.now()) {
		delete(c.entries, key)
		return models.ShiftBucket{}, false
	}
	return e.Bucket, true
}

func (c *MemoryCache) store(key models.CacheKey, bucket models.ShiftBucket, ttl time.Duration) {
	if ttl <= 0 {
		delete(c.entries, key)
		return
	}
	c.entries[key] = models.CacheEntry{
		Key:        key,
		Bucket:     bucket,
		InsertedAt: c.now(),
		TTL:        ttl,
	}
}
