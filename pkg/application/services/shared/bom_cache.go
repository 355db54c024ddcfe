package shared

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vsinha/supplyadvisor/pkg/application/dto"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
)

// BOMCache memoizes BOM lookups per (product, recursion level, selection)
// for the lifetime of a planning session. Callers invalidate it explicitly.
type BOMCache struct {
	maxEntries int

	entries map[dto.BOMCacheKey]*dto.CachedBOM
	mutex   sync.RWMutex

	hits   atomic.Int64
	misses atomic.Int64
}

// NewBOMCache creates a cache bounded to maxEntries (0 = unlimited)
func NewBOMCache(maxEntries int) *BOMCache {
	return &BOMCache{
		maxEntries: maxEntries,
		entries:    make(map[dto.BOMCacheKey]*dto.CachedBOM),
	}
}

// GetOrLoad returns the cached lines for the key or loads and stores them.
// Failed loads are not cached.
func (c *BOMCache) GetOrLoad(
	ctx context.Context,
	query repositories.BOMQuery,
	level int,
	load func(ctx context.Context, query repositories.BOMQuery) ([]*entities.BOMLine, error),
) ([]*entities.BOMLine, error) {
	key := dto.BOMCacheKey{ProductID: query.ProductID, Level: level, Query: query.Key()}

	c.mutex.RLock()
	cached, exists := c.entries[key]
	c.mutex.RUnlock()
	if exists {
		c.hits.Add(1)
		return cached.Lines, nil
	}

	c.misses.Add(1)
	lines, err := load(ctx, query)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	c.entries[key] = &dto.CachedBOM{Lines: lines, ComputedAt: time.Now()}
	c.mutex.Unlock()

	c.cleanIfNeeded()
	return lines, nil
}

// Invalidate drops every cached lookup
func (c *BOMCache) Invalidate() {
	c.mutex.Lock()
	c.entries = make(map[dto.BOMCacheKey]*dto.CachedBOM)
	c.mutex.Unlock()
}

// Len returns the number of cached lookups
func (c *BOMCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// Stats returns cache hits and misses since creation
func (c *BOMCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// cleanIfNeeded evicts the oldest entry once the cache exceeds its bound
func (c *BOMCache) cleanIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for len(c.entries) > c.maxEntries {
		var oldestTime time.Time
		var oldestKey dto.BOMCacheKey
		for key, value := range c.entries {
			if oldestTime.IsZero() || value.ComputedAt.Before(oldestTime) {
				oldestTime = value.ComputedAt
				oldestKey = key
			}
		}
		delete(c.entries, oldestKey)
	}
}
