package usecase

import (
	"sync"
	"time"

	"ArticlesAggregator/internal/domain"
)

// FallbackCache holds the last successfully enriched batch.
//
// Store replaces the whole batch under the write lock and Snapshot hands out a copy,
// so readers never observe a partially written or mixed batch.
type FallbackCache struct {
	clock func() time.Time

	mu          sync.RWMutex
	articles    []domain.DisplayArticle
	initialized bool
	updatedAt   time.Time
}

// NewFallbackCache returns an uninitialized cache.
func NewFallbackCache() *FallbackCache {
	return &FallbackCache{clock: time.Now}
}

// Store atomically replaces the cached batch.
func (c *FallbackCache) Store(batch []domain.DisplayArticle) {
	cp := cloneArticles(batch)
	now := c.clock()

	c.mu.Lock()
	c.articles = cp
	c.initialized = true
	c.updatedAt = now
	c.mu.Unlock()
}

// Snapshot returns a copy of the cached batch.
// ok is false when no batch has ever been stored.
func (c *FallbackCache) Snapshot() (batch []domain.DisplayArticle, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.initialized {
		return nil, false
	}
	return cloneArticles(c.articles), true
}

// UpdatedAt reports when the batch was last replaced; zero if never.
func (c *FallbackCache) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

func cloneArticles(in []domain.DisplayArticle) []domain.DisplayArticle {
	out := make([]domain.DisplayArticle, len(in))
	copy(out, in)
	return out
}
