package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Fetcher is the platform image-prefetch primitive: download and cache an
// image by URL, reporting only success or failure
type Fetcher interface {
	Prefetch(ctx context.Context, url string) error
}

// FetchCache records which tile URLs have already been prefetched so that
// every scheduling path (viewport prefetch, frame handoff, warm-up) can skip
// redundant network work. Entries are bounded by an LRU cap since radar
// tiles age out of relevance.
type FetchCache struct {
	fetched *lru.Cache[string, struct{}]
	fetcher Fetcher

	hits     int64
	misses   int64
	failures int64
}

// NewFetchCache creates a fetch cache holding at most capacity URLs
func NewFetchCache(capacity int, fetcher Fetcher) (*FetchCache, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	fetched, err := lru.New[string, struct{}](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru index: %w", err)
	}
	return &FetchCache{fetched: fetched, fetcher: fetcher}, nil
}

// EnsureFetched returns true if url is (or is now) present in the image
// cache. A recorded URL resolves immediately with no I/O. On a miss the
// underlying fetch runs; success records the URL, failure leaves it
// unrecorded so a later pass that re-requests it retries.
//
// Concurrent calls for the same URL are not deduplicated in flight; the
// underlying fetch is idempotent, so the duplicate work is benign.
func (c *FetchCache) EnsureFetched(ctx context.Context, url string) bool {
	if _, ok := c.fetched.Get(url); ok {
		atomic.AddInt64(&c.hits, 1)
		return true
	}

	atomic.AddInt64(&c.misses, 1)
	if err := c.fetcher.Prefetch(ctx, url); err != nil {
		atomic.AddInt64(&c.failures, 1)
		return false
	}

	c.fetched.Add(url, struct{}{})
	return true
}

// Contains reports whether url is recorded without touching the network
func (c *FetchCache) Contains(url string) bool {
	return c.fetched.Contains(url)
}

// Stats returns cache statistics
func (c *FetchCache) Stats() (hits, misses, failures int64, entries int) {
	return atomic.LoadInt64(&c.hits),
		atomic.LoadInt64(&c.misses),
		atomic.LoadInt64(&c.failures),
		c.fetched.Len()
}

// Clear drops all recorded URLs
func (c *FetchCache) Clear() {
	c.fetched.Purge()
}
