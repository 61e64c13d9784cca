package sponsorblock

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/llehouerou/mpv-sponsorblock/internal/metrics"
)

// DefaultCacheSize is the number of videos kept by the result cache.
const DefaultCacheSize = 10

// Cache keeps the segments of recently played videos in memory.
// Failed and empty lookups are never stored.
type Cache struct {
	entries *lru.Cache[string, []Segment]
}

// NewCache creates a cache holding at most size videos.
// A size of zero or less returns a nil cache, which always misses.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		return nil, nil
	}
	entries, err := lru.New[string, []Segment](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// GetOrFetch returns the cached segments for videoID or calls fetch.
func (c *Cache) GetOrFetch(ctx context.Context, videoID string, fetch FetchFunc) ([]Segment, error) {
	if c == nil {
		return fetch(ctx, videoID)
	}

	if segments, ok := c.entries.Get(videoID); ok {
		metrics.CacheHit()
		return segments, nil
	}
	metrics.CacheMiss()

	segments, err := fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if len(segments) > 0 {
		c.entries.Add(videoID, segments)
	}
	return segments, nil
}

// Wrap returns a FetchFunc that goes through the cache.
func (c *Cache) Wrap(fetch FetchFunc) FetchFunc {
	return func(ctx context.Context, videoID string) ([]Segment, error) {
		return c.GetOrFetch(ctx, videoID, fetch)
	}
}

// Len returns the number of cached videos.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
