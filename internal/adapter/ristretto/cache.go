// Package ristretto is the in-process L1 section cache, backed by
// dgraph-io/ristretto.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache stores encoded sections in memory, bounded by their total size.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates a cache holding at most maxBytes of payload.
func New(maxBytes int64) (*Cache, error) {
	// Ristretto wants about ten counters per expected entry; sections
	// encode to roughly a kilobyte.
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters:        max(maxBytes/1024*10, 1000),
		MaxCost:            maxBytes,
		BufferItems:        64,
		IgnoreInternalCost: true,
		Metrics:            true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

func (c *Cache) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	val, found := c.c.Get(key)
	return val, found, nil
}

// Set stores value at the cost of its length. A zero TTL keeps the entry
// until evicted. Ristretto may refuse admission under pressure; that is
// a miss later, not an error.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.c.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.c.Del(key)
	return nil
}

// HitRatio reports the share of Gets served from memory since start.
func (c *Cache) HitRatio() float64 {
	return c.c.Metrics.Ratio()
}

// Wait blocks until buffered writes are applied.
func (c *Cache) Wait() {
	c.c.Wait()
}

// Close stops the cache's background goroutines.
func (c *Cache) Close() {
	c.c.Close()
}
