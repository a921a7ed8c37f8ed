// Package tiered implements a two-level (L1 + L2) cache adapter for section
// payloads: an in-process L1 in front of a shared L2.
package tiered

import (
	"context"
	"log/slog"
	"time"

	"github.com/Strob0t/folio/internal/port/cache"
	"github.com/Strob0t/folio/internal/resilience"
)

// Cache combines an L1 (in-process) and L2 (remote) cache.
// Get checks L1 first, then L2 (backfilling L1 on L2 hit). An unreachable L2
// is treated as a miss so section reads fall through to the store.
type Cache struct {
	l1       cache.Cache
	l2       cache.Cache
	l1Expire time.Duration
	breaker  *resilience.Breaker
}

// New creates a tiered cache with the given L1 and L2 backends.
// l1Expire caps how long any entry lives in L1, so instances converge on
// L2 invalidations made elsewhere.
func New(l1, l2 cache.Cache, l1Expire time.Duration) *Cache {
	return &Cache{l1: l1, l2: l2, l1Expire: l1Expire}
}

// WithBreaker routes every L2 call through b. While the circuit is open,
// reads are L1-only and writes fail fast with resilience.ErrCircuitOpen.
func (c *Cache) WithBreaker(b *resilience.Breaker) *Cache {
	c.breaker = b
	return c
}

// Get checks L1, then L2. On L2 hit, backfills L1.
func (c *Cache) Get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	val, found, err := c.l1.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if found {
		return val, true, nil
	}

	err = c.l2Do(ctx, func(ctx context.Context) error {
		var gerr error
		val, found, gerr = c.l2.Get(ctx, key)
		return gerr
	})
	if err != nil {
		slog.WarnContext(ctx, "l2 cache get failed", "key", key, "error", err)
		return nil, false, nil
	}
	if !found {
		return nil, false, nil
	}
	_ = c.l1.Set(ctx, key, val, c.l1Expire)
	return val, true, nil
}

// Set writes L2 first, then L1. L1 never holds a value L2 refused.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.l2Do(ctx, func(ctx context.Context) error {
		return c.l2.Set(ctx, key, value, ttl)
	})
	if err != nil {
		return err
	}
	return c.l1.Set(ctx, key, value, c.l1TTL(ttl))
}

// Delete removes from both L1 and L2. L1 is always cleared even when L2 fails.
func (c *Cache) Delete(ctx context.Context, key string) error {
	l1Err := c.l1.Delete(ctx, key)
	err := c.l2Do(ctx, func(ctx context.Context) error {
		return c.l2.Delete(ctx, key)
	})
	if err != nil {
		return err
	}
	return l1Err
}

func (c *Cache) l1TTL(ttl time.Duration) time.Duration {
	if c.l1Expire > 0 && (ttl <= 0 || ttl > c.l1Expire) {
		return c.l1Expire
	}
	return ttl
}

func (c *Cache) l2Do(ctx context.Context, fn func(context.Context) error) error {
	if c.breaker == nil {
		return fn(ctx)
	}
	return c.breaker.Do(ctx, fn)
}
