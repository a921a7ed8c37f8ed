// Package cachedstore decorates a Content Store with a read-through section
// cache. Writes go to the underlying store first and then drop the cached
// entry, so a failed write never leaves a stale value behind.
package cachedstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Strob0t/folio/internal/domain/content"
	"github.com/Strob0t/folio/internal/port/cache"
	"github.com/Strob0t/folio/internal/port/contentstore"
)

// Store is a contentstore.Store that caches single-section reads.
type Store struct {
	next  contentstore.Store
	cache cache.Cache
	ttl   time.Duration
	group singleflight.Group

	// gens counts invalidations per key. A fill started before an
	// invalidation must not write its result back.
	mu   sync.Mutex
	gens map[string]uint64
}

var _ contentstore.Store = (*Store)(nil)

// New wraps next with c. ttl is passed to the cache on every fill.
func New(next contentstore.Store, c cache.Cache, ttl time.Duration) *Store {
	return &Store{next: next, cache: c, ttl: ttl, gens: make(map[string]uint64)}
}

// Key returns the cache key of a section.
func Key(pageKey, sectionKey string) string {
	return "section." + pageKey + "." + sectionKey
}

// GetSection serves from the cache, filling it from the store on a miss.
// Concurrent misses for the same section share one store call. That call
// outlives a canceled caller so the others still get their result.
func (s *Store) GetSection(ctx context.Context, pageKey, sectionKey string) (*content.Section, error) {
	key := Key(pageKey, sectionKey)

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.WarnContext(ctx, "section cache get failed", "key", key, "error", err)
	} else if ok {
		var sec content.Section
		if err := content.Decode(data, &sec); err == nil {
			return &sec, nil
		}
		_ = s.cache.Delete(ctx, key)
	}

	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		gen := s.generation(key)
		sec, err := s.next.GetSection(shared, pageKey, sectionKey)
		if err != nil {
			return nil, err
		}
		s.fill(shared, key, gen, sec)
		return sec, nil
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	// Callers may mutate the returned section; never hand out the shared value.
	sec := *res.Val.(*content.Section)
	sec.Content = content.Clone(sec.Content)
	return &sec, nil
}

// ListSections is not cached.
func (s *Store) ListSections(ctx context.Context, pageKey string) ([]content.Section, error) {
	return s.next.ListSections(ctx, pageKey)
}

// CreateSection creates through the store and drops any stale entry.
func (s *Store) CreateSection(ctx context.Context, req *content.CreateRequest) (*content.Section, error) {
	sec, err := s.next.CreateSection(ctx, req)
	if err != nil {
		return nil, err
	}
	s.Invalidate(ctx, req.PageKey, req.SectionKey)
	return sec, nil
}

// UpdateSection updates through the store and drops the cached entry.
func (s *Store) UpdateSection(ctx context.Context, pageKey, sectionKey string, req *content.UpdateRequest) (*content.Section, error) {
	sec, err := s.next.UpdateSection(ctx, pageKey, sectionKey, req)
	if err != nil {
		return nil, err
	}
	s.Invalidate(ctx, pageKey, sectionKey)
	return sec, nil
}

// DeleteSection deletes through the store and drops the cached entry.
func (s *Store) DeleteSection(ctx context.Context, pageKey, sectionKey string) error {
	if err := s.next.DeleteSection(ctx, pageKey, sectionKey); err != nil {
		return err
	}
	s.Invalidate(ctx, pageKey, sectionKey)
	return nil
}

// Invalidate drops the cached entry of a section. It is also called for
// change events published by other instances.
func (s *Store) Invalidate(ctx context.Context, pageKey, sectionKey string) {
	key := Key(pageKey, sectionKey)
	s.mu.Lock()
	s.gens[key]++
	s.mu.Unlock()
	// Later reads must not join a store call that started before the write.
	s.group.Forget(key)
	if err := s.cache.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "section cache invalidate failed", "key", key, "error", err)
	}
}

func (s *Store) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[key]
}

// fill caches sec unless key was invalidated after the read began at gen.
// An invalidation racing the Set is caught by the second check, which
// removes the entry again.
func (s *Store) fill(ctx context.Context, key string, gen uint64, sec *content.Section) {
	if s.generation(key) != gen {
		return
	}
	data, err := json.Marshal(sec)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		slog.WarnContext(ctx, "section cache set failed", "key", key, "error", err)
		return
	}
	if s.generation(key) != gen {
		_ = s.cache.Delete(ctx, key)
	}
}
