// Package cachetest holds a compliance suite shared by cache adapters.
package cachetest

import (
	"context"
	"testing"
	"time"

	"github.com/Strob0t/folio/internal/port/cache"
)

// Run exercises the behavior every cache.Cache implementation must provide.
// wait is called after each write for adapters that apply writes
// asynchronously; pass nil when writes are visible immediately.
func Run(t *testing.T, c cache.Cache, wait func()) {
	t.Helper()
	ctx := context.Background()
	if wait == nil {
		wait = func() {}
	}

	t.Run("SetAndGet", func(t *testing.T) {
		if err := c.Set(ctx, "section.home.hero", []byte(`{"title":"Hi"}`), time.Minute); err != nil {
			t.Fatal(err)
		}
		wait()
		val, found, err := c.Get(ctx, "section.home.hero")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected found after Set")
		}
		if string(val) != `{"title":"Hi"}` {
			t.Fatalf("unexpected value %s", val)
		}
	})

	t.Run("GetMiss", func(t *testing.T) {
		_, found, err := c.Get(ctx, "section.home.missing")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss for unknown key")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = c.Set(ctx, "section.about.bio", []byte("x"), time.Minute)
		wait()
		if err := c.Delete(ctx, "section.about.bio"); err != nil {
			t.Fatal(err)
		}
		_, found, err := c.Get(ctx, "section.about.bio")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss after Delete")
		}
	})

	t.Run("DeleteNonexistent", func(t *testing.T) {
		if err := c.Delete(ctx, "section.never.existed"); err != nil {
			t.Fatal("Delete of unknown key should not error")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		_ = c.Set(ctx, "section.home.cta", []byte("v1"), time.Minute)
		wait()
		_ = c.Set(ctx, "section.home.cta", []byte("v2"), time.Minute)
		wait()
		val, found, err := c.Get(ctx, "section.home.cta")
		if err != nil {
			t.Fatal(err)
		}
		if !found || string(val) != "v2" {
			t.Fatalf("expected v2 after overwrite, got %q (found=%v)", val, found)
		}
	})
}
