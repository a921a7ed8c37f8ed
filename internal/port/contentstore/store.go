// Package contentstore defines the port through which sections are read and
// written. The REST client, the PostgreSQL store and the cache decorator all
// implement it.
package contentstore

import (
	"context"

	"github.com/Strob0t/folio/internal/domain/content"
)

// Store is the Content Store port. Lookups of a missing section return an
// error wrapping domain.ErrNotFound; creating an existing identity returns
// one wrapping domain.ErrConflict.
type Store interface {
	GetSection(ctx context.Context, pageKey, sectionKey string) (*content.Section, error)
	ListSections(ctx context.Context, pageKey string) ([]content.Section, error)
	CreateSection(ctx context.Context, req *content.CreateRequest) (*content.Section, error)
	// UpdateSection applies a partial update. When req.Content is set it
	// replaces the stored content as a whole.
	UpdateSection(ctx context.Context, pageKey, sectionKey string, req *content.UpdateRequest) (*content.Section, error)
	DeleteSection(ctx context.Context, pageKey, sectionKey string) error
}
