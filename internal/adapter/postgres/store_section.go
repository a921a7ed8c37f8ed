package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Strob0t/folio/internal/domain/content"
)

// Store implements contentstore.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const sectionColumns = `id::text, page_key, section_key, title, description, content, is_active, is_editable, created_at, updated_at`

func scanSection(row scannable) (content.Section, error) {
	var (
		sec content.Section
		raw []byte
	)
	if err := row.Scan(
		&sec.ID, &sec.PageKey, &sec.SectionKey, &sec.Title, &sec.Description,
		&raw, &sec.IsActive, &sec.IsEditable, &sec.CreatedAt, &sec.UpdatedAt,
	); err != nil {
		return sec, err
	}
	sec.Content = content.Content{}
	if len(raw) > 0 {
		if err := content.Decode(raw, &sec.Content); err != nil {
			return sec, fmt.Errorf("decode content: %w", err)
		}
	}
	return sec, nil
}

// GetSection retrieves a section by its identity.
func (s *Store) GetSection(ctx context.Context, pageKey, sectionKey string) (*content.Section, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE page_key = $1 AND section_key = $2`,
		pageKey, sectionKey)

	sec, err := scanSection(row)
	if err != nil {
		return nil, notFoundWrap(err, "get section %s/%s", pageKey, sectionKey)
	}
	return &sec, nil
}

// ListSections returns the sections of a page, or of every page when pageKey
// is empty, oldest first.
func (s *Store) ListSections(ctx context.Context, pageKey string) ([]content.Section, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+sectionColumns+` FROM sections
		 WHERE $1 = '' OR page_key = $1
		 ORDER BY page_key, created_at, section_key`, pageKey)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	sections := []content.Section{}
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// CreateSection inserts a new section. An existing (page_key, section_key)
// pair yields domain.ErrConflict.
func (s *Store) CreateSection(ctx context.Context, req *content.CreateRequest) (*content.Section, error) {
	raw, err := contentJSON(req.Content)
	if err != nil {
		return nil, fmt.Errorf("marshal content: %w", err)
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO sections (id, page_key, section_key, title, description, content, is_active, is_editable)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)
		 RETURNING `+sectionColumns,
		uuid.NewString(), req.PageKey, req.SectionKey, req.Title, req.Description,
		raw, req.IsActive, req.IsEditable)

	sec, err := scanSection(row)
	if err != nil {
		return nil, conflictWrap(err, "create section %s/%s", req.PageKey, req.SectionKey)
	}
	return &sec, nil
}

// UpdateSection applies a partial update. Content, when present, replaces the
// stored document as a whole.
func (s *Store) UpdateSection(ctx context.Context, pageKey, sectionKey string, req *content.UpdateRequest) (*content.Section, error) {
	var contentArg any
	if req.Content != nil {
		raw, err := contentJSON(req.Content)
		if err != nil {
			return nil, fmt.Errorf("marshal content: %w", err)
		}
		contentArg = raw
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE sections SET
			title       = COALESCE($3, title),
			description = COALESCE($4, description),
			content     = COALESCE($5::jsonb, content),
			is_active   = COALESCE($6, is_active),
			is_editable = COALESCE($7, is_editable),
			updated_at  = now()
		 WHERE page_key = $1 AND section_key = $2
		 RETURNING `+sectionColumns,
		pageKey, sectionKey, req.Title, req.Description, contentArg, req.IsActive, req.IsEditable)

	sec, err := scanSection(row)
	if err != nil {
		return nil, notFoundWrap(err, "update section %s/%s", pageKey, sectionKey)
	}
	return &sec, nil
}

// DeleteSection removes a section.
func (s *Store) DeleteSection(ctx context.Context, pageKey, sectionKey string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM sections WHERE page_key = $1 AND section_key = $2`, pageKey, sectionKey)
	return execExpectOne(tag, err, "delete section %s/%s", pageKey, sectionKey)
}
