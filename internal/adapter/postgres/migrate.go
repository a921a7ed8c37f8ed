package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver "pgx" for goose
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Migrator applies the embedded schema migrations.
type Migrator struct {
	provider *goose.Provider
}

// NewMigrator opens a dedicated database/sql handle for dsn. Close releases it.
func NewMigrator(dsn string) (*Migrator, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	fsys, err := fs.Sub(embedded, "migrations")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	p, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Migrator{provider: p}, nil
}

// Up applies all pending migrations and reports how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	results, err := m.provider.Up(ctx)
	for _, r := range results {
		slog.InfoContext(ctx, "migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	if err != nil {
		return len(results), fmt.Errorf("migrate up: %w", err)
	}
	return len(results), nil
}

// Down rolls back up to steps migrations. Rolling back past the first
// migration is not an error; it stops at version zero.
func (m *Migrator) Down(ctx context.Context, steps int) (int, error) {
	done := 0
	for ; done < steps; done++ {
		v, err := m.provider.GetDBVersion(ctx)
		if err != nil {
			return done, fmt.Errorf("schema version: %w", err)
		}
		if v == 0 {
			break
		}
		r, err := m.provider.Down(ctx)
		if err != nil {
			return done, fmt.Errorf("migrate down: %w", err)
		}
		slog.InfoContext(ctx, "migration rolled back", "version", r.Source.Version)
	}
	return done, nil
}

// Version returns the current schema version, zero for an empty database.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	return m.provider.GetDBVersion(ctx)
}

// Close releases the database handle.
func (m *Migrator) Close() error {
	return m.provider.Close()
}

// RunMigrations applies pending migrations against dsn.
func RunMigrations(ctx context.Context, dsn string) error {
	m, err := NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	_, err = m.Up(ctx)
	return err
}
