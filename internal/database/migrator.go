package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Execer is satisfied by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Migrator applies the embedded SQL migrations in file name order and
// records each one in schema_migrations.
type Migrator struct {
	db Execer
	fs fs.FS
}

func NewMigrator(db Execer) *Migrator {
	return &Migrator{db: db, fs: migrationFS}
}

// Pending lists migration files not yet applied. Reset scripts are never
// listed.
func (m *Migrator) Pending(ctx context.Context) ([]string, error) {
	if err := m.createMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}
	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	files, err := Files(m.fs)
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, name := range files {
		if !applied[name] {
			pending = append(pending, name)
		}
	}
	return pending, nil
}

// RunMigrations applies every pending migration and returns how many ran.
func (m *Migrator) RunMigrations(ctx context.Context) (int, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}
	for _, name := range pending {
		content, err := fs.ReadFile(m.fs, "migrations/"+name)
		if err != nil {
			return 0, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		log.Info().Str("component", "migrator").Str("file", name).Msg("running migration")
		if _, err := m.db.Exec(ctx, string(content)); err != nil {
			return 0, fmt.Errorf("failed to run migration %s: %w", name, err)
		}
		if err := m.recordMigration(ctx, name); err != nil {
			return 0, fmt.Errorf("failed to record migration %s: %w", name, err)
		}
	}
	if len(pending) == 0 {
		log.Info().Str("component", "migrator").Msg("database is up to date")
	}
	return len(pending), nil
}

// ResetScript returns the destructive drop-everything script.
func ResetScript() (string, error) {
	content, err := fs.ReadFile(migrationFS, "migrations/9999_reset.sql")
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// Files lists the applicable .sql files of fsys, sorted. Names containing
// "reset" are skipped.
func Files(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") || strings.Contains(name, "reset") {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

func (m *Migrator) getAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)
	rows, err := m.db.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, err
		}
		applied[filename] = true
	}
	return applied, rows.Err()
}

func (m *Migrator) recordMigration(ctx context.Context, filename string) error {
	_, err := m.db.Exec(ctx, `
		INSERT INTO schema_migrations (filename)
		VALUES ($1)
		ON CONFLICT (filename) DO NOTHING`, filename)
	return err
}
