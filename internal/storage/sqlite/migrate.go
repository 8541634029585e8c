package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"
)

// The SQL files are compiled into the binary, so the server and the test
// harness never depend on the working directory.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

func (s *Store) migrator() (*goose.Provider, error) {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations fs: %w", err)
	}

	p, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return p, nil
}

// Migrate applies every pending migration. Running it on an up-to-date
// database is a no-op.
func (s *Store) Migrate(ctx context.Context) error {
	p, err := s.migrator()
	if err != nil {
		return err
	}

	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	s.logResults("migration applied", results)
	return nil
}

// Reset rolls back every applied migration, dropping all tables the
// application owns. The goose version table itself is kept.
func (s *Store) Reset(ctx context.Context) error {
	p, err := s.migrator()
	if err != nil {
		return err
	}

	results, err := p.DownTo(ctx, 0)
	if err != nil {
		return fmt.Errorf("migrate reset: %w", err)
	}
	s.logResults("migration rolled back", results)
	return nil
}

// versionTable is where goose records applied migrations.
const versionTable = "goose_db_version"

// Wipe drops every table, view and trigger, including ones created
// outside migrations through DB(), and then rolls the migrations back like
// Reset so the next Migrate starts from zero. Only SQLite's internal
// tables and the goose version table survive.
//
// Objects are dropped before the rollback because an unmanaged table may
// reference a migrated one, which would make a foreign-key checked DROP
// fail. Every Down section uses IF EXISTS, so the rollback then only
// updates the version table.
func (s *Store) Wipe(ctx context.Context) error {
	if err := s.dropAll(ctx); err != nil {
		return err
	}
	return s.Reset(ctx)
}

func (s *Store) dropAll(ctx context.Context) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("wipe: acquire conn: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, `
		SELECT type, name FROM sqlite_master
		WHERE type IN ('table', 'view', 'trigger')
		  AND name NOT LIKE 'sqlite_%'
		  AND name <> ?
		ORDER BY CASE type WHEN 'trigger' THEN 0 WHEN 'view' THEN 1 ELSE 2 END, name`,
		versionTable)
	if err != nil {
		return fmt.Errorf("wipe: list objects: %w", err)
	}

	var drops []string
	for rows.Next() {
		var typ, name string
		if err := rows.Scan(&typ, &name); err != nil {
			rows.Close()
			return fmt.Errorf("wipe: scan: %w", err)
		}
		drops = append(drops, fmt.Sprintf("DROP %s IF EXISTS %s", strings.ToUpper(typ), quoteIdent(name)))
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("wipe: list objects: %w", err)
	}
	rows.Close()

	if len(drops) == 0 {
		return nil
	}

	// Tables may reference each other; drop them without enforcing
	// foreign keys, then restore the connection's setting.
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("wipe: disable foreign keys: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.WithoutCancel(ctx), "PRAGMA foreign_keys = ON")
	}()

	for _, stmt := range drops {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("wipe: %s: %w", stmt, err)
		}
	}
	s.log.Debug("schema objects dropped", slog.Int("count", len(drops)))
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Rollback undoes the most recently applied migration.
func (s *Store) Rollback(ctx context.Context) error {
	p, err := s.migrator()
	if err != nil {
		return err
	}

	result, err := p.Down(ctx)
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	s.logResults("migration rolled back", []*goose.MigrationResult{result})
	return nil
}

// Status reports every known migration and whether it has been applied.
func (s *Store) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	p, err := s.migrator()
	if err != nil {
		return nil, err
	}

	statuses, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate status: %w", err)
	}
	return statuses, nil
}

func (s *Store) logResults(msg string, results []*goose.MigrationResult) {
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		s.log.Debug(msg,
			slog.Int64("version", r.Source.Version),
			slog.String("path", r.Source.Path),
			slog.Duration("duration", r.Duration))
	}
}
