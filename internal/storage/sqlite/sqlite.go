// Package sqlite provides a SQLite-backed implementation of the
// storage.Provider interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk (or entirely in
// memory, which is what the test harness uses). There is no network, no
// separate server process, and no installation beyond the driver.
//
// Importing github.com/mattn/go-sqlite3 (see errors.go) registers the
// "sqlite3" driver with database/sql and also gives us sqlite3.Error,
// which we use to recognise constraint failures.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aanand-mishra/campus-api/internal/config"
	"github.com/aanand-mishra/campus-api/internal/storage"
)

// Connection parameters understood by mattn/go-sqlite3. They are put in
// the DSN, not run as PRAGMA statements, because database/sql may open
// several connections and every one of them needs the same settings.
const dsnParams = "_foreign_keys=on&_busy_timeout=5000"

// Store is the concrete implementation of storage.Provider.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// New opens the SQLite database at cfg.StoragePath, applies every pending
// migration and returns a ready-to-use *Store. The file's parent directory
// is created if it does not exist yet.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite.New: create storage dir: %w", err)
	}

	s, err := Open(ctx, cfg.StoragePath+"?_journal_mode=WAL", log)
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}

	return s, nil
}

// Open opens (and pings) a database without touching its schema.
// dsn may be a plain file path or a "file:" URI with its own query string.
func Open(ctx context.Context, dsn string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := sql.Open("sqlite3", withParams(dsn))
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: open db: %w", err)
	}

	// sql.Open does NOT open a real connection yet; Ping does.
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.Open: ping: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

func withParams(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + dsnParams
	}
	return dsn + "?" + dsnParams
}

// DB returns the underlying pool. Callers must not close it.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes every pooled connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Session checks one connection out of the pool. The returned session
// owns that connection until Close is called.
func (s *Store) Session(ctx context.Context) (storage.Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Session: acquire conn: %w", err)
	}
	return &Session{conn: conn}, nil
}

var _ storage.Provider = (*Store)(nil)

// Session implements storage.Session on top of a single *sql.Conn.
type Session struct {
	conn *sql.Conn
}

// Close returns the connection to the pool. Calling it twice is harmless.
func (s *Session) Close() error {
	err := s.conn.Close()
	if errors.Is(err, sql.ErrConnDone) {
		return nil
	}
	return err
}

var _ storage.Session = (*Session)(nil)
