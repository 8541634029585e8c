// Package ephemeral provisions a throwaway in-memory SQLite database for
// a single test.
//
// LIFECYCLE
// ─────────
//
//	Open      → creates a uniquely named in-memory database
//	Prepare   → drops every table, then recreates the full schema
//	Session   → one connection per request, counted until Close
//	Teardown  → drops every table again
//	Close     → releases the database; its memory is freed
//
// Every Store gets its own database name, so two stores (and therefore two
// tests) never see each other's rows, even when they run in parallel.
//
// Most tests only need New(t), which does all of the above and registers
// the cleanup with t.Cleanup.
package ephemeral

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/campus-api/internal/storage"
	"github.com/aanand-mishra/campus-api/internal/storage/sqlite"
	"github.com/aanand-mishra/campus-api/internal/testutils"
)

// ErrSessionsLeaked is returned by Teardown when some session was never
// closed.
var ErrSessionsLeaked = errors.New("ephemeral: sessions still open at teardown")

// Store is an isolated, memory-resident storage.Provider.
type Store struct {
	name    string
	backend *sqlite.Store
	log     *slog.Logger

	// anchor is never used for queries. A shared-cache memory database is
	// destroyed when its last connection closes; holding this one open
	// keeps the data alive while the pool recycles the others.
	anchor *sql.Conn

	open atomic.Int64
}

// Open creates a fresh, empty in-memory database. The schema is not
// created until Prepare is called.
func Open(ctx context.Context, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	name := "campus-" + uuid.NewString()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	backend, err := sqlite.Open(ctx, dsn, log)
	if err != nil {
		return nil, fmt.Errorf("ephemeral: %w", err)
	}

	anchor, err := backend.DB().Conn(ctx)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("ephemeral: anchor conn: %w", err)
	}

	log = log.With(slog.String("db", name))
	log.Debug("ephemeral store opened")

	return &Store{name: name, backend: backend, log: log, anchor: anchor}, nil
}

// Name returns the unique database name.
func (s *Store) Name() string {
	return s.name
}

// DB returns the underlying pool for tests that need raw SQL. Callers
// must not close it.
func (s *Store) DB() *sql.DB {
	return s.backend.DB()
}

// Prepare drops any existing schema objects, whether or not a migration
// created them, and recreates the full schema. It can be called any number
// of times; each call leaves an empty schema.
func (s *Store) Prepare(ctx context.Context) error {
	if err := s.backend.Wipe(ctx); err != nil {
		return fmt.Errorf("ephemeral: prepare: %w", err)
	}
	if err := s.backend.Migrate(ctx); err != nil {
		return fmt.Errorf("ephemeral: prepare: %w", err)
	}
	s.log.Debug("ephemeral schema prepared")
	return nil
}

// Session implements storage.Provider. The session is counted as open
// until its Close method runs.
func (s *Store) Session(ctx context.Context) (storage.Session, error) {
	sess, err := s.backend.Session(ctx)
	if err != nil {
		return nil, err
	}
	s.open.Add(1)
	return &trackedSession{Session: sess, store: s}, nil
}

// OpenSessions reports how many sessions have been acquired but not closed.
func (s *Store) OpenSessions() int64 {
	return s.open.Load()
}

// Teardown drops every schema object. It still drops the schema when
// sessions were leaked, but reports them with ErrSessionsLeaked.
func (s *Store) Teardown(ctx context.Context) error {
	var errs []error
	if n := s.OpenSessions(); n > 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrSessionsLeaked, n))
	}
	if err := s.backend.Wipe(ctx); err != nil {
		errs = append(errs, fmt.Errorf("ephemeral: teardown: %w", err))
	}
	s.log.Debug("ephemeral schema dropped")
	return errors.Join(errs...)
}

// Close releases the anchor connection and the pool. After Close the
// database no longer exists.
func (s *Store) Close() error {
	return errors.Join(s.anchor.Close(), s.backend.Close())
}

var _ storage.Provider = (*Store)(nil)

type trackedSession struct {
	storage.Session
	store *Store
	once  sync.Once
}

func (t *trackedSession) Close() error {
	var err error
	t.once.Do(func() {
		err = t.Session.Close()
		t.store.open.Add(-1)
	})
	return err
}

// New opens and prepares a Store for t. Provisioning errors fail the test
// immediately, before it can issue any request. Teardown and Close run
// from t.Cleanup; a leaked session fails the test there.
func New(t testing.TB) *Store {
	t.Helper()
	ctx := context.Background()

	s, err := Open(ctx, testutils.Logger(t))
	require.NoError(t, err, "open ephemeral store")

	t.Cleanup(func() {
		assert.NoError(t, s.Teardown(ctx), "teardown ephemeral store")
		assert.NoError(t, s.Close(), "close ephemeral store")
	})

	require.NoError(t, s.Prepare(ctx), "prepare ephemeral store")
	return s
}
