package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/campus-api/internal/config"
	"github.com/aanand-mishra/campus-api/internal/storage"
	"github.com/aanand-mishra/campus-api/internal/storage/sqlite"
	"github.com/aanand-mishra/campus-api/internal/testutils"
	"github.com/aanand-mishra/campus-api/internal/types"
)

func ptr[T any](v T) *T { return &v }

func newTestStore(t *testing.T) (*sqlite.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "campus.db")
	s, err := sqlite.New(context.Background(), &config.Config{StoragePath: path}, testutils.Logger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func newSession(t *testing.T, s *sqlite.Store) storage.Session {
	t.Helper()
	sess, err := s.Session(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func TestNew_CreatesFileAndAppliesMigrations(t *testing.T) {
	s, path := newTestStore(t)

	_, err := os.Stat(path)
	require.NoError(t, err, "database file was not created")

	statuses, err := s.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	for _, st := range statuses {
		assert.Equal(t, goose.StateApplied, st.State, "migration %s", st.Source.Path)
	}
}

func TestNew_CreatesMissingParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage", "nested", "campus.db")

	s, err := sqlite.New(context.Background(), &config.Config{StoragePath: path}, testutils.Logger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNew_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campus.db")
	cfg := &config.Config{StoragePath: path}

	for i := 0; i < 3; i++ {
		s, err := sqlite.New(context.Background(), cfg, testutils.Logger(t))
		require.NoError(t, err, "New() iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestRollbackAndReset(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.Rollback(ctx))
	statuses, err := s.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, goose.StateApplied, statuses[0].State)
	assert.Equal(t, goose.StatePending, statuses[1].State)

	require.NoError(t, s.Reset(ctx))
	statuses, err = s.Status(ctx)
	require.NoError(t, err)
	for _, st := range statuses {
		assert.Equal(t, goose.StatePending, st.State)
	}

	require.NoError(t, s.Migrate(ctx))
}

func TestWipe_DropsUnmanagedObjectsAndKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.DB().ExecContext(ctx, `
		CREATE TABLE audit (id INTEGER PRIMARY KEY, user_id INTEGER NOT NULL REFERENCES users(id));
		INSERT INTO users (name, email, age, student_id) VALUES ('A', 'a@atu.ie', 20, 'S1');
		INSERT INTO audit (user_id) VALUES (1);
		CREATE TRIGGER audit_guard BEFORE DELETE ON audit BEGIN SELECT 1; END;`)
	require.NoError(t, err)

	require.NoError(t, s.Wipe(ctx))

	var n int
	require.NoError(t, s.DB().QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE name NOT LIKE 'sqlite_%' AND name <> 'goose_db_version'`).Scan(&n))
	assert.Zero(t, n)

	require.NoError(t, s.Migrate(ctx))

	_, err = newSession(t, s).CreateProject(ctx, types.Project{Name: "P", Description: "D", OwnerID: 42})
	assert.ErrorIs(t, err, storage.ErrOwnerNotFound)
}

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	sess := newSession(t, s)

	created, err := sess.CreateUser(ctx, types.User{Name: "John", Email: "john@atu.ie", Age: 20, StudentID: "S1111111"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	updated, err := sess.UpdateUser(ctx, created.ID, types.User{
		Name: "John Updated", Email: "johnupdated@atu.ie", Age: 21, StudentID: "S2222222",
	})
	require.NoError(t, err)
	assert.Equal(t, types.User{
		ID: created.ID, Name: "John Updated", Email: "johnupdated@atu.ie", Age: 21, StudentID: "S2222222",
	}, updated)

	patched, err := sess.PatchUser(ctx, created.ID, types.UserPatch{Age: ptr(22)})
	require.NoError(t, err)
	assert.Equal(t, 22, patched.Age)
	assert.Equal(t, "John Updated", patched.Name)

	unchanged, err := sess.PatchUser(ctx, created.ID, types.UserPatch{})
	require.NoError(t, err)
	assert.Equal(t, patched, unchanged)

	require.NoError(t, sess.DeleteUser(ctx, created.ID))

	_, err = sess.GetUserByID(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	assert.True(t, storage.IsNotFound(err))
}

func TestUserNotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	sess := newSession(t, s)

	_, err := sess.UpdateUser(ctx, 42, types.User{Name: "X", Email: "x@atu.ie", Age: 1, StudentID: "S"})
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = sess.PatchUser(ctx, 42, types.UserPatch{Name: ptr("X")})
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = sess.PatchUser(ctx, 42, types.UserPatch{})
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	assert.ErrorIs(t, sess.DeleteUser(ctx, 42), storage.ErrUserNotFound)

	_, err = sess.ListProjectsByOwner(ctx, 42)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestUserUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	sess := newSession(t, s)

	_, err := sess.CreateUser(ctx, types.User{Name: "A", Email: "a@atu.ie", Age: 20, StudentID: "S1"})
	require.NoError(t, err)

	_, err = sess.CreateUser(ctx, types.User{Name: "B", Email: "a@atu.ie", Age: 20, StudentID: "S2"})
	assert.ErrorIs(t, err, storage.ErrEmailExists)
	assert.True(t, storage.IsDuplicate(err))

	_, err = sess.CreateUser(ctx, types.User{Name: "B", Email: "b@atu.ie", Age: 20, StudentID: "S1"})
	assert.ErrorIs(t, err, storage.ErrStudentIDExists)
}

func TestProjectLifecycleAndForeignKeys(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	sess := newSession(t, s)

	owner, err := sess.CreateUser(ctx, types.User{Name: "Alice", Email: "alice@atu.ie", Age: 24, StudentID: "S5555555"})
	require.NoError(t, err)

	_, err = sess.CreateProject(ctx, types.Project{Name: "P", Description: "D", OwnerID: owner.ID + 100})
	assert.ErrorIs(t, err, storage.ErrOwnerNotFound)

	p, err := sess.CreateProject(ctx, types.Project{Name: "Project B", Description: "Description B", OwnerID: owner.ID})
	require.NoError(t, err)

	patched, err := sess.PatchProject(ctx, p.ID, types.ProjectPatch{Description: ptr("Updated Description")})
	require.NoError(t, err)
	assert.Equal(t, "Project B", patched.Name)
	assert.Equal(t, "Updated Description", patched.Description)

	_, err = sess.PatchProject(ctx, p.ID, types.ProjectPatch{OwnerID: ptr(owner.ID + 100)})
	assert.ErrorIs(t, err, storage.ErrOwnerNotFound)

	owned, err := sess.ListProjectsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.Project{patched}, owned)

	// ON DELETE CASCADE removes the project with its owner.
	require.NoError(t, sess.DeleteUser(ctx, owner.ID))
	_, err = sess.GetProjectByID(ctx, p.ID)
	assert.ErrorIs(t, err, storage.ErrProjectNotFound)

	all, err := sess.ListProjects(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestDataPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "campus.db")
	cfg := &config.Config{StoragePath: path}

	s1, err := sqlite.New(ctx, cfg, testutils.Logger(t))
	require.NoError(t, err)
	sess, err := s1.Session(ctx)
	require.NoError(t, err)
	_, err = sess.CreateUser(ctx, types.User{Name: "A", Email: "a@atu.ie", Age: 20, StudentID: "S1"})
	require.NoError(t, err)
	require.NoError(t, sess.Close())
	require.NoError(t, s1.Close())

	s2, err := sqlite.New(ctx, cfg, testutils.Logger(t))
	require.NoError(t, err)
	defer s2.Close()
	sess, err = s2.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()

	users, err := sess.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
