// Package storage defines the contracts that any database backend must
// satisfy to work with this application.
//
// WHY TWO INTERFACES?
// ───────────────────
// Handlers never hold a database connection for longer than one request.
// They ask a Provider for a Session, use it, and Close it before returning:
//
//	sess, err := provider.Session(r.Context())
//	if err != nil { ... }
//	defer sess.Close()
//
// The Provider is the single injection point of the HTTP layer. The
// server passes a file-backed SQLite store; tests pass an ephemeral
// in-memory one. Handlers cannot tell the difference.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanand-mishra/campus-api/internal/types"
)

// Provider hands out sessions. Implementations must be safe for
// concurrent use by multiple goroutines.
type Provider interface {
	Session(ctx context.Context) (Session, error)
}

// Session is a short-lived unit of data access bound to one connection.
// It is NOT safe for concurrent use; every request gets its own.
// Close must be called on every exit path.
type Session interface {
	UserStore
	ProjectStore

	// Close releases the underlying connection back to the pool.
	Close() error
}

// UserStore is the users half of the session contract.
type UserStore interface {
	// CreateUser inserts a new user and returns the stored record,
	// including the auto-generated ID.
	CreateUser(ctx context.Context, user types.User) (types.User, error)

	// GetUserByID returns ErrUserNotFound if no row matches.
	GetUserByID(ctx context.Context, id int64) (types.User, error)

	// ListUsers returns an empty slice (not nil) if there are no users.
	ListUsers(ctx context.Context) ([]types.User, error)

	// UpdateUser replaces every field of an existing user.
	UpdateUser(ctx context.Context, id int64, user types.User) (types.User, error)

	// PatchUser changes only the non-nil fields of patch.
	PatchUser(ctx context.Context, id int64, patch types.UserPatch) (types.User, error)

	// DeleteUser removes a user and, by cascade, all projects they own.
	DeleteUser(ctx context.Context, id int64) error
}

// ProjectStore is the projects half of the session contract.
type ProjectStore interface {
	CreateProject(ctx context.Context, project types.Project) (types.Project, error)
	GetProjectByID(ctx context.Context, id int64) (types.Project, error)
	ListProjects(ctx context.Context) ([]types.Project, error)

	// ListProjectsByOwner returns ErrUserNotFound if the owner does not exist.
	ListProjectsByOwner(ctx context.Context, ownerID int64) ([]types.Project, error)

	UpdateProject(ctx context.Context, id int64, project types.Project) (types.Project, error)
	PatchProject(ctx context.Context, id int64, patch types.ProjectPatch) (types.Project, error)
	DeleteProject(ctx context.Context, id int64) error
}

// Common storage errors shared by every backend.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a write would violate a uniqueness rule.
	ErrDuplicate = errors.New("entity already exists")

	// ErrOwnerNotFound is returned when a project references a user that
	// does not exist.
	ErrOwnerNotFound = errors.New("owner does not exist")

	ErrUserNotFound    = fmt.Errorf("%w: user", ErrNotFound)
	ErrProjectNotFound = fmt.Errorf("%w: project", ErrNotFound)

	ErrEmailExists     = fmt.Errorf("%w: email", ErrDuplicate)
	ErrStudentIDExists = fmt.Errorf("%w: student_id", ErrDuplicate)
)

// IsNotFound reports whether err is any kind of "not found" error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsDuplicate reports whether err is any kind of uniqueness violation.
func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }
