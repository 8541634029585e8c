package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/aanand-mishra/campus-api/internal/storage"
	"github.com/aanand-mishra/campus-api/internal/types"
)

// All SQL is written out in full. Placeholders (?) are always used for
// values; the driver sends them separately from the statement, so user
// input is never interpreted as SQL.
const (
	sqlInsertUser = `
		INSERT INTO users (name, email, age, student_id)
		VALUES (?, ?, ?, ?)
		RETURNING id, name, email, age, student_id`

	sqlGetUserByID = `
		SELECT id, name, email, age, student_id
		FROM   users
		WHERE  id = ?
		LIMIT  1`

	sqlListUsers = `
		SELECT id, name, email, age, student_id
		FROM   users
		ORDER  BY id`

	sqlUpdateUser = `
		UPDATE users
		SET    name = ?, email = ?, age = ?, student_id = ?
		WHERE  id = ?
		RETURNING id, name, email, age, student_id`

	sqlDeleteUser = `DELETE FROM users WHERE id = ?`
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanUser keeps the column order in one place. It must match the
// SELECT / RETURNING lists above.
func scanUser(row scanner) (types.User, error) {
	var u types.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Age, &u.StudentID)
	return u, err
}

func (s *Session) CreateUser(ctx context.Context, user types.User) (types.User, error) {
	row := s.conn.QueryRowContext(ctx, sqlInsertUser,
		user.Name, user.Email, user.Age, user.StudentID)

	created, err := scanUser(row)
	if err != nil {
		return types.User{}, mapError("CreateUser", err, nil)
	}
	return created, nil
}

func (s *Session) GetUserByID(ctx context.Context, id int64) (types.User, error) {
	u, err := scanUser(s.conn.QueryRowContext(ctx, sqlGetUserByID, id))
	if err != nil {
		return types.User{}, mapError("GetUserByID", err, storage.ErrUserNotFound)
	}
	return u, nil
}

func (s *Session) ListUsers(ctx context.Context) ([]types.User, error) {
	rows, err := s.conn.QueryContext(ctx, sqlListUsers)
	if err != nil {
		return nil, mapError("ListUsers", err, nil)
	}
	defer rows.Close()

	// Empty (non-nil) so the JSON encoding is [] rather than null.
	users := make([]types.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ListUsers: scan row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListUsers: rows iteration: %w", err)
	}
	return users, nil
}

func (s *Session) UpdateUser(ctx context.Context, id int64, user types.User) (types.User, error) {
	row := s.conn.QueryRowContext(ctx, sqlUpdateUser,
		user.Name, user.Email, user.Age, user.StudentID, id)

	updated, err := scanUser(row)
	if err != nil {
		return types.User{}, mapError("UpdateUser", err, storage.ErrUserNotFound)
	}
	return updated, nil
}

// PatchUser builds the SET clause from the supplied fields only, so
// columns the client did not send are never written.
func (s *Session) PatchUser(ctx context.Context, id int64, patch types.UserPatch) (types.User, error) {
	if patch.Empty() {
		return s.GetUserByID(ctx, id)
	}

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *patch.Email)
	}
	if patch.Age != nil {
		sets = append(sets, "age = ?")
		args = append(args, *patch.Age)
	}
	if patch.StudentID != nil {
		sets = append(sets, "student_id = ?")
		args = append(args, *patch.StudentID)
	}
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE users
		SET    %s
		WHERE  id = ?
		RETURNING id, name, email, age, student_id`,
		strings.Join(sets, ", "))

	updated, err := scanUser(s.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		return types.User{}, mapError("PatchUser", err, storage.ErrUserNotFound)
	}
	return updated, nil
}

func (s *Session) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, sqlDeleteUser, id)
	if err != nil {
		return mapError("DeleteUser", err, nil)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteUser: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("DeleteUser: %w", storage.ErrUserNotFound)
	}
	return nil
}
