package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/campus-api/internal/storage"
)

// mapError translates driver errors into storage sentinels so handlers
// never need to know which database they are talking to.
//
// notFound is the sentinel to use for sql.ErrNoRows; it differs per table.
func mapError(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && notFound != nil {
		return fmt.Errorf("%s: %w", op, notFound)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			// The message names the column: "UNIQUE constraint failed: users.email"
			msg := sqliteErr.Error()
			switch {
			case strings.Contains(msg, "users.email"):
				return fmt.Errorf("%s: %w", op, storage.ErrEmailExists)
			case strings.Contains(msg, "users.student_id"):
				return fmt.Errorf("%s: %w", op, storage.ErrStudentIDExists)
			}
			return fmt.Errorf("%s: %w: %v", op, storage.ErrDuplicate, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%s: %w", op, storage.ErrOwnerNotFound)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
