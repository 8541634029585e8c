package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aanand-mishra/campus-api/internal/storage"
	"github.com/aanand-mishra/campus-api/internal/types"
)

const (
	sqlInsertProject = `
		INSERT INTO projects (name, description, owner_id)
		VALUES (?, ?, ?)
		RETURNING id, name, description, owner_id`

	sqlGetProjectByID = `
		SELECT id, name, description, owner_id
		FROM   projects
		WHERE  id = ?
		LIMIT  1`

	sqlListProjects = `
		SELECT id, name, description, owner_id
		FROM   projects
		ORDER  BY id`

	sqlListProjectsByOwner = `
		SELECT id, name, description, owner_id
		FROM   projects
		WHERE  owner_id = ?
		ORDER  BY id`

	sqlUpdateProject = `
		UPDATE projects
		SET    name = ?, description = ?, owner_id = ?
		WHERE  id = ?
		RETURNING id, name, description, owner_id`

	sqlDeleteProject = `DELETE FROM projects WHERE id = ?`
)

func scanProject(row scanner) (types.Project, error) {
	var p types.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID)
	return p, err
}

func (s *Session) CreateProject(ctx context.Context, project types.Project) (types.Project, error) {
	row := s.conn.QueryRowContext(ctx, sqlInsertProject,
		project.Name, project.Description, project.OwnerID)

	created, err := scanProject(row)
	if err != nil {
		return types.Project{}, mapError("CreateProject", err, nil)
	}
	return created, nil
}

func (s *Session) GetProjectByID(ctx context.Context, id int64) (types.Project, error) {
	p, err := scanProject(s.conn.QueryRowContext(ctx, sqlGetProjectByID, id))
	if err != nil {
		return types.Project{}, mapError("GetProjectByID", err, storage.ErrProjectNotFound)
	}
	return p, nil
}

func (s *Session) ListProjects(ctx context.Context) ([]types.Project, error) {
	rows, err := s.conn.QueryContext(ctx, sqlListProjects)
	if err != nil {
		return nil, mapError("ListProjects", err, nil)
	}
	return collectProjects("ListProjects", rows)
}

func (s *Session) ListProjectsByOwner(ctx context.Context, ownerID int64) ([]types.Project, error) {
	// An unknown owner is a 404, not an empty list.
	if _, err := s.GetUserByID(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("ListProjectsByOwner: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, sqlListProjectsByOwner, ownerID)
	if err != nil {
		return nil, mapError("ListProjectsByOwner", err, nil)
	}
	return collectProjects("ListProjectsByOwner", rows)
}

func collectProjects(op string, rows *sql.Rows) ([]types.Project, error) {
	defer rows.Close()

	projects := make([]types.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration: %w", op, err)
	}
	return projects, nil
}

func (s *Session) UpdateProject(ctx context.Context, id int64, project types.Project) (types.Project, error) {
	row := s.conn.QueryRowContext(ctx, sqlUpdateProject,
		project.Name, project.Description, project.OwnerID, id)

	updated, err := scanProject(row)
	if err != nil {
		return types.Project{}, mapError("UpdateProject", err, storage.ErrProjectNotFound)
	}
	return updated, nil
}

func (s *Session) PatchProject(ctx context.Context, id int64, patch types.ProjectPatch) (types.Project, error) {
	if patch.Empty() {
		return s.GetProjectByID(ctx, id)
	}

	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.OwnerID != nil {
		sets = append(sets, "owner_id = ?")
		args = append(args, *patch.OwnerID)
	}
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE projects
		SET    %s
		WHERE  id = ?
		RETURNING id, name, description, owner_id`,
		strings.Join(sets, ", "))

	updated, err := scanProject(s.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		return types.Project{}, mapError("PatchProject", err, storage.ErrProjectNotFound)
	}
	return updated, nil
}

func (s *Session) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, sqlDeleteProject, id)
	if err != nil {
		return mapError("DeleteProject", err, nil)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteProject: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("DeleteProject: %w", storage.ErrProjectNotFound)
	}
	return nil
}
