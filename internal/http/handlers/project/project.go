// Package project contains the HTTP handlers for the Project resource.
// They follow the same factory pattern as package user.
package project

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/campus-api/internal/http/handlers"
	"github.com/aanand-mishra/campus-api/internal/logger"
	"github.com/aanand-mishra/campus-api/internal/storage"
	"github.com/aanand-mishra/campus-api/internal/types"
	"github.com/aanand-mishra/campus-api/internal/utils/request"
	"github.com/aanand-mishra/campus-api/internal/utils/response"
)

// New handles POST /api/projects.
//
//	{ "name": "Project A", "description": "Description A", "owner_id": 1 }
//
// Responds 201 with the stored project. An owner_id that matches no user
// is rejected with 422.
func New(provider storage.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		log.Info("creating a project")

		var project types.Project
		if !request.Bind(w, r, &project) {
			return
		}

		handlers.WithSession(w, r, provider, func(sess storage.Session) {
			created, err := sess.CreateProject(r.Context(), project)
			if err != nil {
				response.WriteStorageError(w, r, err)
				return
			}

			log.Info("project created",
				slog.Int64("id", created.ID),
				slog.Int64("owner_id", created.OwnerID))
			_ = response.WriteJSON(w, http.StatusCreated, created)
		})
	}
}

// GetByID handles GET /api/projects/{id}.
func GetByID(provider storage.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}

		handlers.WithSession(w, r, provider, func(sess storage.Session) {
			project, err := sess.GetProjectByID(r.Context(), id)
			if err != nil {
				response.WriteStorageError(w, r, err)
				return
			}
			_ = response.WriteJSON(w, http.StatusOK, project)
		})
	}
}

// GetList handles GET /api/projects.
func GetList(provider storage.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlers.WithSession(w, r, provider, func(sess storage.Session) {
			projects, err := sess.ListProjects(r.Context())
			if err != nil {
				response.WriteStorageError(w, r, err)
				return
			}
			_ = response.WriteJSON(w, http.StatusOK, projects)
		})
	}
}

// Update handles PUT /api/projects/{id}; name, description and owner_id
// are all required.
func Update(provider storage.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context()).With(slog.Int64("id", id))
		log.Info("updating a project")

		var project types.Project
		if !request.Bind(w, r, &project) {
			return
		}

		handlers.WithSession(w, r, provider, func(sess storage.Session) {
			updated, err := sess.UpdateProject(r.Context(), id, project)
			if err != nil {
				response.WriteStorageError(w, r, err)
				return
			}

			log.Info("project updated")
			_ = response.WriteJSON(w, http.StatusOK, updated)
		})
	}
}

// Patch handles PATCH /api/projects/{id}.
func Patch(provider storage.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context()).With(slog.Int64("id", id))
		log.Info("patching a project")

		var patch types.ProjectPatch
		if !request.Bind(w, r, &patch) {
			return
		}

		handlers.WithSession(w, r, provider, func(sess storage.Session) {
			updated, err := sess.PatchProject(r.Context(), id, patch)
			if err != nil {
				response.WriteStorageError(w, r, err)
				return
			}

			log.Info("project patched")
			_ = response.WriteJSON(w, http.StatusOK, updated)
		})
	}
}

// Delete handles DELETE /api/projects/{id}.
func Delete(provider storage.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context()).With(slog.Int64("id", id))
		log.Info("deleting a project")

		handlers.WithSession(w, r, provider, func(sess storage.Session) {
			if err := sess.DeleteProject(r.Context(), id); err != nil {
				response.WriteStorageError(w, r, err)
				return
			}

			log.Info("project deleted")
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
