// Package user contains all HTTP handlers related to the User resource.
//
// HANDLER PATTERN USED HERE: THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// The router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a database.
// Each exported function here is a factory: it accepts the
// storage.Provider once, at route registration, and returns the handler
// that runs on every request:
//
//	r.Post("/api/users", user.New(provider))
//
// Every handler acquires its own session and releases it before returning.
package user

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

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/users
//
// Request body (JSON):
//
//	{ "name": "Paul", "email": "pl@atu.ie", "age": 25, "student_id": "S1234567" }
//
// Success response (201 Created): the stored user, including its id:
//
//	{ "id": 1, "name": "Paul", "email": "pl@atu.ie", "age": 25, "student_id": "S1234567" }
//
// Error responses:
//
//	400 Bad Request    empty body or malformed JSON
//	409 Conflict       email or student_id already taken
//	422 Unprocessable  failed validation
//
// ─────────────────────────────────────────────────────────────────────────────
func New(provider storage.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		log.Info("creating a user")

		var user types.User
		if !request.Bind(w, r, &user) {
			return
		}

		handlers.WithSession(w, r, provider, func(sess storage.Session) {
			created, err := sess.CreateUser(r.Context(), user)
			if err != nil {
				response.WriteStorageError(w, r, err)
				return
			}

			log.Info("user created", slog.Int64("id", created.ID))
			_ = response.WriteJSON(w, http.StatusCreated, created)
		})
	}
}

// GetByID handles GET /api/users/{id}.
func GetByID(provider storage.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}

		handlers.WithSession(w, r, provider, func(sess storage.Session) {
			user, err := sess.GetUserByID(r.Context(), id)
			if err != nil {
				response.WriteStorageError(w, r, err)
				return
			}
			_ = response.WriteJSON(w, http.StatusOK, user)
		})
	}
}

// GetList handles GET /api/users. It returns [] (not null) when empty.
func GetList(provider storage.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlers.WithSession(w, r, provider, func(sess storage.Session) {
			users, err := sess.ListUsers(r.Context())
			if err != nil {
				response.WriteStorageError(w, r, err)
				return
			}
			_ = response.WriteJSON(w, http.StatusOK, users)
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/users/{id}
// Replaces ALL fields of an existing user; every field is required.
// Responds 200 with the stored user, or 404 if the id is unknown.
// ─────────────────────────────────────────────────────────────────────────────
func Update(provider storage.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context()).With(slog.Int64("id", id))
		log.Info("updating a user")

		var user types.User
		if !request.Bind(w, r, &user) {
			return
		}

		handlers.WithSession(w, r, provider, func(sess storage.Session) {
			updated, err := sess.UpdateUser(r.Context(), id, user)
			if err != nil {
				response.WriteStorageError(w, r, err)
				return
			}

			log.Info("user updated")
			_ = response.WriteJSON(w, http.StatusOK, updated)
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Patch handles PATCH /api/users/{id}
// Changes only the fields present in the body; the rest keep their values:
//
//	PATCH /api/users/3   { "age": 23 }
//
// An empty object is allowed and returns the user unchanged.
// ─────────────────────────────────────────────────────────────────────────────
func Patch(provider storage.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context()).With(slog.Int64("id", id))
		log.Info("patching a user")

		var patch types.UserPatch
		if !request.Bind(w, r, &patch) {
			return
		}

		handlers.WithSession(w, r, provider, func(sess storage.Session) {
			updated, err := sess.PatchUser(r.Context(), id, patch)
			if err != nil {
				response.WriteStorageError(w, r, err)
				return
			}

			log.Info("user patched")
			_ = response.WriteJSON(w, http.StatusOK, updated)
		})
	}
}

// Delete handles DELETE /api/users/{id}. The user's projects are removed
// with it. Responds 204 with no body.
func Delete(provider storage.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context()).With(slog.Int64("id", id))
		log.Info("deleting a user")

		handlers.WithSession(w, r, provider, func(sess storage.Session) {
			if err := sess.DeleteUser(r.Context(), id); err != nil {
				response.WriteStorageError(w, r, err)
				return
			}

			log.Info("user deleted")
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

// Projects handles GET /api/users/{id}/projects, listing the projects the
// user owns. An unknown user is a 404.
func Projects(provider storage.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}

		handlers.WithSession(w, r, provider, func(sess storage.Session) {
			projects, err := sess.ListProjectsByOwner(r.Context(), id)
			if err != nil {
				response.WriteStorageError(w, r, err)
				return
			}
			_ = response.WriteJSON(w, http.StatusOK, projects)
		})
	}
}
