// Package router wires every route to its handler.
//
// New is the application's only injection point: whatever
// storage.Provider it receives is what every handler talks to. The server
// passes the file-backed SQLite store; tests pass an ephemeral one.
package router

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aanand-mishra/campus-api/internal/http/handlers/project"
	"github.com/aanand-mishra/campus-api/internal/http/handlers/user"
	"github.com/aanand-mishra/campus-api/internal/http/middleware"
	"github.com/aanand-mishra/campus-api/internal/storage"
	"github.com/aanand-mishra/campus-api/internal/utils/response"
)

// New returns the HTTP handler for the whole API.
//
// Route table:
//
//	GET    /healthz                  → liveness probe
//	POST   /api/users                → create a user
//	GET    /api/users                → list users
//	GET    /api/users/{id}           → get one user
//	PUT    /api/users/{id}           → replace a user
//	PATCH  /api/users/{id}           → partially update a user
//	DELETE /api/users/{id}           → delete a user and their projects
//	GET    /api/users/{id}/projects  → list a user's projects
//	POST   /api/projects             → create a project
//	GET    /api/projects             → list projects
//	GET    /api/projects/{id}        → get one project
//	PUT    /api/projects/{id}        → replace a project
//	PATCH  /api/projects/{id}        → partially update a project
//	DELETE /api/projects/{id}        → delete a project
func New(provider storage.Provider, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		_ = response.WriteJSON(w, http.StatusNotFound,
			response.GeneralError(errors.New("route not found")))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		_ = response.WriteJSON(w, http.StatusMethodNotAllowed,
			response.GeneralError(errors.New("method not allowed")))
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK})
	})

	r.Post("/api/users", user.New(provider))
	r.Get("/api/users", user.GetList(provider))
	r.Get("/api/users/{id}", user.GetByID(provider))
	r.Put("/api/users/{id}", user.Update(provider))
	r.Patch("/api/users/{id}", user.Patch(provider))
	r.Delete("/api/users/{id}", user.Delete(provider))
	r.Get("/api/users/{id}/projects", user.Projects(provider))

	r.Post("/api/projects", project.New(provider))
	r.Get("/api/projects", project.GetList(provider))
	r.Get("/api/projects/{id}", project.GetByID(provider))
	r.Put("/api/projects/{id}", project.Update(provider))
	r.Patch("/api/projects/{id}", project.Patch(provider))
	r.Delete("/api/projects/{id}", project.Delete(provider))

	return r
}
