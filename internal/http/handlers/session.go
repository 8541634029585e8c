// Package handlers holds what the resource handler packages (user,
// project) share: acquiring and releasing a storage session.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/campus-api/internal/logger"
	"github.com/aanand-mishra/campus-api/internal/storage"
	"github.com/aanand-mishra/campus-api/internal/utils/response"
)

// WithSession acquires a session from p, runs fn with it and releases it
// when fn returns, whether fn succeeded, failed or panicked. If no session
// can be acquired, a 500 is written and fn never runs.
func WithSession(w http.ResponseWriter, r *http.Request, p storage.Provider, fn func(sess storage.Session)) {
	sess, err := p.Session(r.Context())
	if err != nil {
		response.WriteStorageError(w, r, err)
		return
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.FromContext(r.Context()).Error("failed to release session",
				slog.String("error", err.Error()))
		}
	}()

	fn(sess)
}
