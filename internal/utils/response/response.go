// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
//
// Consistent response shapes also make life easier for API consumers:
// they always know what error responses look like.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/campus-api/internal/logger"
	"github.com/aanand-mishra/campus-api/internal/storage"
)

// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a user, a list, a project…).
// Error responses always look like:
//
//	{ "status": "error", "error": "field name is required" }
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Error  string `json:"error"`  // human-readable error detail
}

// Status string constants; use these instead of raw string literals so
// a typo is caught by the compiler rather than silently sending "eroor".
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError converts the validator's per-field errors into a
// single human-readable Response.
//
// Example output:
//
//	{ "status": "error", "error": "field name is required, field age must be at least 1" }
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a valid email address", e.Field()))
		case "min", "gte":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at least %s", e.Field(), e.Param()))
		case "max", "lte":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at most %s", e.Field(), e.Param()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}

// StatusFor maps storage errors to HTTP status codes. Unknown errors are
// internal errors; their text is never shown to the client.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, storage.ErrOwnerNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// safeMessage returns the client-facing text for a storage error.
func safeMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		return "user not found"
	case errors.Is(err, storage.ErrProjectNotFound):
		return "project not found"
	case errors.Is(err, storage.ErrEmailExists):
		return "email already exists"
	case errors.Is(err, storage.ErrStudentIDExists):
		return "student_id already exists"
	case errors.Is(err, storage.ErrDuplicate):
		return "resource already exists"
	case errors.Is(err, storage.ErrOwnerNotFound):
		return "owner_id does not reference an existing user"
	default:
		return "internal server error"
	}
}

// WriteStorageError logs err and writes the matching status and envelope.
// 5xx errors are logged at ERROR level, everything else at DEBUG.
func WriteStorageError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.FromContext(r.Context()).LogAttrs(r.Context(), level, "request failed",
		slog.Int("status", status),
		slog.String("error", err.Error()))

	_ = WriteJSON(w, status, Response{Status: StatusError, Error: safeMessage(err)})
}
