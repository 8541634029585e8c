// Package request decodes and validates incoming JSON bodies and path
// parameters, writing the error response itself when something is wrong.
package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/campus-api/internal/utils/response"
)

// ErrEmptyBody is returned by DecodeJSON when the body has no content.
var ErrEmptyBody = errors.New("request body is empty")

// ErrTrailingData is returned by DecodeJSON when the body continues past
// the first JSON value.
var ErrTrailingData = errors.New("request body must contain a single JSON value")

// ErrInvalidID is returned by PathID for non-numeric or non-positive ids.
var ErrInvalidID = errors.New("invalid id: must be a positive integer")

// validate is safe for concurrent use and caches struct metadata, so one
// instance is shared by every request.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name ("student_id"), not the Go name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON decodes the request body into v. The body must hold exactly
// one JSON value; anything but whitespace after it is ErrTrailingData.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}
	return nil
}

// Validate checks the validate:"..." tags on v.
func Validate(v any) error {
	return validate.Struct(v)
}

// Bind decodes and validates the body into v. On failure it writes the
// error response and returns false; the handler should just return.
//
//	400 Bad Request           empty body or malformed JSON
//	422 Unprocessable Entity  the JSON is well-formed but breaks a rule
func Bind(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := DecodeJSON(r, v); err != nil {
		_ = response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	if err := Validate(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			_ = response.WriteJSON(w, http.StatusUnprocessableEntity, response.ValidationError(verrs))
			return false
		}
		_ = response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
		return false
	}
	return true
}

// PathID parses the {id} URL parameter. It writes a 400 response and
// returns false when the id is not a positive integer.
func PathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		_ = response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(ErrInvalidID))
		return 0, false
	}
	return id, true
}
