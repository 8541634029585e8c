package user_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/campus-api/internal/apitest"
)

func createUser(t *testing.T, c *apitest.Client, body map[string]any) int64 {
	t.Helper()
	r := c.Post("/api/users", body)
	require.Equal(t, http.StatusCreated, r.StatusCode, "create user: %s", r.Body)
	return r.ID()
}

func TestCreateUser(t *testing.T) {
	c := apitest.New(t)

	r := c.Post("/api/users", map[string]any{
		"name": "Paul", "email": "pl@atu.ie", "age": 25, "student_id": "S1234567",
	})
	require.Equal(t, http.StatusCreated, r.StatusCode)

	body := r.JSON()
	assert.NotZero(t, body["id"])
	assert.Equal(t, "Paul", body["name"])
	assert.Equal(t, "pl@atu.ie", body["email"])
	assert.Equal(t, float64(25), body["age"])
	assert.Equal(t, "S1234567", body["student_id"])
}

func TestPutUser(t *testing.T) {
	c := apitest.New(t)
	id := createUser(t, c, map[string]any{
		"name": "John", "email": "john@atu.ie", "age": 20, "student_id": "S1111111",
	})

	r := c.Put(apitest.Path("/api/users", id), map[string]any{
		"name": "John Updated", "email": "johnupdated@atu.ie", "age": 21, "student_id": "S2222222",
	})
	require.Equal(t, http.StatusOK, r.StatusCode)

	body := r.JSON()
	assert.Equal(t, "John Updated", body["name"])
	assert.Equal(t, float64(21), body["age"])
	assert.Equal(t, "johnupdated@atu.ie", body["email"])
	assert.Equal(t, "S2222222", body["student_id"])
	assert.Equal(t, float64(id), body["id"])
}

func TestPatchUser(t *testing.T) {
	c := apitest.New(t)
	id := createUser(t, c, map[string]any{
		"name": "Jane", "email": "jane@atu.ie", "age": 22, "student_id": "S3333333",
	})

	r := c.Patch(apitest.Path("/api/users", id), map[string]any{"age": 23})
	require.Equal(t, http.StatusOK, r.StatusCode)

	body := r.JSON()
	assert.Equal(t, float64(23), body["age"])
	assert.Equal(t, "Jane", body["name"])
	assert.Equal(t, "jane@atu.ie", body["email"])
	assert.Equal(t, "S3333333", body["student_id"])

	// The change is persisted, not just echoed.
	got := c.Get(apitest.Path("/api/users", id)).JSON()
	assert.Equal(t, float64(23), got["age"])
	assert.Equal(t, "Jane", got["name"])
}

func TestPatchUser_EmptyBodyObjectLeavesUserUnchanged(t *testing.T) {
	c := apitest.New(t)
	id := createUser(t, c, map[string]any{
		"name": "Jane", "email": "jane@atu.ie", "age": 22, "student_id": "S3333333",
	})

	r := c.Patch(apitest.Path("/api/users", id), map[string]any{})
	require.Equal(t, http.StatusOK, r.StatusCode)
	assert.Equal(t, "Jane", r.JSON()["name"])
}

func TestGetAndListUsers(t *testing.T) {
	c := apitest.New(t)

	r := c.Get("/api/users")
	require.Equal(t, http.StatusOK, r.StatusCode)
	assert.JSONEq(t, `[]`, string(r.Body))

	first := createUser(t, c, map[string]any{
		"name": "Bob", "email": "bob@atu.ie", "age": 25, "student_id": "S4444444",
	})
	createUser(t, c, map[string]any{
		"name": "Alice", "email": "alice@atu.ie", "age": 24, "student_id": "S5555555",
	})

	list := c.Get("/api/users").JSONList()
	require.Len(t, list, 2)
	assert.Equal(t, "Bob", list[0]["name"])
	assert.Equal(t, "Alice", list[1]["name"])

	r = c.Get(apitest.Path("/api/users", first))
	require.Equal(t, http.StatusOK, r.StatusCode)
	assert.Equal(t, "bob@atu.ie", r.JSON()["email"])
}

func TestDeleteUser(t *testing.T) {
	c := apitest.New(t)
	id := createUser(t, c, map[string]any{
		"name": "Bob", "email": "bob@atu.ie", "age": 25, "student_id": "S4444444",
	})

	r := c.Delete(apitest.Path("/api/users", id))
	require.Equal(t, http.StatusNoContent, r.StatusCode)
	assert.Empty(t, r.Body)

	assert.Equal(t, http.StatusNotFound, c.Get(apitest.Path("/api/users", id)).StatusCode)
	assert.Equal(t, http.StatusNotFound, c.Delete(apitest.Path("/api/users", id)).StatusCode)
}

func TestUserErrors(t *testing.T) {
	valid := map[string]any{
		"name": "Paul", "email": "pl@atu.ie", "age": 25, "student_id": "S1234567",
	}

	tests := []struct {
		name       string
		method     string
		path       string
		payload    any
		wantStatus int
		wantError  string
	}{
		{
			name:       "empty_body",
			method:     http.MethodPost,
			path:       "/api/users",
			wantStatus: http.StatusBadRequest,
			wantError:  "request body is empty",
		},
		{
			name:       "malformed_json",
			method:     http.MethodPost,
			path:       "/api/users",
			payload:    `{"name": "Paul",`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "trailing_data_on_create",
			method:     http.MethodPost,
			path:       "/api/users",
			payload:    `{"name":"Ann","email":"ann@atu.ie","age":30,"student_id":"S2"} {"junk":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "request body must contain a single JSON value",
		},
		{
			name:       "trailing_data_on_patch",
			method:     http.MethodPatch,
			path:       "/api/users/1",
			payload:    `{"age":23}garbage`,
			wantStatus: http.StatusBadRequest,
			wantError:  "request body must contain a single JSON value",
		},
		{
			name:       "wrong_type",
			method:     http.MethodPost,
			path:       "/api/users",
			payload:    `{"name": "Paul", "email": "pl@atu.ie", "age": "old", "student_id": "S1"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing_fields",
			method:     http.MethodPost,
			path:       "/api/users",
			payload:    map[string]any{"name": "Paul"},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "field email is required, field age is required, field student_id is required",
		},
		{
			name:       "invalid_email",
			method:     http.MethodPost,
			path:       "/api/users",
			payload:    map[string]any{"name": "Paul", "email": "nope", "age": 25, "student_id": "S1"},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "field email must be a valid email address",
		},
		{
			name:       "put_requires_every_field",
			method:     http.MethodPut,
			path:       "/api/users/1",
			payload:    map[string]any{"age": 30},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "patch_rejects_blank_name",
			method:     http.MethodPatch,
			path:       "/api/users/1",
			payload:    map[string]any{"name": ""},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "field name must be at least 1",
		},
		{
			name:       "non_numeric_id",
			method:     http.MethodGet,
			path:       "/api/users/abc",
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid id: must be a positive integer",
		},
		{
			name:       "unknown_id_get",
			method:     http.MethodGet,
			path:       "/api/users/999",
			wantStatus: http.StatusNotFound,
			wantError:  "user not found",
		},
		{
			name:       "unknown_id_put",
			method:     http.MethodPut,
			path:       "/api/users/999",
			payload:    valid,
			wantStatus: http.StatusNotFound,
			wantError:  "user not found",
		},
		{
			name:       "unknown_id_patch",
			method:     http.MethodPatch,
			path:       "/api/users/999",
			payload:    map[string]any{"age": 30},
			wantStatus: http.StatusNotFound,
			wantError:  "user not found",
		},
		{
			name:       "unknown_id_projects",
			method:     http.MethodGet,
			path:       "/api/users/999/projects",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := apitest.New(t)
			createUser(t, c, valid)

			r := c.Do(tt.method, tt.path, tt.payload)
			require.Equal(t, tt.wantStatus, r.StatusCode, "body: %s", r.Body)

			body := r.JSON()
			assert.Equal(t, "error", body["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
			assert.Zero(t, c.Store.OpenSessions())
		})
	}
}

func TestUserTrailingDataIsNotApplied(t *testing.T) {
	c := apitest.New(t)
	id := createUser(t, c, map[string]any{
		"name": "Paul", "email": "pl@atu.ie", "age": 25, "student_id": "S1234567",
	})

	r := c.Post("/api/users", `{"name":"Ann","email":"ann@atu.ie","age":30,"student_id":"S2"} {"junk":`)
	require.Equal(t, http.StatusBadRequest, r.StatusCode)

	r = c.Patch(apitest.Path("/api/users", id), `{"age":23}garbage`)
	require.Equal(t, http.StatusBadRequest, r.StatusCode)

	users := c.Get("/api/users").JSONList()
	require.Len(t, users, 1)
	assert.Equal(t, float64(25), users[0]["age"])
}

func TestUserUniqueness(t *testing.T) {
	c := apitest.New(t)
	createUser(t, c, map[string]any{
		"name": "Paul", "email": "pl@atu.ie", "age": 25, "student_id": "S1234567",
	})
	other := createUser(t, c, map[string]any{
		"name": "Ann", "email": "ann@atu.ie", "age": 30, "student_id": "S7654321",
	})

	r := c.Post("/api/users", map[string]any{
		"name": "Paul 2", "email": "pl@atu.ie", "age": 26, "student_id": "S0000001",
	})
	require.Equal(t, http.StatusConflict, r.StatusCode)
	assert.Equal(t, "email already exists", r.JSON()["error"])

	r = c.Patch(apitest.Path("/api/users", other), map[string]any{"student_id": "S1234567"})
	require.Equal(t, http.StatusConflict, r.StatusCode)
	assert.Equal(t, "student_id already exists", r.JSON()["error"])
}
