// Package apitest drives the API in-process, without a network, against an
// ephemeral store that lives for exactly one test.
//
//	func TestCreateUser(t *testing.T) {
//		c := apitest.New(t)
//		r := c.Post("/api/users", map[string]any{"name": "Paul", ...})
//		require.Equal(t, http.StatusCreated, r.StatusCode)
//	}
//
// Calls are synchronous: each one runs the full handler chain and returns
// once the response has been written. Application errors come back as
// ordinary non-2xx responses; only client-side problems (a payload that
// cannot be marshalled, a body that is not JSON when JSON is asked for)
// fail the test.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/campus-api/internal/http/router"
	"github.com/aanand-mishra/campus-api/internal/storage/ephemeral"
	"github.com/aanand-mishra/campus-api/internal/testutils"
)

// Client sends requests straight to an http.Handler.
type Client struct {
	t       testing.TB
	handler http.Handler

	// Store is the ephemeral store behind the handler, when the client was
	// built with New. It is nil for clients built with NewClient.
	Store *ephemeral.Store
}

// New provisions an ephemeral store, builds the router on top of it and
// returns a client for it. Everything is torn down when t finishes.
func New(t testing.TB) *Client {
	t.Helper()

	store := ephemeral.New(t)
	c := NewClient(t, router.New(store, testutils.Logger(t)))
	c.Store = store
	return c
}

// NewClient returns a client for any handler.
func NewClient(t testing.TB, handler http.Handler) *Client {
	return &Client{t: t, handler: handler}
}

// Response is the recorded outcome of one call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	t testing.TB
}

func (c *Client) Get(path string) *Response {
	c.t.Helper()
	return c.Do(http.MethodGet, path, nil)
}

func (c *Client) Post(path string, payload any) *Response {
	c.t.Helper()
	return c.Do(http.MethodPost, path, payload)
}

func (c *Client) Put(path string, payload any) *Response {
	c.t.Helper()
	return c.Do(http.MethodPut, path, payload)
}

func (c *Client) Patch(path string, payload any) *Response {
	c.t.Helper()
	return c.Do(http.MethodPatch, path, payload)
}

func (c *Client) Delete(path string) *Response {
	c.t.Helper()
	return c.Do(http.MethodDelete, path, nil)
}

// Do sends one request. A nil payload sends no body; a []byte or string
// payload is sent verbatim; anything else is JSON-encoded.
func (c *Client) Do(method, path string, payload any) *Response {
	c.t.Helper()

	var body io.Reader
	switch p := payload.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(p)
	case string:
		body = bytes.NewBufferString(p)
	default:
		raw, err := json.Marshal(p)
		require.NoError(c.t, err, "marshal %s %s payload", method, path)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(c.t, err, "read %s %s response", method, path)

	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: raw, t: c.t}
}

// JSON decodes the body as a JSON object.
func (r *Response) JSON() map[string]any {
	r.t.Helper()
	var m map[string]any
	require.NoError(r.t, json.Unmarshal(r.Body, &m), "response body is not a JSON object: %s", r.Body)
	return m
}

// JSONList decodes the body as a JSON array of objects.
func (r *Response) JSONList() []map[string]any {
	r.t.Helper()
	var list []map[string]any
	require.NoError(r.t, json.Unmarshal(r.Body, &list), "response body is not a JSON array: %s", r.Body)
	return list
}

// ID returns the "id" field of a JSON object body.
func (r *Response) ID() int64 {
	r.t.Helper()
	id, ok := r.JSON()["id"].(float64)
	require.True(r.t, ok, "response has no numeric id: %s", r.Body)
	return int64(id)
}

// Path joins a collection path and an id: Path("/api/users", 3) is
// "/api/users/3".
func Path(collection string, id int64) string {
	return fmt.Sprintf("%s/%d", collection, id)
}
