package app_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chutiporn120846/todo-api/internal/app"
	"github.com/Chutiporn120846/todo-api/internal/config"
	"github.com/Chutiporn120846/todo-api/internal/storage/sqlite"
)

// newTestApp builds the application exactly the way main.go does, but
// against a throwaway SQLite file and a silent logger.
func newTestApp(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Env:         config.EnvTest,
		StoragePath: filepath.Join(t.TempDir(), "todos.db"),
	}

	store, err := sqlite.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return app.New(cfg, store, discardLogger())
}

// newMockedApp builds the application over a sqlmock-backed store so
// tests can inject database failures.
func newMockedApp(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := sqlite.NewWithDB(sqlx.NewDb(db, "sqlite3"))
	cfg := &config.Config{Env: config.EnvTest}

	return app.New(cfg, store, discardLogger()), mock
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// doJSON performs an in-process request with a JSON-encoded body.
func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// doRaw performs an in-process request with an exact body, for payloads
// that must not round-trip through json.Marshal (e.g. malformed JSON).
func doRaw(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out),
		"response body is not valid JSON: %s", rec.Body.String())
	return out
}

// createTodo creates a todo through the API and returns its id.
func createTodo(t *testing.T, h http.Handler, title string) int64 {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/todos", map[string]any{"title": title})
	require.Equal(t, http.StatusCreated, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]any)
	return int64(data["id"].(float64))
}

func TestRootEndpoint(t *testing.T) {
	h := newTestApp(t)

	rec := doJSON(t, h, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	assert.Contains(t, body, "message")
	assert.Equal(t, "1.0.0", body["version"])
	assert.Contains(t, body, "endpoints")
}

func TestUnmatchedRouteReturns404Envelope(t *testing.T) {
	h := newTestApp(t)

	rec := doJSON(t, h, http.MethodGet, "/nonexistent-endpoint", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body, "error")
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestApp(t)

	rec := doJSON(t, h, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])
}

func TestHealthEndpointDatabaseError(t *testing.T) {
	h, mock := newMockedApp(t)
	mock.ExpectPing().WillReturnError(errors.New("database connection failed"))

	rec := doJSON(t, h, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "disconnected", body["database"])
	assert.Contains(t, body, "error")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListTodosEmpty(t *testing.T) {
	h := newTestApp(t)

	rec := doJSON(t, h, http.MethodGet, "/api/todos", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, []any{}, body["data"])
}

func TestCreateTodo(t *testing.T) {
	h := newTestApp(t)

	rec := doJSON(t, h, http.MethodPost, "/api/todos", map[string]any{
		"title":       "Test Todo",
		"description": "A description",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "Test Todo", data["title"])
	assert.Equal(t, "A description", data["description"])
	assert.Equal(t, false, data["completed"])

	// The serialized record carries exactly the six contract fields.
	assert.Len(t, data, 6)
	for _, field := range []string{"id", "title", "description", "completed", "created_at", "updated_at"} {
		assert.Contains(t, data, field)
	}
}

func TestCreateTodoWithoutTitle(t *testing.T) {
	h := newTestApp(t)

	for name, payload := range map[string]map[string]any{
		"missing title": {},
		"empty title":   {"title": ""},
	} {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/todos", payload)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeBody(t, rec), "error")
		})
	}

	// No row was created by either attempt.
	rec := doJSON(t, h, http.MethodGet, "/api/todos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["count"])
}

func TestCreateTodoMalformedJSON(t *testing.T) {
	h := newTestApp(t)

	rec := doRaw(t, h, http.MethodPost, "/api/todos", `{"title": `)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "error")
}

func TestCreateTodoEmptyBody(t *testing.T) {
	h := newTestApp(t)

	rec := doRaw(t, h, http.MethodPost, "/api/todos", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "error")
}

func TestCreateTodoDatabaseError(t *testing.T) {
	h, mock := newMockedApp(t)
	mock.ExpectExec("INSERT INTO todos").WillReturnError(errors.New("commit failed"))

	rec := doJSON(t, h, http.MethodPost, "/api/todos", map[string]any{"title": "Test"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "error")

	require.NoError(t, mock.ExpectationsWereMet())
}

// TestTodoLifecycle walks the full create → read → update → delete →
// read round-trip; the final read must 404.
func TestTodoLifecycle(t *testing.T) {
	h := newTestApp(t)

	id := createTodo(t, h, "Integration Test")
	target := "/api/todos/" + itoa(id)

	rec := doJSON(t, h, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Integration Test", decodeBody(t, rec)["data"].(map[string]any)["title"])

	rec = doJSON(t, h, http.MethodPut, target, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["data"].(map[string]any)["completed"])

	rec = doJSON(t, h, http.MethodDelete, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])

	rec = doJSON(t, h, http.MethodGet, target, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTodoNotFound(t *testing.T) {
	h := newTestApp(t)

	rec := doJSON(t, h, http.MethodGet, "/api/todos/99999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body, "error")
}

func TestDeleteTodoNotFound(t *testing.T) {
	h := newTestApp(t)

	rec := doJSON(t, h, http.MethodDelete, "/api/todos/99999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body, "error")
}

func TestUpdateTodoNotFound(t *testing.T) {
	h := newTestApp(t)

	rec := doJSON(t, h, http.MethodPut, "/api/todos/99999", map[string]any{"title": "x"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "error")
}

func TestUpdateCompletedRejectsNonBoolean(t *testing.T) {
	h := newTestApp(t)
	id := createTodo(t, h, "Invalid update")
	target := "/api/todos/" + itoa(id)

	rec := doJSON(t, h, http.MethodPut, target, map[string]any{"completed": "not_bool"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Contains(t, body, "error")
	assert.Contains(t, body["error"], "completed")

	// The stored value is untouched.
	rec = doJSON(t, h, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["data"].(map[string]any)["completed"])
}

func TestUpdateTitleRejectsEmptyString(t *testing.T) {
	h := newTestApp(t)
	id := createTodo(t, h, "Keep my title")

	rec := doJSON(t, h, http.MethodPut, "/api/todos/"+itoa(id), map[string]any{"title": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "error")
}

func TestUpdatePartialFields(t *testing.T) {
	h := newTestApp(t)
	id := createTodo(t, h, "Original title")
	target := "/api/todos/" + itoa(id)

	rec := doJSON(t, h, http.MethodPut, target, map[string]any{"description": "added later"})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Original title", data["title"], "unsupplied field must not change")
	assert.Equal(t, "added later", data["description"])
	assert.Equal(t, false, data["completed"])
}

func TestInvalidIDParameter(t *testing.T) {
	h := newTestApp(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := doJSON(t, h, method, "/api/todos/abc", map[string]any{"title": "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%s /api/todos/abc", method)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
