// Package todo contains the HTTP handlers for the Todo resource plus
// the root metadata and health endpoints.
//
// HANDLER PATTERN — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────
// The router expects handler functions with the signature
//
//	func(http.ResponseWriter, *http.Request)
//
// which has no room for extra parameters like a database. Each factory
// here accepts its dependencies (the storage interface) and returns a
// function with the exact signature the router needs. The inner
// function closes over the dependencies: the factory runs once at
// startup, the returned handler runs on every request.
package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/Chutiporn120846/todo-api/internal/storage"
	"github.com/Chutiporn120846/todo-api/internal/types"
	"github.com/Chutiporn120846/todo-api/internal/utils/response"
)

// APIVersion is reported by the root metadata endpoint.
const APIVersion = "1.0.0"

// parseID extracts and converts the {id} path segment. The named path
// parameter works because routes are registered with Go 1.22+ ServeMux
// patterns like "GET /api/todos/{id}".
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, errors.New("invalid id: must be an integer")
	}
	return id, nil
}

// writeStorageError maps a storage failure to its HTTP status:
// ErrTodoNotFound becomes 404, anything else is an infrastructure
// failure and becomes 500.
func writeStorageError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrTodoNotFound) {
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
		return
	}
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}

// Root handles GET /
// Returns a fixed metadata document naming the API, its version, and
// the available endpoints. No side effects, no failure modes.
func Root() http.HandlerFunc {
	// Built once at registration time; the handler only encodes it.
	metadata := map[string]any{
		"message": "Todo API",
		"version": APIVersion,
		"endpoints": map[string]string{
			"GET /api/health":        "health check",
			"GET /api/todos":         "list all todos",
			"POST /api/todos":        "create a todo",
			"GET /api/todos/{id}":    "get a todo by id",
			"PUT /api/todos/{id}":    "update a todo",
			"DELETE /api/todos/{id}": "delete a todo",
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, metadata)
	}
}

// Health handles GET /api/health
// Issues a trivial query against the store to confirm connectivity.
//
// Success response (200 OK):
//
//	{ "status": "healthy", "database": "connected" }
//
// Store failure (503 Service Unavailable):
//
//	{ "status": "unhealthy", "database": "disconnected", "error": "..." }
func Health(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "unhealthy",
				"database": "disconnected",
				"error":    err.Error(),
			})
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	}
}

// New handles POST /api/todos
// Creates a new todo from the JSON request body.
//
// Request body:
//
//	{ "title": "Buy milk", "description": "2 litres" }
//
// Success response (201 Created):
//
//	{ "success": true, "data": { "id": 1, "title": "Buy milk", ... } }
//
// Error responses:
//
//	400 Bad Request — empty body, malformed JSON, or missing/empty title
//	                  (no store access is attempted in these cases)
//	500 Internal    — database error
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a todo")

		var req types.CreateTodoRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// validate:"required" on Title rejects both a missing key and
		// an explicit empty string.
		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		todo, err := store.CreateTodo(req.Title, req.Description)
		if err != nil {
			slog.Error("error creating todo", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("todo created", slog.Int64("id", todo.ID))
		response.WriteJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"data":    todo,
		})
	}
}

// GetList handles GET /api/todos
// Returns every todo plus a count. No filtering or pagination
// parameters are recognised.
//
// Success response (200 OK) — an empty store is not an error:
//
//	{ "success": true, "count": 0, "data": [] }
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("listing todos")

		todos, err := store.GetTodos()
		if err != nil {
			slog.Error("error listing todos", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"count":   len(todos),
			"data":    todos,
		})
	}
}

// GetByID handles GET /api/todos/{id}
//
// Success response (200 OK):
//
//	{ "success": true, "data": { ... } }
//
// Error responses:
//
//	400 Bad Request — id is not a valid integer
//	404 Not Found   — no todo with that id
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		slog.Info("getting a todo", slog.Int64("id", id))

		todo, err := store.GetTodoByID(id)
		if err != nil {
			slog.Error("error getting todo",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    todo,
		})
	}
}

// Update handles PUT /api/todos/{id}
// Applies a partial update: any subset of title, description, and
// completed may be supplied, and only the supplied fields change.
//
// Request body (all fields optional):
//
//	{ "title": "...", "description": "...", "completed": true }
//
// Error responses:
//
//	400 Bad Request — invalid id, malformed body, a non-boolean
//	                  completed value, or an empty supplied title
//	404 Not Found   — no todo with that id
//	500 Internal    — database error
//
// A non-boolean completed is rejected, never coerced: the payload
// decodes into a *bool, so a string or number fails with an
// UnmarshalTypeError before any store access happens.
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		slog.Info("updating a todo", slog.Int64("id", id))

		var req types.UpdateTodoRequest
		err = json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			// Name the offending field when the value had the wrong
			// JSON type, e.g. "completed" carrying a string.
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) && typeErr.Field != "" {
				err = fmt.Errorf("field %s must be of type %s", typeErr.Field, typeErr.Type)
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// The non-empty-title invariant holds across mutation, not just
		// creation.
		if req.Title != nil && *req.Title == "" {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("field title must not be empty")))
			return
		}

		todo, err := store.UpdateTodoByID(id, req)
		if err != nil {
			slog.Error("error updating todo",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		slog.Info("todo updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    todo,
		})
	}
}

// Delete handles DELETE /api/todos/{id}
// Permanently removes a todo. A subsequent read of the same id returns
// 404.
//
// Success response (200 OK):
//
//	{ "success": true, "message": "Todo deleted successfully" }
//
// Error responses:
//
//	400 Bad Request — invalid id
//	404 Not Found   — no todo with that id
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		slog.Info("deleting a todo", slog.Int64("id", id))

		if err := store.DeleteTodoByID(id); err != nil {
			slog.Error("error deleting todo",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		slog.Info("todo deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Todo deleted successfully",
		})
	}
}
