// Package app assembles the application: it wires the storage into the
// handlers, registers every route plus the cross-cutting error
// handlers, and returns a plain http.Handler.
//
// Construction is deferred behind New (the application-factory pattern)
// so main.go and the test suite build identical applications — tests
// drive the returned handler in-process with httptest, no listening
// socket required.
package app

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Chutiporn120846/todo-api/internal/config"
	"github.com/Chutiporn120846/todo-api/internal/http/handlers/todo"
	"github.com/Chutiporn120846/todo-api/internal/storage"
	"github.com/Chutiporn120846/todo-api/internal/utils/response"
)

// New builds the fully wired application handler.
//
// Route table:
//
//	GET    /                  → API metadata
//	GET    /api/health        → database connectivity check
//	POST   /api/todos         → create a todo
//	GET    /api/todos         → list all todos
//	GET    /api/todos/{id}    → get one todo
//	PUT    /api/todos/{id}    → update a todo (partial)
//	DELETE /api/todos/{id}    → delete a todo
//	(anything else)           → 404 JSON envelope
func New(cfg *config.Config, store storage.Storage, log *slog.Logger) http.Handler {
	router := http.NewServeMux()

	// "GET /{$}" matches the root path exactly; the bare "/" pattern
	// below catches everything no other route claims.
	router.HandleFunc("GET /{$}", todo.Root())
	router.HandleFunc("GET /api/health", todo.Health(store))

	router.HandleFunc("POST /api/todos", todo.New(store))
	router.HandleFunc("GET /api/todos", todo.GetList(store))
	router.HandleFunc("GET /api/todos/{id}", todo.GetByID(store))
	router.HandleFunc("PUT /api/todos/{id}", todo.Update(store))
	router.HandleFunc("DELETE /api/todos/{id}", todo.Delete(store))

	router.HandleFunc("/", notFound)

	return recoverer(cfg, log, router)
}

// notFound is the fallback for unmatched routes. It keeps the JSON
// error envelope instead of net/http's plain-text 404 page.
func notFound(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusNotFound,
		response.GeneralError(errors.New("endpoint not found")))
}

// recoverer converts an unhandled panic into a 500 JSON envelope so no
// raw stack trace ever reaches the client. In the test environment the
// panic propagates instead, keeping the real failure visible to the
// test runner.
func recoverer(cfg *config.Config, log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if cfg.Env == config.EnvTest {
					panic(rec)
				}

				log.Error("panic recovered",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
				)
				response.WriteJSON(w, http.StatusInternalServerError,
					response.GeneralError(errors.New("Internal server error")))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
