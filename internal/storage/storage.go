// Package storage defines the Storage interface — the contract any
// database backend must satisfy to work with this application.
//
// Handlers depend only on this interface, never on a concrete driver.
// Swapping the backend means implementing these methods and changing
// one line in main.go; testing a failure path means passing a mock.
package storage

import (
	"errors"

	"github.com/Chutiporn120846/todo-api/internal/types"
)

// ErrTodoNotFound is returned by lookups, updates, and deletes whose id
// matches no row. Handlers check it with errors.Is to map the failure
// to a 404 without inspecting error strings.
var ErrTodoNotFound = errors.New("todo not found")

// Storage is the database contract. Any concrete type implementing all
// of these methods satisfies the interface implicitly.
type Storage interface {
	// Ping verifies database connectivity with a trivial round-trip.
	// The health endpoint is its only caller.
	Ping() error

	// CreateTodo inserts a new todo with completed=false and both
	// timestamps set, and returns the stored record including its
	// store-assigned id.
	CreateTodo(title string, description string) (types.Todo, error)

	// GetTodos returns every todo in the database. An empty table
	// yields an empty slice, not nil.
	GetTodos() ([]types.Todo, error)

	// GetTodoByID fetches a single todo by primary key. Returns
	// ErrTodoNotFound when the id has no row.
	GetTodoByID(id int64) (types.Todo, error)

	// UpdateTodoByID applies the non-nil fields of upd to an existing
	// row, refreshes updated_at, and returns the updated record.
	// Returns ErrTodoNotFound when the id has no row.
	UpdateTodoByID(id int64, upd types.UpdateTodoRequest) (types.Todo, error)

	// DeleteTodoByID removes a todo permanently. Returns
	// ErrTodoNotFound when the id has no row.
	DeleteTodoByID(id int64) error
}
