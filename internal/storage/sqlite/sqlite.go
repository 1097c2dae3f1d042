// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using sqlx for row↔struct mapping and
// squirrel for statement building.
//
// SQLite stores everything in a single file on disk — no network, no
// separate server process, nothing to install beyond the driver. The
// blank import below registers the sqlite3 driver with database/sql as
// a side effect; nothing from the package is called directly.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/Chutiporn120846/todo-api/internal/config"
	"github.com/Chutiporn120846/todo-api/internal/storage"
	"github.com/Chutiporn120846/todo-api/internal/types"

	_ "github.com/mattn/go-sqlite3"
)

// schema is idempotent — safe to run on every startup.
const schema = `
	CREATE TABLE IF NOT EXISTS todos (
		id          INTEGER   PRIMARY KEY AUTOINCREMENT,
		title       TEXT      NOT NULL,
		description TEXT      NOT NULL DEFAULT '',
		completed   BOOLEAN   NOT NULL DEFAULT 0,
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	)`

// todoColumns is the canonical SELECT column order, matching the db
// tags on types.Todo.
var todoColumns = []string{"id", "title", "description", "completed", "created_at", "updated_at"}

// SQLite is the concrete implementation of storage.Storage. It holds a
// *sqlx.DB, which wraps database/sql's connection pool and is safe for
// concurrent use across request goroutines.
type SQLite struct {
	db *sqlx.DB
}

// New opens the SQLite database at cfg.StoragePath, creates the todos
// table if it does not already exist, and returns a ready-to-use store.
func New(cfg *config.Config) (*SQLite, error) {
	// sqlx.Open validates the driver name and DSN but defers the real
	// connection to the first query.
	db, err := sqlx.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// NewWithDB wraps an existing database handle without running the
// schema bootstrap. Tests use it to inject a sqlmock-backed connection
// and exercise failure paths that a healthy embedded database never
// produces.
func NewWithDB(db *sqlx.DB) *SQLite {
	return &SQLite{db: db}
}

// Ping issues the driver's trivial connectivity check.
func (s *SQLite) Ping() error {
	return s.db.Ping()
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateTodo inserts a new row with completed=false and both timestamps
// set to the same instant, then re-reads the row so the caller gets
// exactly what is stored.
func (s *SQLite) CreateTodo(title string, description string) (types.Todo, error) {
	now := time.Now().UTC()

	query, args, err := squirrel.
		Insert("todos").
		Columns("title", "description", "completed", "created_at", "updated_at").
		Values(title, description, false, now, now).
		ToSql()
	if err != nil {
		return types.Todo{}, fmt.Errorf("CreateTodo: build query: %w", err)
	}

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return types.Todo{}, fmt.Errorf("CreateTodo: exec: %w", err)
	}

	// LastInsertId is the auto-generated primary key of the new row.
	lastID, err := result.LastInsertId()
	if err != nil {
		return types.Todo{}, fmt.Errorf("CreateTodo: last insert id: %w", err)
	}

	return s.GetTodoByID(lastID)
}

// GetTodos returns all rows, oldest first. The slice is pre-allocated
// empty (non-nil) so an empty table serializes to [] rather than null.
func (s *SQLite) GetTodos() ([]types.Todo, error) {
	query, args, err := squirrel.
		Select(todoColumns...).
		From("todos").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("GetTodos: build query: %w", err)
	}

	todos := make([]types.Todo, 0)
	if err := s.db.Select(&todos, query, args...); err != nil {
		return nil, fmt.Errorf("GetTodos: select: %w", err)
	}

	return todos, nil
}

// GetTodoByID fetches exactly one row by primary key. sql.ErrNoRows is
// translated to the storage.ErrTodoNotFound sentinel so handlers can
// branch on it with errors.Is.
func (s *SQLite) GetTodoByID(id int64) (types.Todo, error) {
	query, args, err := squirrel.
		Select(todoColumns...).
		From("todos").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return types.Todo{}, fmt.Errorf("GetTodoByID: build query: %w", err)
	}

	var todo types.Todo
	if err := s.db.Get(&todo, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Todo{}, storage.ErrTodoNotFound
		}
		return types.Todo{}, fmt.Errorf("GetTodoByID: get: %w", err)
	}

	return todo, nil
}

// UpdateTodoByID applies the non-nil fields of upd to an existing row.
// squirrel assembles the SET clause from exactly the supplied fields,
// so an omitted field never touches its column. updated_at is always
// refreshed. A zero rows-affected count means the id matched nothing.
func (s *SQLite) UpdateTodoByID(id int64, upd types.UpdateTodoRequest) (types.Todo, error) {
	builder := squirrel.
		Update("todos").
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id})

	if upd.Title != nil {
		builder = builder.Set("title", *upd.Title)
	}
	if upd.Description != nil {
		builder = builder.Set("description", *upd.Description)
	}
	if upd.Completed != nil {
		builder = builder.Set("completed", *upd.Completed)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return types.Todo{}, fmt.Errorf("UpdateTodoByID: build query: %w", err)
	}

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return types.Todo{}, fmt.Errorf("UpdateTodoByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Todo{}, fmt.Errorf("UpdateTodoByID: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Todo{}, storage.ErrTodoNotFound
	}

	// Re-fetch so the caller echoes exactly what is stored.
	return s.GetTodoByID(id)
}

// DeleteTodoByID removes a row by primary key.
func (s *SQLite) DeleteTodoByID(id int64) error {
	query, args, err := squirrel.
		Delete("todos").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("DeleteTodoByID: build query: %w", err)
	}

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("DeleteTodoByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteTodoByID: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrTodoNotFound
	}

	return nil
}
