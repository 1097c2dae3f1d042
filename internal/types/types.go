// Package types holds the shared data structures (models and request
// payloads) used across the application. Keeping them in one place
// prevents import cycles — handlers, storage, and response helpers can
// all import types without depending on each other.
package types

import "time"

// Todo is the sole domain entity: a titled task with a completion flag.
//
// The json tags define the complete wire representation — exactly these
// six keys appear in every serialized todo. The db tags map columns for
// sqlx scanning.
type Todo struct {
	ID          int64     `json:"id"          db:"id"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	Completed   bool      `json:"completed"   db:"completed"`
	CreatedAt   time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"  db:"updated_at"`
}

// CreateTodoRequest is the POST /api/todos payload.
//
// The validate:"required" tag (go-playground/validator) rejects a
// missing and an empty title alike; description is optional and
// defaults to the empty string.
type CreateTodoRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// UpdateTodoRequest is the PUT /api/todos/{id} payload.
//
// Every field is a pointer so that "absent" and "zero value" stay
// distinguishable: only non-nil fields are applied to the stored row.
// Decoding into *bool also keeps the completed flag strict — a JSON
// string or number fails decoding with an UnmarshalTypeError instead
// of being silently coerced.
type UpdateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}
