// Package response provides helpers for writing consistent JSON HTTP
// responses.
//
// Every handler sends JSON back to the client. Rather than repeating
// the same three lines (set header, set status, encode) everywhere,
// they are centralised here — and error responses always share one
// envelope shape, so API consumers always know what a failure looks
// like:
//
//	{ "success": false, "error": "field title is required" }
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the standard envelope for error cases. Success responses
// may carry any payload shape (a todo, a list with a count, a
// confirmation message); failures always carry success=false plus a
// human-readable error string.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WriteJSON writes data JSON-encoded with the given HTTP status code.
//
// Header() must be set before WriteHeader, and WriteHeader before the
// first body write — once the status line is out, headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Encode streams straight into w, no intermediate buffer.
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard failure envelope.
// Use it for not-found results, decode errors, and database failures.
func GeneralError(err error) Response {
	return Response{
		Success: false,
		Error:   err.Error(),
	}
}

// ValidationError converts go-playground/validator field errors into a
// single failure envelope. Each failing field becomes a plain English
// clause; the clauses are joined so the client sees one descriptive
// error string.
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", strings.ToLower(e.Field())))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", strings.ToLower(e.Field())))
		}
	}

	return Response{
		Success: false,
		Error:   strings.Join(errMessages, ", "),
	}
}
