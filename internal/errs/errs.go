// Package errs defines the typed error taxonomy shared across the coach
// pipeline and the retry policy applied to transient I/O failures.
//
// Every error carries a stable machine-readable code and an HTTP status so
// the server layer can map failures to responses without string matching.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable machine-readable error identifier.
type Code string

const (
	// CodeAuth identifies a missing or invalid session.
	CodeAuth Code = "AUTH_ERROR"
	// CodeValidation identifies malformed caller input.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeEmbedding identifies an embedding service failure or a malformed
	// embedding response.
	CodeEmbedding Code = "EMBEDDING_ERROR"
	// CodeChat identifies a chat-completion model failure.
	CodeChat Code = "OLLAMA_ERROR"
	// CodeDatabase identifies a backing store failure.
	CodeDatabase Code = "DATABASE_ERROR"
	// CodeUnknown identifies any error outside the taxonomy.
	CodeUnknown Code = "UNKNOWN_ERROR"
)

// Error is the common type for all coach errors. It wraps an optional cause
// so callers can use errors.Is / errors.As through the taxonomy.
type Error struct {
	// Code is the stable machine-readable identifier.
	Code Code
	// Status is the HTTP status the server layer should respond with.
	Status int
	// Message is the human-readable description.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.Cause }

// NewAuth constructs an authentication error (missing/invalid session).
func NewAuth(message string) *Error {
	if message == "" {
		message = "unauthorized"
	}
	return &Error{Code: CodeAuth, Status: http.StatusUnauthorized, Message: message}
}

// NewValidation constructs a malformed-input error.
func NewValidation(message string) *Error {
	return &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: message}
}

// NewEmbedding constructs an embedding-service error wrapping cause.
func NewEmbedding(message string, cause error) *Error {
	return &Error{Code: CodeEmbedding, Status: http.StatusServiceUnavailable, Message: message, Cause: cause}
}

// NewChat constructs a chat-model error wrapping cause.
func NewChat(message string, cause error) *Error {
	return &Error{Code: CodeChat, Status: http.StatusServiceUnavailable, Message: message, Cause: cause}
}

// NewDatabase constructs a backing-store error wrapping cause.
func NewDatabase(message string, cause error) *Error {
	return &Error{Code: CodeDatabase, Status: http.StatusInternalServerError, Message: message, Cause: cause}
}

// CodeOf returns the taxonomy code for err, or CodeUnknown when err is not
// a *Error (directly or through its wrap chain).
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// StatusOf returns the HTTP status for err, defaulting to 500 for errors
// outside the taxonomy.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
