package chat

import (
	"errors"
	"fmt"
)

// ErrNoBackendURL is returned when the client is built without a backend URL.
var ErrNoBackendURL = errors.New("chat: backend URL is required")

// ErrEmptyQuery is returned when a query has no text.
var ErrEmptyQuery = errors.New("chat: query text is empty")

// APIError represents an error response from the assistant backend.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("chat: backend error (status %d): %s", e.StatusCode, e.Message)
}

// IsServerError returns true for 5xx responses.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}
