package client

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is an error response from the server. Body holds the raw
// payload for callers that need more than title and detail.
type APIError struct {
	StatusCode       int
	Title            string
	Detail           string
	PasswordRequired bool
	Body             json.RawMessage
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.Title != "" && e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	case e.Detail != "":
		return e.Detail
	case e.Title != "":
		return e.Title
	default:
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
}

// IsNotFound reports whether the server returned 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether the server returned 401.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsConflict reports whether the server returned 409.
func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}
