// Package middleware provides HTTP middleware for the LivePaste API.
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/livepaste/livepaste/pkg/models"
)

// ValidateRoomID rejects requests whose {id} path parameter is not a
// well-formed room identifier. Malformed IDs get a 400 before any
// store access; they can never name a room.
func ValidateRoomID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !models.ValidRoomID(chi.URLParam(r, "id")) {
			writeProblem(w, http.StatusBadRequest, "Bad Request",
				"Room ID must be exactly 8 alphanumeric characters")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeProblem writes a minimal RFC 7807 problem response. The handlers
// package carries the full helper set; middleware keeps its own copy to
// avoid depending on handler code.
func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "about:blank",
		"title":  title,
		"status": status,
		"detail": detail,
	})
}
