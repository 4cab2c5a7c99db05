package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/livepaste/livepaste/internal/logger"
	"github.com/livepaste/livepaste/pkg/api/auth"
	"github.com/livepaste/livepaste/pkg/models"
	"github.com/livepaste/livepaste/pkg/store"
)

// PasswordHeader carries the client-side SHA-256 password digest.
const PasswordHeader = "X-Room-Password"

// RoomPassword gates protected room routes. Rooms without a password
// pass everyone through; password-protected rooms require either the
// password digest (header or query parameter) or a Bearer token minted
// for the room.
//
// Unknown rooms pass through unauthenticated: most protected routes
// create the room on first write, and a room that does not exist cannot
// have a password.
func RoomPassword(st store.Store, tokens *auth.RoomTokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roomID := chi.URLParam(r, "id")

			room, err := st.GetRoom(r.Context(), roomID)
			if err != nil {
				if errors.Is(err, models.ErrRoomNotFound) {
					next.ServeHTTP(w, r)
					return
				}
				writeProblem(w, http.StatusInternalServerError,
					"Internal Server Error", "Failed to load room")
				return
			}
			if !room.HasPassword() {
				next.ServeHTTP(w, r)
				return
			}

			if digest := passwordDigest(r); digest != "" {
				if models.VerifyPassword(digest, room.PasswordHash) {
					next.ServeHTTP(w, r)
					return
				}
			}

			if token, ok := bearerToken(r); ok {
				if err := tokens.Validate(token, roomID); err == nil {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.DebugCtx(r.Context(), "Rejected unauthenticated request to protected room",
				logger.KeyRoomID, roomID)
			writeUnauthorized(w)
		})
	}
}

// passwordDigest pulls the password digest from the header or, for
// clients that cannot set headers, the query string.
func passwordDigest(r *http.Request) string {
	if digest := r.Header.Get(PasswordHeader); digest != "" {
		return digest
	}
	return r.URL.Query().Get("password")
}

// bearerToken extracts the token from a Bearer Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// writeUnauthorized emits the 401 shape clients key their password
// prompt off of.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":             "Password required",
		"password_required": true,
	})
}
