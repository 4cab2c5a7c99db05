package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/livepaste/livepaste/internal/logger"
	"github.com/livepaste/livepaste/pkg/models"
)

// decodeJSONBody decodes a JSON request body into the provided pointer.
// Returns true if successful, false if decoding fails (error response is
// written automatically).
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteProblem(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
				fmt.Sprintf("Request body exceeds %d bytes", maxBytesErr.Limit))
			return false
		}
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// queryInt64 parses an int64 query parameter, returning def when absent
// or malformed. Negative values fall back to def as well; every numeric
// query parameter in this API is a count or a version floor.
func queryInt64(r *http.Request, name string, def int64) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}

// queryInt parses an int query parameter with the same fallback rules.
func queryInt(r *http.Request, name string, def int) int {
	return int(queryInt64(r, name, int64(def)))
}

// storeError maps store-layer sentinel errors onto HTTP responses for
// the cases shared across handlers; anything unrecognized is a 500.
func storeError(w http.ResponseWriter, r *http.Request, err error, detail string) {
	switch {
	case errors.Is(err, models.ErrRoomNotFound):
		NotFound(w, "Room not found")
	case errors.Is(err, models.ErrFileNotFound):
		NotFound(w, "File not found")
	case errors.Is(err, models.ErrChangesetNotFound):
		NotFound(w, "Changeset not found")
	case errors.Is(err, models.ErrChangeNotFound):
		NotFound(w, "Change not found")
	case errors.Is(err, models.ErrChangesetResolved):
		BadRequest(w, "Changeset already resolved")
	case errors.Is(err, models.ErrChangeResolved):
		BadRequest(w, "Change already resolved")
	default:
		logger.ErrorCtx(r.Context(), detail, logger.KeyError, err.Error())
		InternalServerError(w, detail)
	}
}
