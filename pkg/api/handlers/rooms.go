package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/livepaste/livepaste/internal/logger"
	"github.com/livepaste/livepaste/pkg/api/auth"
	"github.com/livepaste/livepaste/pkg/metrics"
	"github.com/livepaste/livepaste/pkg/models"
	"github.com/livepaste/livepaste/pkg/store"
)

// RoomHandler handles room lifecycle, password, and delta-read endpoints.
type RoomHandler struct {
	store   store.Store
	tokens  *auth.RoomTokenService
	metrics metrics.RoomMetrics
}

// NewRoomHandler creates a room handler.
func NewRoomHandler(st store.Store, tokens *auth.RoomTokenService, m metrics.RoomMetrics) *RoomHandler {
	return &RoomHandler{store: st, tokens: tokens, metrics: m}
}

// Info handles GET /api/room/{id}/info.
//
// Public probe that never creates the room: the response is identical
// whether the row exists or not.
func (h *RoomHandler) Info(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	hasPassword := false
	room, err := h.store.GetRoom(r.Context(), roomID)
	switch {
	case err == nil:
		hasPassword = room.HasPassword()
	case errors.Is(err, models.ErrRoomNotFound):
		// Absent rooms report as open.
	default:
		storeError(w, r, err, "Failed to load room")
		return
	}

	writeJSONOK(w, map[string]any{
		"id":           roomID,
		"has_password": hasPassword,
	})
}

// VerifyPassword handles POST /api/room/{id}/verify-password.
//
// A correct digest (or an open room) yields success plus a short-lived
// room token the client may present instead of resending the digest.
func (h *RoomHandler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}

	room, err := h.store.GetRoom(r.Context(), roomID)
	if err != nil && !errors.Is(err, models.ErrRoomNotFound) {
		storeError(w, r, err, "Failed to load room")
		return
	}

	if room != nil && room.HasPassword() && !models.VerifyPassword(req.Password, room.PasswordHash) {
		writeJSONOK(w, map[string]any{"success": false})
		return
	}

	token, expiresIn, err := h.tokens.Mint(roomID)
	if err != nil {
		logger.ErrorCtx(r.Context(), "Failed to mint room token", logger.KeyError, err.Error())
		InternalServerError(w, "Failed to mint room token")
		return
	}

	writeJSONOK(w, map[string]any{
		"success":    true,
		"token":      token,
		"expires_in": expiresIn,
	})
}

// SetPassword handles POST /api/room/{id}/password.
//
// Setting the first password needs no prior secret. Changing or removing
// one requires the current digest in the body; an empty new password
// clears protection.
func (h *RoomHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	var req struct {
		Password        string `json:"password"`
		CurrentPassword string `json:"current_password"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}

	room, err := h.store.GetRoom(r.Context(), roomID)
	if err != nil && !errors.Is(err, models.ErrRoomNotFound) {
		storeError(w, r, err, "Failed to load room")
		return
	}

	if room != nil && room.HasPassword() {
		if !models.VerifyPassword(req.CurrentPassword, room.PasswordHash) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error":             "Current password required",
				"password_required": true,
			})
			return
		}
	}

	hash := ""
	if req.Password != "" {
		hash, err = models.HashPassword(req.Password)
		if err != nil {
			BadRequest(w, err.Error())
			return
		}
	}

	if err := h.store.SetRoomPassword(r.Context(), roomID, hash); err != nil {
		storeError(w, r, err, "Failed to set room password")
		return
	}

	logger.InfoCtx(r.Context(), "Room password updated",
		logger.KeyRoomID, roomID,
		"protected", hash != "")
	writeJSONOK(w, map[string]any{"success": true})
}

// State handles GET /api/room/{id}, the delta read.
func (h *RoomHandler) State(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	state, err := h.store.RoomState(r.Context(), roomID, store.StateQuery{
		Since:  queryInt64(r, "since", 0),
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	})
	if err != nil {
		storeError(w, r, err, "Failed to read room state")
		return
	}

	writeJSONOK(w, stateResponse(state, nil))
}

// Version handles GET /api/room/{id}/version, the cheap polling probe.
func (h *RoomHandler) Version(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	version, err := h.store.RoomVersion(r.Context(), roomID)
	if err != nil {
		storeError(w, r, err, "Failed to read room version")
		return
	}

	writeJSONOK(w, map[string]any{"version": version})
}

// Delete handles DELETE /api/room/{id}, the kill switch.
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	if err := h.store.DeleteRoom(r.Context(), roomID); err != nil {
		storeError(w, r, err, "Failed to delete room")
		return
	}

	metrics.ObserveRoomsDeleted(h.metrics, "kill_switch", 1)
	logger.InfoCtx(r.Context(), "Room deleted", logger.KeyRoomID, roomID)
	writeJSONOK(w, map[string]any{"success": true})
}

// stateResponse shapes a delta read for the wire. deletedOverride, when
// non-nil, replaces the tombstone list (sync completion reports the
// deletions it just produced rather than a since-filtered view).
func stateResponse(state *store.RoomState, deletedOverride []string) map[string]any {
	files := state.Files
	if files == nil {
		files = []models.File{}
	}
	deleted := state.DeletedPathHashes
	if deletedOverride != nil {
		deleted = deletedOverride
	}
	if deleted == nil {
		deleted = []string{}
	}
	changesets := state.Changesets
	if changesets == nil {
		changesets = []models.Changeset{}
	}

	return map[string]any{
		"version":             state.Version,
		"op_seq":              state.OpSeq,
		"files":               files,
		"deleted_path_hashes": deleted,
		"has_more":            state.HasMore,
		"changesets":          changesets,
	}
}
