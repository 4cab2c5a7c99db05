package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/livepaste/livepaste/internal/logger"
	"github.com/livepaste/livepaste/pkg/metrics"
	"github.com/livepaste/livepaste/pkg/models"
	"github.com/livepaste/livepaste/pkg/store"
	syncpkg "github.com/livepaste/livepaste/pkg/sync"
)

// SyncHandler handles workspace synchronization: the chunked session
// protocol and the single-shot bulk variant.
type SyncHandler struct {
	store    store.Store
	sessions *syncpkg.Manager
	metrics  metrics.RoomMetrics
}

// NewSyncHandler creates a sync handler.
func NewSyncHandler(st store.Store, sessions *syncpkg.Manager, m metrics.RoomMetrics) *SyncHandler {
	return &SyncHandler{store: st, sessions: sessions, metrics: m}
}

// Begin handles POST /api/room/{id}/sync/begin.
func (h *SyncHandler) Begin(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	var req struct {
		ClientID    string `json:"client_id"`
		TotalChunks int    `json:"total_chunks"`
		TotalFiles  int    `json:"total_files"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.TotalChunks < 1 {
		BadRequest(w, "total_chunks must be at least 1")
		return
	}

	session := h.sessions.Begin(roomID, req.ClientID, req.TotalChunks, req.TotalFiles)
	h.trackSessions()

	writeJSONOK(w, map[string]any{
		"session_token": session.Token,
		"expires_in":    int(syncpkg.DefaultTTL.Seconds()),
	})
}

// Chunk handles POST /api/room/{id}/sync/chunk.
//
// Files land immediately in one transaction with a single room-version
// bump; the session only remembers progress. A retried chunk_index
// re-upserts its files but does not double-count.
func (h *SyncHandler) Chunk(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	var req struct {
		SessionToken string              `json:"session_token"`
		ChunkIndex   int                 `json:"chunk_index"`
		Files        []fileUpsertRequest `json:"files"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}

	// The session check precedes any write; a rejected chunk leaves no
	// trace in the store.
	if err := h.sessions.Peek(req.SessionToken, roomID); err != nil {
		BadRequest(w, "Sync session expired or unknown")
		return
	}

	upserts := make([]store.FileUpsert, 0, len(req.Files))
	pathHashes := make([]string, 0, len(req.Files))
	for i := range req.Files {
		upsert, problem := req.Files[i].validate()
		if problem != "" {
			BadRequest(w, problem)
			return
		}
		upserts = append(upserts, upsert)
		pathHashes = append(pathHashes, upsert.PathHash)
	}

	if len(upserts) > 0 {
		if _, err := h.store.UpsertFiles(r.Context(), roomID, upserts); err != nil {
			storeError(w, r, err, "Failed to store sync chunk")
			return
		}
		metrics.ObserveFilesUpserted(h.metrics, "sync", len(upserts))
	}

	received, remaining, err := h.sessions.RecordChunk(req.SessionToken, roomID, req.ChunkIndex, pathHashes)
	if err != nil {
		BadRequest(w, "Sync session expired or unknown")
		return
	}

	logger.DebugCtx(r.Context(), "Sync chunk stored",
		logger.KeyRoomID, roomID,
		logger.KeySessionID, req.SessionToken,
		logger.KeyChunkIndex, req.ChunkIndex,
		logger.KeyFiles, len(upserts),
		logger.KeyRemaining, remaining)

	writeJSONOK(w, map[string]any{
		"received_chunks":  received,
		"chunks_remaining": remaining,
	})
}

// Complete handles POST /api/room/{id}/sync/complete.
//
// Consumes the session and reconciles the room: every file whose path
// the session never saw is deleted and tombstoned at one new version.
func (h *SyncHandler) Complete(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	var req struct {
		SessionToken string `json:"session_token"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}

	session, err := h.sessions.Take(req.SessionToken, roomID)
	if err != nil {
		if errors.Is(err, models.ErrSessionExpired) {
			BadRequest(w, "Sync session expired or unknown")
			return
		}
		storeError(w, r, err, "Failed to complete sync")
		return
	}
	h.trackSessions()

	result, err := h.store.ReconcileRoom(r.Context(), roomID, session.PathHashes)
	if err != nil {
		storeError(w, r, err, "Failed to reconcile room")
		return
	}
	if n := len(result.DeletedPathHashes); n > 0 {
		metrics.ObserveFilesDeleted(h.metrics, "sync", n)
	}

	logger.InfoCtx(r.Context(), "Sync completed",
		logger.KeyRoomID, roomID,
		logger.KeySessionID, session.Token,
		logger.KeyFiles, len(session.PathHashes),
		logger.KeyDeleted, len(result.DeletedPathHashes),
		logger.KeyVersion, result.Version)

	h.writeSyncState(w, r, roomID, result)
}

// Bulk handles POST /api/room/{id}/sync, the single-shot sync.
func (h *SyncHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	var req struct {
		ClientID string              `json:"client_id"`
		Files    []fileUpsertRequest `json:"files"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}

	upserts := make([]store.FileUpsert, 0, len(req.Files))
	for i := range req.Files {
		upsert, problem := req.Files[i].validate()
		if problem != "" {
			BadRequest(w, problem)
			return
		}
		upserts = append(upserts, upsert)
	}

	result, err := h.store.SyncFiles(r.Context(), roomID, upserts)
	if err != nil {
		storeError(w, r, err, "Failed to sync room")
		return
	}
	metrics.ObserveFilesUpserted(h.metrics, "sync", len(upserts))
	if n := len(result.DeletedPathHashes); n > 0 {
		metrics.ObserveFilesDeleted(h.metrics, "sync", n)
	}

	logger.InfoCtx(r.Context(), "Bulk sync applied",
		logger.KeyRoomID, roomID,
		logger.KeyFiles, len(upserts),
		logger.KeyDeleted, len(result.DeletedPathHashes),
		logger.KeyVersion, result.Version)

	h.writeSyncState(w, r, roomID, result)
}

// writeSyncState responds with the full post-sync room state plus the
// deletions this reconciliation produced.
func (h *SyncHandler) writeSyncState(w http.ResponseWriter, r *http.Request, roomID string, result *store.SyncResult) {
	state, err := h.store.RoomState(r.Context(), roomID, store.StateQuery{})
	if err != nil {
		storeError(w, r, err, "Failed to read room state")
		return
	}

	deleted := result.DeletedPathHashes
	if deleted == nil {
		deleted = []string{}
	}
	writeJSONOK(w, stateResponse(state, deleted))
}

// trackSessions refreshes the live-session gauge.
func (h *SyncHandler) trackSessions() {
	if h.metrics != nil {
		h.metrics.SetSyncSessions(h.sessions.Len())
	}
}
