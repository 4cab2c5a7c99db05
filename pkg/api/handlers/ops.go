package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/livepaste/livepaste/internal/logger"
	"github.com/livepaste/livepaste/pkg/metrics"
	"github.com/livepaste/livepaste/pkg/models"
	"github.com/livepaste/livepaste/pkg/store"
)

// OperationHandler handles the operation log: submission, fetch, and
// snapshot compaction.
type OperationHandler struct {
	store   store.Store
	metrics metrics.RoomMetrics
}

// NewOperationHandler creates an operation handler.
func NewOperationHandler(st store.Store, m metrics.RoomMetrics) *OperationHandler {
	return &OperationHandler{store: st, metrics: m}
}

// Submit handles POST /api/room/{id}/ops.
//
// A conflicting submission gets a 409 carrying the operations the
// submitter has not seen; rebasing is the client's job.
func (h *OperationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	var req struct {
		FilePathHash string `json:"file_path_hash"`
		OpEncrypted  string `json:"op_encrypted"`
		ClientID     string `json:"client_id"`
		BaseVersion  *int64 `json:"base_version"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.FilePathHash == "" {
		BadRequest(w, "file_path_hash is required")
		return
	}
	if req.OpEncrypted == "" {
		BadRequest(w, "op_encrypted is required")
		return
	}

	result, err := h.store.SubmitOperation(r.Context(), roomID, store.OperationSubmit{
		FilePathHash: req.FilePathHash,
		OpEncrypted:  req.OpEncrypted,
		ClientID:     req.ClientID,
		BaseVersion:  req.BaseVersion,
	})
	if err != nil {
		var conflict *models.OperationConflictError
		if errors.As(err, &conflict) {
			if h.metrics != nil {
				h.metrics.ObserveConflict()
			}
			logger.DebugCtx(r.Context(), "Operation rejected with conflict",
				logger.KeyRoomID, roomID,
				logger.KeyPathHash, req.FilePathHash,
				logger.KeyBaseVersion, conflict.BaseVersion,
				logger.KeyFileVersion, conflict.CurrentVersion,
				logger.KeyCount, len(conflict.ConflictingOps))
			writeJSON(w, http.StatusConflict, conflictResponse(conflict))
			return
		}
		storeError(w, r, err, "Failed to append operation")
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveOperation()
	}
	logger.DebugCtx(r.Context(), "Operation appended",
		logger.KeyRoomID, roomID,
		logger.KeyPathHash, req.FilePathHash,
		logger.KeySeq, result.Seq,
		logger.KeyFileVersion, result.CurrentVersion)

	writeJSONOK(w, map[string]any{
		"seq":             result.Seq,
		"current_version": result.CurrentVersion,
	})
}

// conflictResponse shapes a 409 body from the typed store error.
func conflictResponse(conflict *models.OperationConflictError) map[string]any {
	ops := make([]map[string]any, 0, len(conflict.ConflictingOps))
	for i := range conflict.ConflictingOps {
		op := &conflict.ConflictingOps[i]
		ops = append(ops, map[string]any{
			"seq":          op.Seq,
			"op_encrypted": op.OpEncrypted,
			"client_id":    op.ClientID,
		})
	}
	return map[string]any{
		"current_version": conflict.CurrentVersion,
		"base_version":    conflict.BaseVersion,
		"conflicting_ops": ops,
	}
}

// List handles GET /api/room/{id}/ops.
func (h *OperationHandler) List(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	ops, opSeq, hasMore, err := h.store.ListOperations(r.Context(), roomID,
		queryInt64(r, "since", 0),
		r.URL.Query().Get("file"),
		queryInt(r, "limit", 0))
	if err != nil {
		storeError(w, r, err, "Failed to list operations")
		return
	}

	if ops == nil {
		ops = []models.Operation{}
	}
	writeJSONOK(w, map[string]any{
		"operations": ops,
		"op_seq":     opSeq,
		"has_more":   hasMore,
	})
}

// Snapshot handles POST /api/room/{id}/files/{pathHash}/snapshot.
//
// The client materializes the post-operation body itself; the server
// stores it verbatim and purges the operations it covers.
func (h *OperationHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	pathHash := chi.URLParam(r, "pathHash")

	var req struct {
		ContentEncrypted string `json:"content_encrypted"`
		ThroughSeq       int64  `json:"through_seq"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.ThroughSeq < 0 {
		BadRequest(w, "through_seq must not be negative")
		return
	}

	file, roomVersion, purged, err := h.store.SnapshotFile(r.Context(), roomID, pathHash,
		req.ContentEncrypted, req.ThroughSeq)
	if err != nil {
		storeError(w, r, err, "Failed to snapshot file")
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveSnapshot(int(purged))
	}
	logger.DebugCtx(r.Context(), "File snapshot stored",
		logger.KeyRoomID, roomID,
		logger.KeyPathHash, pathHash,
		logger.KeySeq, req.ThroughSeq,
		logger.KeyVersion, roomVersion)

	writeJSONOK(w, map[string]any{
		"success":      true,
		"file":         file,
		"room_version": roomVersion,
	})
}
