package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/livepaste/livepaste/internal/logger"
	"github.com/livepaste/livepaste/pkg/metrics"
	"github.com/livepaste/livepaste/pkg/store"
)

// fileUpsertRequest is the wire shape of one file write. All text fields
// are ciphertext.
type fileUpsertRequest struct {
	PathHash         string  `json:"path_hash"`
	PathEncrypted    string  `json:"path_encrypted"`
	ContentEncrypted *string `json:"content_encrypted"`
	IsSyncable       *bool   `json:"is_syncable"`
	SizeBytes        int64   `json:"size_bytes"`
}

// validate checks the request and converts it to a store upsert.
// is_syncable defaults to true; a syncable file may not carry null
// content unless the store turns it into empty ciphertext.
func (req *fileUpsertRequest) validate() (store.FileUpsert, string) {
	if req.PathHash == "" {
		return store.FileUpsert{}, "path_hash is required"
	}

	syncable := true
	if req.IsSyncable != nil {
		syncable = *req.IsSyncable
	}

	return store.FileUpsert{
		PathHash:         req.PathHash,
		PathEncrypted:    req.PathEncrypted,
		ContentEncrypted: req.ContentEncrypted,
		IsSyncable:       syncable,
		SizeBytes:        req.SizeBytes,
	}, ""
}

// FileHandler handles single-file writes and deletes.
type FileHandler struct {
	store   store.Store
	metrics metrics.RoomMetrics
}

// NewFileHandler creates a file handler.
func NewFileHandler(st store.Store, m metrics.RoomMetrics) *FileHandler {
	return &FileHandler{store: st, metrics: m}
}

// Upsert handles POST /api/room/{id}/files.
func (h *FileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	var req fileUpsertRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	upsert, problem := req.validate()
	if problem != "" {
		BadRequest(w, problem)
		return
	}

	file, roomVersion, err := h.store.UpsertFile(r.Context(), roomID, upsert)
	if err != nil {
		storeError(w, r, err, "Failed to store file")
		return
	}

	metrics.ObserveFilesUpserted(h.metrics, "api", 1)
	logger.DebugCtx(r.Context(), "File stored",
		logger.KeyRoomID, roomID,
		logger.KeyPathHash, upsert.PathHash,
		logger.KeyFileVersion, file.Version,
		logger.KeyVersion, roomVersion)

	writeJSONOK(w, map[string]any{
		"success":      true,
		"version":      file.Version,
		"room_version": roomVersion,
		"file":         file,
	})
}

// Delete handles DELETE /api/room/{id}/files/{fileId}.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	fileID := chi.URLParam(r, "fileId")

	version, err := h.store.DeleteFile(r.Context(), roomID, fileID)
	if err != nil {
		storeError(w, r, err, "Failed to delete file")
		return
	}

	metrics.ObserveFilesDeleted(h.metrics, "api", 1)
	logger.DebugCtx(r.Context(), "File deleted",
		logger.KeyRoomID, roomID,
		logger.KeyFileID, fileID,
		logger.KeyVersion, version)

	writeJSONOK(w, map[string]any{
		"success": true,
		"version": version,
	})
}
