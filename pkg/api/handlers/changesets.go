package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/livepaste/livepaste/internal/logger"
	"github.com/livepaste/livepaste/pkg/metrics"
	"github.com/livepaste/livepaste/pkg/models"
	"github.com/livepaste/livepaste/pkg/store"
)

// ChangesetHandler handles the proposed-change review workflow.
type ChangesetHandler struct {
	store   store.Store
	metrics metrics.RoomMetrics
}

// NewChangesetHandler creates a changeset handler.
func NewChangesetHandler(st store.Store, m metrics.RoomMetrics) *ChangesetHandler {
	return &ChangesetHandler{store: st, metrics: m}
}

// Create handles POST /api/room/{id}/changesets.
func (h *ChangesetHandler) Create(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	var req struct {
		AuthorEncrypted  string `json:"author_encrypted"`
		MessageEncrypted string `json:"message_encrypted"`
		Changes          []struct {
			FilePathHash        string  `json:"file_path_hash"`
			FilePathEncrypted   string  `json:"file_path_encrypted"`
			OldContentEncrypted *string `json:"old_content_encrypted"`
			NewContentEncrypted string  `json:"new_content_encrypted"`
			DiffEncrypted       string  `json:"diff_encrypted"`
		} `json:"changes"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if len(req.Changes) == 0 {
		BadRequest(w, "changeset requires at least one change")
		return
	}

	cs := &models.Changeset{
		AuthorEncrypted:  req.AuthorEncrypted,
		MessageEncrypted: req.MessageEncrypted,
		Changes:          make([]models.Change, 0, len(req.Changes)),
	}
	for _, c := range req.Changes {
		if c.FilePathHash == "" {
			BadRequest(w, "file_path_hash is required on every change")
			return
		}
		cs.Changes = append(cs.Changes, models.Change{
			FilePathHash:        c.FilePathHash,
			FilePathEncrypted:   c.FilePathEncrypted,
			OldContentEncrypted: c.OldContentEncrypted,
			NewContentEncrypted: c.NewContentEncrypted,
			DiffEncrypted:       c.DiffEncrypted,
		})
	}

	if err := h.store.CreateChangeset(r.Context(), roomID, cs); err != nil {
		storeError(w, r, err, "Failed to create changeset")
		return
	}

	logger.InfoCtx(r.Context(), "Changeset created",
		logger.KeyRoomID, roomID,
		logger.KeyChangesetID, cs.ID,
		logger.KeyChanges, len(cs.Changes))
	writeJSONOK(w, cs)
}

// Accept handles POST /api/room/{id}/changesets/{cid}/accept.
func (h *ChangesetHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.resolveChangeset(w, r, true)
}

// Reject handles POST /api/room/{id}/changesets/{cid}/reject.
func (h *ChangesetHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolveChangeset(w, r, false)
}

func (h *ChangesetHandler) resolveChangeset(w http.ResponseWriter, r *http.Request, accept bool) {
	roomID := chi.URLParam(r, "id")
	changesetID := chi.URLParam(r, "cid")

	cs, err := h.store.ResolveChangeset(r.Context(), roomID, changesetID, accept)
	if err != nil {
		storeError(w, r, err, "Failed to resolve changeset")
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveChangesetResolved(cs.Status.String())
	}
	if accept {
		applied := 0
		for i := range cs.Changes {
			if cs.Changes[i].Status == models.ChangeAccepted {
				applied++
			}
		}
		metrics.ObserveFilesUpserted(h.metrics, "changeset", applied)
	}
	logger.InfoCtx(r.Context(), "Changeset resolved",
		logger.KeyRoomID, roomID,
		logger.KeyChangesetID, changesetID,
		"status", cs.Status.String())
	writeJSONOK(w, cs)
}

// AcceptChange handles POST /api/room/{id}/changes/{chid}/accept.
func (h *ChangesetHandler) AcceptChange(w http.ResponseWriter, r *http.Request) {
	h.resolveChange(w, r, true)
}

// RejectChange handles POST /api/room/{id}/changes/{chid}/reject.
func (h *ChangesetHandler) RejectChange(w http.ResponseWriter, r *http.Request) {
	h.resolveChange(w, r, false)
}

func (h *ChangesetHandler) resolveChange(w http.ResponseWriter, r *http.Request, accept bool) {
	roomID := chi.URLParam(r, "id")
	changeID := chi.URLParam(r, "chid")

	change, err := h.store.ResolveChange(r.Context(), roomID, changeID, accept)
	if err != nil {
		storeError(w, r, err, "Failed to resolve change")
		return
	}

	if accept {
		metrics.ObserveFilesUpserted(h.metrics, "changeset", 1)
	}
	logger.InfoCtx(r.Context(), "Change resolved",
		logger.KeyRoomID, roomID,
		logger.KeyChangeID, changeID,
		"status", change.Status.String())
	writeJSONOK(w, change)
}
