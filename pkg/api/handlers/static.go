package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/livepaste/livepaste/internal/logger"
)

// placeholderPage is served when no client asset bundle is configured.
// The real editor bundle is built and deployed separately.
const placeholderPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>LivePaste</title>
</head>
<body>
<h1>LivePaste</h1>
<p>No client bundle is configured on this server. Point
<code>server.asset_path</code> at a built client to serve the editor.</p>
</body>
</html>
`

// StaticHandler serves the root redirect and the client asset.
type StaticHandler struct {
	assetPath string
	newRoomID func() (string, error)
}

// NewStaticHandler creates a static handler. assetPath may be empty, in
// which case room pages get a built-in placeholder.
func NewStaticHandler(assetPath string, newRoomID func() (string, error)) *StaticHandler {
	return &StaticHandler{assetPath: assetPath, newRoomID: newRoomID}
}

// Root handles GET / with a redirect into a fresh room. The room row is
// not created; rooms come into being on first write.
func (h *StaticHandler) Root(w http.ResponseWriter, r *http.Request) {
	id, err := h.newRoomID()
	if err != nil {
		logger.ErrorCtx(r.Context(), "Failed to generate room ID", logger.KeyError, err.Error())
		InternalServerError(w, "Failed to generate room ID")
		return
	}
	http.Redirect(w, r, "/room/"+id, http.StatusFound)
}

// RoomPage handles GET /room/{id}, serving the client bundle. Every room
// gets the same asset; the ID only matters to the client-side code.
func (h *StaticHandler) RoomPage(w http.ResponseWriter, r *http.Request) {
	if h.assetPath != "" {
		index := filepath.Join(h.assetPath, "index.html")
		if _, err := os.Stat(index); err == nil {
			http.ServeFile(w, r, index)
			return
		}
		logger.Warn("Configured asset path has no index.html", logger.KeyPath, h.assetPath)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(placeholderPage))
}
