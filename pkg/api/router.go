package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/livepaste/livepaste/internal/logger"
	"github.com/livepaste/livepaste/pkg/api/auth"
	"github.com/livepaste/livepaste/pkg/api/handlers"
	"github.com/livepaste/livepaste/pkg/api/middleware"
	"github.com/livepaste/livepaste/pkg/metrics"
	"github.com/livepaste/livepaste/pkg/models"
	"github.com/livepaste/livepaste/pkg/store"
	syncpkg "github.com/livepaste/livepaste/pkg/sync"
)

// requestTimeout bounds every request; long syncs arrive as chunks, so
// nothing legitimate runs longer.
const requestTimeout = 30 * time.Second

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Store    store.Store
	Sessions *syncpkg.Manager
	Tokens   *auth.RoomTokenService

	// HTTPMetrics and RoomMetrics may be nil (metrics disabled).
	HTTPMetrics metrics.HTTPMetrics
	RoomMetrics metrics.RoomMetrics

	// AssetPath locates the static client bundle; empty serves a
	// placeholder.
	AssetPath string

	// MaxBodyBytes caps request bodies; zero applies the middleware
	// default.
	MaxBodyBytes int64
}

// NewRouter creates and configures the chi router with all middleware
// and routes.
//
// Endpoint classes:
//   - public: root redirect, room page, /health, info, verify-password
//   - body-auth: password management (carries its own credential)
//   - protected: everything else room-scoped, behind the password gate
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))
	r.Use(middleware.BodyLimit(deps.MaxBodyBytes))
	r.Use(middleware.HTTPMetrics(deps.HTTPMetrics))

	static := handlers.NewStaticHandler(deps.AssetPath, models.NewRoomID)
	health := handlers.NewHealthHandler(deps.Store)
	rooms := handlers.NewRoomHandler(deps.Store, deps.Tokens, deps.RoomMetrics)
	files := handlers.NewFileHandler(deps.Store, deps.RoomMetrics)
	ops := handlers.NewOperationHandler(deps.Store, deps.RoomMetrics)
	syncs := handlers.NewSyncHandler(deps.Store, deps.Sessions, deps.RoomMetrics)
	changesets := handlers.NewChangesetHandler(deps.Store, deps.RoomMetrics)

	r.Get("/", static.Root)
	r.Get("/health", health.Health)

	r.Route("/room/{id}", func(r chi.Router) {
		r.Use(middleware.ValidateRoomID)
		r.Get("/", static.RoomPage)
	})

	r.Route("/api/room/{id}", func(r chi.Router) {
		r.Use(middleware.ValidateRoomID)

		// Public probes and the password endpoints.
		r.Get("/info", rooms.Info)
		r.Post("/verify-password", rooms.VerifyPassword)
		r.Post("/password", rooms.SetPassword)

		// Everything else sits behind the password gate.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RoomPassword(deps.Store, deps.Tokens))

			r.Get("/", rooms.State)
			r.Get("/version", rooms.Version)
			r.Delete("/", rooms.Delete)

			r.Post("/files", files.Upsert)
			r.Delete("/files/{fileId}", files.Delete)
			r.Post("/files/{pathHash}/snapshot", ops.Snapshot)

			r.Post("/sync", syncs.Bulk)
			r.Post("/sync/begin", syncs.Begin)
			r.Post("/sync/chunk", syncs.Chunk)
			r.Post("/sync/complete", syncs.Complete)

			r.Post("/ops", ops.Submit)
			r.Get("/ops", ops.List)

			r.Post("/changesets", changesets.Create)
			r.Post("/changesets/{cid}/accept", changesets.Accept)
			r.Post("/changesets/{cid}/reject", changesets.Reject)
			r.Post("/changes/{chid}/accept", changesets.AcceptChange)
			r.Post("/changes/{chid}/reject", changesets.RejectChange)
		})
	})

	return r
}

// requestLogger logs each request with structured fields. Health probes
// log at DEBUG so periodic checks don't flood the output.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			fields := []any{
				logger.KeyMethod, r.Method,
				logger.KeyRoute, r.URL.Path,
				logger.KeyStatus, ww.Status(),
				logger.KeyDurationMs, time.Since(start).Milliseconds(),
				logger.KeyClientIP, r.RemoteAddr,
			}
			if reqID := chimiddleware.GetReqID(r.Context()); reqID != "" {
				fields = append(fields, logger.KeyRequestID, reqID)
			}

			if isHealthPath(r.URL.Path) {
				logger.Debug("HTTP request", fields...)
			} else {
				logger.Info("HTTP request", fields...)
			}
		}()

		next.ServeHTTP(ww, r)
	})
}

// isHealthPath reports whether the path is a health probe.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}
