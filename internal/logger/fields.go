package logger

import "log/slog"

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so room activity
// can be aggregated and queried by room, client, and version.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Room & Versioning
	// ========================================================================
	KeyRoomID      = "room_id"      // Eight-character room identifier
	KeyVersion     = "version"      // Room version counter
	KeyOpSeq       = "op_seq"       // Room operation sequence counter
	KeySeq         = "seq"          // Sequence assigned to a single operation
	KeyBaseVersion = "base_version" // File version a client edited against

	// ========================================================================
	// Files
	// ========================================================================
	KeyFileID      = "file_id"      // File row identifier
	KeyPathHash    = "path_hash"    // Client-side hash of the file path
	KeyFileVersion = "file_version" // Per-file version counter
	KeySizeBytes   = "size_bytes"   // Ciphertext size in bytes
	KeyFiles       = "files"        // Number of files in a batch
	KeyDeleted     = "deleted"      // Number of files deleted

	// ========================================================================
	// Sync Sessions
	// ========================================================================
	KeySessionID   = "session_id"  // Chunked upload session token
	KeyChunkIndex  = "chunk_index" // Index of an uploaded chunk
	KeyTotalChunks = "total_chunks"
	KeyReceived    = "received" // Chunks received so far
	KeyRemaining   = "remaining"

	// ========================================================================
	// Changesets
	// ========================================================================
	KeyChangesetID = "changeset_id"
	KeyChangeID    = "change_id"
	KeyChanges     = "changes" // Number of changes in a set
	KeyAccepted    = "accepted"

	// ========================================================================
	// Client Identification
	// ========================================================================
	KeyClientID  = "client_id"  // Editor session identifier
	KeyClientIP  = "client_ip"  // Client IP address
	KeyRequestID = "request_id" // HTTP request ID from middleware

	// ========================================================================
	// HTTP
	// ========================================================================
	KeyMethod = "method"
	KeyRoute  = "route"
	KeyStatus = "status" // HTTP status code

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyCount      = "count"       // Generic row or item count
	KeyLimit      = "limit"
	KeyOffset     = "offset"
	KeySince      = "since" // Version or sequence floor of a delta read

	// ========================================================================
	// Storage Backend
	// ========================================================================
	KeyDatabase = "database" // Backend type: sqlite, postgres
	KeyPath     = "path"     // Filesystem path (database file, config file)
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// RoomID returns a slog.Attr for the room identifier
func RoomID(id string) slog.Attr {
	return slog.String(KeyRoomID, id)
}

// Version returns a slog.Attr for a room version counter
func Version(v int64) slog.Attr {
	return slog.Int64(KeyVersion, v)
}

// OpSeq returns a slog.Attr for the room operation sequence
func OpSeq(seq int64) slog.Attr {
	return slog.Int64(KeyOpSeq, seq)
}

// PathHash returns a slog.Attr for a file path hash
func PathHash(hash string) slog.Attr {
	return slog.String(KeyPathHash, hash)
}

// ClientID returns a slog.Attr for an editor session identifier
func ClientID(id string) slog.Attr {
	return slog.String(KeyClientID, id)
}

// ClientIP returns a slog.Attr for the client IP address
func ClientIP(ip string) slog.Attr {
	return slog.String(KeyClientIP, ip)
}

// SessionID returns a slog.Attr for a sync session token
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// ChangesetID returns a slog.Attr for a changeset identifier
func ChangesetID(id string) slog.Attr {
	return slog.String(KeyChangesetID, id)
}

// DurationMs returns a slog.Attr for operation duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error message
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Count returns a slog.Attr for a generic count
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}
