package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for room operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"
	AttrClientID   = "client.id"

	// ========================================================================
	// Room attributes
	// ========================================================================
	AttrRoomID      = "room.id"
	AttrRoomVersion = "room.version"
	AttrRoomOpSeq   = "room.op_seq"

	// ========================================================================
	// File attributes
	// ========================================================================
	AttrPathHash    = "file.path_hash"
	AttrFileVersion = "file.version"
	AttrFileSize    = "file.size_bytes"
	AttrFileCount   = "file.count"

	// ========================================================================
	// Operation log attributes
	// ========================================================================
	AttrOpSeq       = "op.seq"
	AttrBaseVersion = "op.base_version"
	AttrThroughSeq  = "op.through_seq"
	AttrOpsPurged   = "op.purged"

	// ========================================================================
	// Sync session attributes
	// ========================================================================
	AttrSyncChunks     = "sync.total_chunks"
	AttrSyncChunkIndex = "sync.chunk_index"
	AttrSyncDeleted    = "sync.deleted_count"

	// ========================================================================
	// Changeset attributes
	// ========================================================================
	AttrChangesetID = "changeset.id"
	AttrChangeID    = "change.id"
	AttrChangeCount = "changeset.change_count"

	// ========================================================================
	// Retention attributes
	// ========================================================================
	AttrSweptRooms = "retention.swept_rooms"

	// ========================================================================
	// Storage attributes
	// ========================================================================
	AttrStoreType = "store.type"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	// ========================================================================
	// Room lifecycle spans
	// ========================================================================
	SpanRoomInfo     = "room.info"
	SpanRoomState    = "room.state"
	SpanRoomVersion  = "room.version"
	SpanRoomPassword = "room.password"
	SpanRoomDelete   = "room.delete"

	// ========================================================================
	// File spans
	// ========================================================================
	SpanFileUpsert = "file.upsert"
	SpanFileDelete = "file.delete"

	// ========================================================================
	// Operation log spans
	// ========================================================================
	SpanOpSubmit     = "op.submit"
	SpanOpList       = "op.list"
	SpanFileSnapshot = "file.snapshot"

	// ========================================================================
	// Sync spans
	// ========================================================================
	SpanSyncBegin    = "sync.begin"
	SpanSyncChunk    = "sync.chunk"
	SpanSyncComplete = "sync.complete"
	SpanSyncBulk     = "sync.bulk"

	// ========================================================================
	// Changeset spans
	// ========================================================================
	SpanChangesetCreate  = "changeset.create"
	SpanChangesetResolve = "changeset.resolve"
	SpanChangeResolve    = "change.resolve"

	// ========================================================================
	// Background spans
	// ========================================================================
	SpanRetentionSweep = "retention.sweep"
	SpanSessionSweep   = "sync.session_sweep"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// ClientID returns an attribute for the submitting client identifier
func ClientID(id string) attribute.KeyValue {
	return attribute.String(AttrClientID, id)
}

// RoomID returns an attribute for room identifier
func RoomID(id string) attribute.KeyValue {
	return attribute.String(AttrRoomID, id)
}

// RoomVersion returns an attribute for room version
func RoomVersion(version int64) attribute.KeyValue {
	return attribute.Int64(AttrRoomVersion, version)
}

// RoomOpSeq returns an attribute for the room operation counter
func RoomOpSeq(seq int64) attribute.KeyValue {
	return attribute.Int64(AttrRoomOpSeq, seq)
}

// PathHash returns an attribute for the opaque file path hash
func PathHash(hash string) attribute.KeyValue {
	return attribute.String(AttrPathHash, hash)
}

// FileVersion returns an attribute for per-file version
func FileVersion(version int64) attribute.KeyValue {
	return attribute.Int64(AttrFileVersion, version)
}

// FileSize returns an attribute for declared file size
func FileSize(size int64) attribute.KeyValue {
	return attribute.Int64(AttrFileSize, size)
}

// FileCount returns an attribute for a file count
func FileCount(n int) attribute.KeyValue {
	return attribute.Int(AttrFileCount, n)
}

// OpSeq returns an attribute for operation sequence number
func OpSeq(seq int64) attribute.KeyValue {
	return attribute.Int64(AttrOpSeq, seq)
}

// BaseVersion returns an attribute for the version an edit was based on
func BaseVersion(version int64) attribute.KeyValue {
	return attribute.Int64(AttrBaseVersion, version)
}

// ThroughSeq returns an attribute for snapshot coverage
func ThroughSeq(seq int64) attribute.KeyValue {
	return attribute.Int64(AttrThroughSeq, seq)
}

// OpsPurged returns an attribute for operations removed by a snapshot
func OpsPurged(n int64) attribute.KeyValue {
	return attribute.Int64(AttrOpsPurged, n)
}

// SyncChunks returns an attribute for total chunk count
func SyncChunks(n int) attribute.KeyValue {
	return attribute.Int(AttrSyncChunks, n)
}

// SyncChunkIndex returns an attribute for a chunk position
func SyncChunkIndex(i int) attribute.KeyValue {
	return attribute.Int(AttrSyncChunkIndex, i)
}

// SyncDeleted returns an attribute for files removed by reconciliation
func SyncDeleted(n int) attribute.KeyValue {
	return attribute.Int(AttrSyncDeleted, n)
}

// ChangesetID returns an attribute for changeset identifier
func ChangesetID(id string) attribute.KeyValue {
	return attribute.String(AttrChangesetID, id)
}

// ChangeID returns an attribute for change identifier
func ChangeID(id string) attribute.KeyValue {
	return attribute.String(AttrChangeID, id)
}

// ChangeCount returns an attribute for changes in a changeset
func ChangeCount(n int) attribute.KeyValue {
	return attribute.Int(AttrChangeCount, n)
}

// SweptRooms returns an attribute for rooms removed by a retention pass
func SweptRooms(n int64) attribute.KeyValue {
	return attribute.Int64(AttrSweptRooms, n)
}

// StoreType returns an attribute for the database backend
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

// StartRoomSpan starts a span for a room-scoped operation.
// This is a convenience function that sets the room attribute.
func StartRoomSpan(ctx context.Context, name, roomID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		RoomID(roomID),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}

// StartFileSpan starts a span for a file-scoped operation.
func StartFileSpan(ctx context.Context, name, roomID, pathHash string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		RoomID(roomID),
		PathHash(pathHash),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}
