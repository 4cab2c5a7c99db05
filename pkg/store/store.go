// Package store provides the room persistence layer.
//
// This package implements the Store interface for managing room state:
// rooms and their version counters, encrypted files, the operation log,
// deletion tombstones, and changesets.
//
// Two backends are supported:
//   - SQLite (single-node, default)
//   - PostgreSQL (pooled, schema via embedded migrations)
//
// Every multi-statement mutation runs in one transaction that also bumps
// the owning room's version, so no two successful mutations on the same
// room ever observe the same version value and no partial state is visible
// after a failure.
package store

import (
	"context"
	"time"

	"github.com/livepaste/livepaste/pkg/models"
)

// FileUpsert carries the client-supplied fields of a file write. All text
// fields are ciphertext.
type FileUpsert struct {
	PathHash         string
	PathEncrypted    string
	ContentEncrypted *string
	IsSyncable       bool
	SizeBytes        int64
}

// StateQuery selects the slice of room state a delta read returns.
type StateQuery struct {
	// Since filters files by per-file version and tombstones by
	// deleted-at version; zero means a full fetch.
	Since int64

	// Limit caps the files page; clamped to [1, MaxPageSize], zero means
	// MaxPageSize.
	Limit int

	// Offset skips into the file ordering for pagination.
	Offset int
}

// RoomState is the response of a delta read: the room counters, one page
// of changed files, the applicable tombstones, and every pending
// changeset.
type RoomState struct {
	Version           int64
	OpSeq             int64
	Files             []models.File
	DeletedPathHashes []string
	HasMore           bool
	Changesets        []models.Changeset
}

// OperationSubmit carries one operation-log submission.
type OperationSubmit struct {
	FilePathHash string
	OpEncrypted  string
	ClientID     string

	// BaseVersion is the file version the client edited against; nil
	// means the client makes no claim and skips conflict detection.
	BaseVersion *int64
}

// OperationResult reports a successful submission.
type OperationResult struct {
	// Seq is the room-wide sequence assigned to the operation.
	Seq int64

	// CurrentVersion is the file version after the submission.
	CurrentVersion int64
}

// SyncResult reports a reconciling write: which paths were tombstoned and
// the room version after the transaction.
type SyncResult struct {
	DeletedPathHashes []string
	Version           int64
}

// MaxPageSize caps files per delta-read page and operations per fetch.
const MaxPageSize = 1000

// Store provides the room persistence interface.
//
// Thread safety: implementations must be safe for concurrent use from
// multiple request handlers. Per-room ordering rests on database row
// locks, not process mutexes.
type Store interface {
	// ============================================
	// ROOM OPERATIONS
	// ============================================

	// EnsureRoom creates the room if it does not exist and returns it.
	// Creation is idempotent; concurrent callers all observe the row.
	EnsureRoom(ctx context.Context, roomID string) (*models.Room, error)

	// GetRoom returns a room without creating it.
	// Returns models.ErrRoomNotFound if the room doesn't exist.
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)

	// RoomVersion returns the room's current version counter, creating
	// the room if needed.
	RoomVersion(ctx context.Context, roomID string) (int64, error)

	// DeleteRoom removes the room and every dependent row (kill switch).
	// Returns models.ErrRoomNotFound if the room doesn't exist.
	DeleteRoom(ctx context.Context, roomID string) error

	// SetRoomPassword replaces the room's password hash (empty clears
	// it) and bumps the room version. The room is created if needed.
	SetRoomPassword(ctx context.Context, roomID, passwordHash string) error

	// ============================================
	// FILE OPERATIONS
	// ============================================

	// UpsertFile inserts or updates one file keyed by (room, path_hash),
	// clears any tombstone for the path, and bumps the room version.
	// Returns the stored row and the new room version.
	UpsertFile(ctx context.Context, roomID string, req FileUpsert) (*models.File, int64, error)

	// UpsertFiles applies a batch of upserts in one transaction with a
	// single room-version bump. Used by sync chunks.
	UpsertFiles(ctx context.Context, roomID string, reqs []FileUpsert) (int64, error)

	// DeleteFile removes a file by ID within a room, bumps the room
	// version, and writes a tombstone stamped with the new version.
	// Returns the new room version.
	// Returns models.ErrFileNotFound if the file doesn't exist in the room.
	DeleteFile(ctx context.Context, roomID, fileID string) (int64, error)

	// ReconcileRoom deletes every room file whose path hash is not in
	// keep, tombstoning each at a single new room version. The version
	// is not bumped when nothing is deleted. Used by sync completion.
	ReconcileRoom(ctx context.Context, roomID string, keep map[string]struct{}) (*SyncResult, error)

	// SyncFiles is the single-shot sync: upserts all files (one bump)
	// and reconciles the room against the payload's path set (a second
	// bump only when something is deleted), in one transaction.
	SyncFiles(ctx context.Context, roomID string, reqs []FileUpsert) (*SyncResult, error)

	// RoomState performs a delta read per StateQuery, creating the room
	// if needed. Files are ordered by path_encrypted; tombstones are
	// omitted when q.Since is zero.
	RoomState(ctx context.Context, roomID string, q StateQuery) (*RoomState, error)

	// ============================================
	// OPERATION LOG
	// ============================================

	// SubmitOperation appends one operation to the room's log, assigning
	// the next op_seq and bumping both room and file versions.
	// Returns *models.OperationConflictError when the submission races a
	// concurrent writer on the same file.
	SubmitOperation(ctx context.Context, roomID string, sub OperationSubmit) (*OperationResult, error)

	// ListOperations returns up to limit operations with seq > since in
	// ascending order, optionally filtered by file path hash, plus the
	// room's current op_seq and whether more rows remain.
	ListOperations(ctx context.Context, roomID string, since int64, filePathHash string, limit int) ([]models.Operation, int64, bool, error)

	// SnapshotFile replaces the file body with a client-materialized
	// compaction, records throughSeq as the new snapshot_seq, bumps file
	// and room versions, and purges operations with seq <= throughSeq.
	// Returns the updated file, the new room version, and the number of
	// operations purged.
	// Returns models.ErrFileNotFound if the file doesn't exist.
	SnapshotFile(ctx context.Context, roomID, pathHash, contentEncrypted string, throughSeq int64) (*models.File, int64, int64, error)

	// ============================================
	// CHANGESET OPERATIONS
	// ============================================

	// CreateChangeset stores a changeset and its child changes, all
	// pending, and bumps the room version. IDs are assigned if empty.
	CreateChangeset(ctx context.Context, roomID string, cs *models.Changeset) error

	// GetChangeset returns a changeset with its children.
	// Returns models.ErrChangesetNotFound if it doesn't exist in the room.
	GetChangeset(ctx context.Context, roomID, changesetID string) (*models.Changeset, error)

	// ResolveChangeset accepts or rejects a whole changeset: every
	// still-pending child is resolved (acceptance upserts its target
	// file), the parent status and resolved_at are set, and the room
	// version is bumped once.
	// Returns models.ErrChangesetNotFound or models.ErrChangesetResolved.
	ResolveChangeset(ctx context.Context, roomID, changesetID string, accept bool) (*models.Changeset, error)

	// ResolveChange accepts or rejects a single change. The first
	// per-change resolution moves the parent to partial with resolved_at
	// set. Acceptance upserts the target file. One version bump.
	// Returns models.ErrChangeNotFound, models.ErrChangeResolved, or
	// models.ErrChangesetResolved when the parent was globally resolved.
	ResolveChange(ctx context.Context, roomID, changeID string, accept bool) (*models.Change, error)

	// ============================================
	// RETENTION
	// ============================================

	// DeleteExpiredRooms removes every room whose updated_at is older
	// than cutoff, plus all dependents. Returns the number of rooms
	// removed.
	DeleteExpiredRooms(ctx context.Context, cutoff time.Time) (int64, error)

	// PruneTombstones removes tombstones that have fallen behind their
	// room's version by more than horizon. Returns the number pruned.
	PruneTombstones(ctx context.Context, horizon int64) (int64, error)

	// ============================================
	// HEALTH & LIFECYCLE
	// ============================================

	// Healthcheck verifies the store is operational.
	Healthcheck(ctx context.Context) error

	// Close closes the store and releases resources.
	Close() error
}
