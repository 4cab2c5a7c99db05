package models

import (
	"errors"
	"fmt"
)

// Common errors for room store operations.
var (
	// Room errors
	ErrRoomNotFound = errors.New("room not found")

	// File errors
	ErrFileNotFound = errors.New("file not found")

	// Changeset errors
	ErrChangesetNotFound = errors.New("changeset not found")
	ErrChangeNotFound    = errors.New("change not found")
	ErrChangesetResolved = errors.New("changeset already resolved")
	ErrChangeResolved    = errors.New("change already resolved")

	// Sync session errors
	ErrSessionExpired = errors.New("sync session expired or unknown")
)

// OperationConflictError is returned when an operation submission races a
// concurrent writer: another client appended operations after the
// submitter's snapshot while the submitter's base version is behind the
// file. The server hands the raw conflicting operations back; rebasing is
// the client's job.
type OperationConflictError struct {
	// CurrentVersion is the file version at the time of the rejected
	// submission.
	CurrentVersion int64

	// BaseVersion is the stale version the client claimed to edit.
	BaseVersion int64

	// ConflictingOps are the operations from other clients that the
	// submitter has not seen, ordered by seq.
	ConflictingOps []Operation
}

// Error implements the error interface.
func (e *OperationConflictError) Error() string {
	return fmt.Sprintf("operation conflict: base version %d behind current version %d with %d unseen operation(s)",
		e.BaseVersion, e.CurrentVersion, len(e.ConflictingOps))
}
