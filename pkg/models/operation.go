package models

import "time"

// Operation is one encrypted edit delta in a room's operation log. The
// payload is opaque to the server; clients interpret it as
// {position, deleteCount, insertedText}. Operations are totally ordered
// within a room by Seq.
type Operation struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement" json:"-"`
	RoomID string `gorm:"not null;size:8;uniqueIndex:idx_operations_room_seq,priority:1;index:idx_operations_room_file,priority:1" json:"room_id"`

	// Seq is the room's op_seq value assigned at submission, strictly
	// increasing and unique within the room.
	Seq int64 `gorm:"not null;uniqueIndex:idx_operations_room_seq,priority:2;index:idx_operations_room_file,priority:3" json:"seq"`

	// FilePathHash identifies the target file by its path hash; the file
	// row may not exist yet when edits race ahead of the first upsert.
	FilePathHash string `gorm:"not null;size:64;index:idx_operations_room_file,priority:2" json:"file_path_hash"`

	// ClientID identifies the submitting editor session. Conflict
	// detection only considers operations from other clients.
	ClientID string `gorm:"size:64" json:"client_id"`

	// BaseVersion is the file version the client believed it was editing.
	BaseVersion int64 `gorm:"not null;default:0" json:"base_version"`

	OpEncrypted string    `gorm:"type:text;not null" json:"op_encrypted"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for Operation.
func (Operation) TableName() string {
	return "operations"
}
