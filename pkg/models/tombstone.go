package models

import "time"

// DeletedFile records that a path was removed from a room at a given room
// version, letting delta-sync clients apply deletions. One row exists per
// (room, path): a re-deletion moves DeletedAtVersion forward, and
// re-creating the path removes the row, so a delta response never carries
// both a live file and its tombstone.
type DeletedFile struct {
	RoomID   string `gorm:"primaryKey;size:8;index:idx_deleted_files_room_version,priority:1" json:"room_id"`
	PathHash string `gorm:"primaryKey;size:64" json:"path_hash"`

	// DeletedAtVersion is the room version stamped by the deleting
	// transaction. Rows older than the room's pruning horizon are swept.
	DeletedAtVersion int64 `gorm:"not null;index:idx_deleted_files_room_version,priority:2" json:"deleted_at_version"`

	DeletedAt time.Time `json:"deleted_at"`
}

// TableName returns the table name for DeletedFile.
func (DeletedFile) TableName() string {
	return "deleted_files"
}
