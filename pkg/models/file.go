package models

import "time"

// File is a single encrypted file within a room. Files are keyed
// externally by (room_id, path_hash): the client computes path_hash as the
// SHA-256 hex of the plaintext path, so the server can upsert by path
// without ever seeing it.
type File struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	RoomID string `gorm:"not null;size:8;uniqueIndex:idx_files_room_path,priority:1;index:idx_files_room_version,priority:1" json:"room_id"`

	// PathHash is the client-computed SHA-256 hex of the plaintext path,
	// unique per room. It is the stable upsert key.
	PathHash      string `gorm:"not null;size:64;uniqueIndex:idx_files_room_path,priority:2" json:"path_hash"`
	PathEncrypted string `gorm:"type:text;not null" json:"path_encrypted"`

	// ContentEncrypted is NULL only for non-syncable files (binary or
	// otherwise excluded from sync), which are tracked by size alone.
	ContentEncrypted *string `gorm:"type:text" json:"content_encrypted"`
	IsSyncable       bool    `gorm:"not null;default:true" json:"is_syncable"`
	SizeBytes        int64   `gorm:"not null;default:0" json:"size_bytes"`

	// Version increases on every write to this file, including operation
	// submissions against it; delta reads select files with Version > since.
	Version int64 `gorm:"not null;default:1;index:idx_files_room_version,priority:2" json:"version"`

	// SnapshotSeq is the operation sequence at which the stored body was
	// last materialized. Operations with seq <= SnapshotSeq are disposable.
	SnapshotSeq int64 `gorm:"not null;default:0" json:"snapshot_seq"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for File.
func (File) TableName() string {
	return "files"
}

// Content returns the stored ciphertext body, or the empty string when the
// file is non-syncable.
func (f *File) Content() string {
	if f.ContentEncrypted == nil {
		return ""
	}
	return *f.ContentEncrypted
}
