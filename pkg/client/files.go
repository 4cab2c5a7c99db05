package client

import (
	"context"

	"github.com/livepaste/livepaste/pkg/models"
)

// FileUpsert is the wire shape of one file write. All text fields are
// ciphertext. A nil IsSyncable defaults to true on the server.
type FileUpsert struct {
	PathHash         string  `json:"path_hash"`
	PathEncrypted    string  `json:"path_encrypted"`
	ContentEncrypted *string `json:"content_encrypted"`
	IsSyncable       *bool   `json:"is_syncable,omitempty"`
	SizeBytes        int64   `json:"size_bytes"`
}

// FileWriteResult reports a stored file, its per-file version, and the
// room version the write produced.
type FileWriteResult struct {
	Version     int64       `json:"version"`
	RoomVersion int64       `json:"room_version"`
	File        models.File `json:"file"`
}

// UpsertFile stores a single file, creating the room if needed.
func (c *Client) UpsertFile(ctx context.Context, roomID string, upsert FileUpsert) (*FileWriteResult, error) {
	var result FileWriteResult
	if err := c.post(ctx, roomPath(roomID, "/files"), upsert, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteFile removes a file by ID and returns the room version of the
// deletion.
func (c *Client) DeleteFile(ctx context.Context, roomID, fileID string) (int64, error) {
	var result struct {
		Version int64 `json:"version"`
	}
	if err := c.delete(ctx, roomPath(roomID, "/files/"+fileID), &result); err != nil {
		return 0, err
	}
	return result.Version, nil
}

// SnapshotResult reports a compacted file and the room version of the
// snapshot.
type SnapshotResult struct {
	File        models.File `json:"file"`
	RoomVersion int64       `json:"room_version"`
}

// Snapshot replaces a file's content with a client-materialized body
// covering operations up to throughSeq; the server purges the covered
// operations.
func (c *Client) Snapshot(ctx context.Context, roomID, pathHash, contentEncrypted string, throughSeq int64) (*SnapshotResult, error) {
	body := map[string]any{
		"content_encrypted": contentEncrypted,
		"through_seq":       throughSeq,
	}
	var result SnapshotResult
	if err := c.post(ctx, roomPath(roomID, "/files/"+pathHash+"/snapshot"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
