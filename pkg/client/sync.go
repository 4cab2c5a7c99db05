package client

import (
	"context"
)

// SyncBulk replaces the room's workspace in one shot: the given files
// are upserted and everything else is deleted and tombstoned. Returns
// the full post-sync room state.
func (c *Client) SyncBulk(ctx context.Context, roomID, clientID string, files []FileUpsert) (*RoomState, error) {
	body := map[string]any{
		"client_id": clientID,
		"files":     files,
	}
	var state RoomState
	if err := c.post(ctx, roomPath(roomID, "/sync"), body, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SyncSession is an open chunked upload session.
type SyncSession struct {
	Token     string `json:"session_token"`
	ExpiresIn int    `json:"expires_in"`
}

// SyncBegin opens a chunked sync session for totalChunks chunks.
func (c *Client) SyncBegin(ctx context.Context, roomID, clientID string, totalChunks, totalFiles int) (*SyncSession, error) {
	body := map[string]any{
		"client_id":    clientID,
		"total_chunks": totalChunks,
		"total_files":  totalFiles,
	}
	var session SyncSession
	if err := c.post(ctx, roomPath(roomID, "/sync/begin"), body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ChunkAck reports session progress after a stored chunk.
type ChunkAck struct {
	ReceivedChunks  int `json:"received_chunks"`
	ChunksRemaining int `json:"chunks_remaining"`
}

// SyncChunk uploads one chunk of files into a session. Files are
// durable as soon as the call returns; retrying a chunk index is safe.
func (c *Client) SyncChunk(ctx context.Context, roomID, sessionToken string, chunkIndex int, files []FileUpsert) (*ChunkAck, error) {
	body := map[string]any{
		"session_token": sessionToken,
		"chunk_index":   chunkIndex,
		"files":         files,
	}
	var ack ChunkAck
	if err := c.post(ctx, roomPath(roomID, "/sync/chunk"), body, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// SyncComplete closes the session and reconciles the room: files the
// session never uploaded are deleted and tombstoned. Returns the full
// post-sync room state.
func (c *Client) SyncComplete(ctx context.Context, roomID, sessionToken string) (*RoomState, error) {
	body := map[string]string{"session_token": sessionToken}
	var state RoomState
	if err := c.post(ctx, roomPath(roomID, "/sync/complete"), body, &state); err != nil {
		return nil, err
	}
	return &state, nil
}
