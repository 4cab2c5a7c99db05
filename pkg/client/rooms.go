package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/livepaste/livepaste/pkg/models"
)

// RoomInfo is the public room probe result.
type RoomInfo struct {
	ID          string `json:"id"`
	HasPassword bool   `json:"has_password"`
}

// Info fetches the public room probe. The response is identical whether
// the room exists or not.
func (c *Client) Info(ctx context.Context, roomID string) (*RoomInfo, error) {
	var info RoomInfo
	if err := c.get(ctx, roomPath(roomID, "/info"), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// VerifyResult is the outcome of a password check. On success Token
// holds a short-lived room token the client may present instead of
// resending the digest.
type VerifyResult struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// VerifyPassword checks a password digest against the room. Open rooms
// always verify.
func (c *Client) VerifyPassword(ctx context.Context, roomID, digest string) (*VerifyResult, error) {
	body := map[string]string{"password": digest}
	var result VerifyResult
	if err := c.post(ctx, roomPath(roomID, "/verify-password"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetPassword sets, changes, or clears the room password. Changing or
// clearing requires the current digest; an empty new digest removes
// protection.
func (c *Client) SetPassword(ctx context.Context, roomID, digest, currentDigest string) error {
	body := map[string]string{
		"password":         digest,
		"current_password": currentDigest,
	}
	return c.post(ctx, roomPath(roomID, "/password"), body, nil)
}

// StateQuery selects a slice of room state for a delta read.
type StateQuery struct {
	// Since filters to files changed after this room version.
	Since int64
	// Limit and Offset page through the file list.
	Limit  int
	Offset int
}

// RoomState is a delta read of a room.
type RoomState struct {
	Version           int64              `json:"version"`
	OpSeq             int64              `json:"op_seq"`
	Files             []models.File      `json:"files"`
	DeletedPathHashes []string           `json:"deleted_path_hashes"`
	HasMore           bool               `json:"has_more"`
	Changesets        []models.Changeset `json:"changesets"`
}

// State performs a delta read of the room.
func (c *Client) State(ctx context.Context, roomID string, q StateQuery) (*RoomState, error) {
	params := url.Values{}
	if q.Since > 0 {
		params.Set("since", fmt.Sprintf("%d", q.Since))
	}
	if q.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", fmt.Sprintf("%d", q.Offset))
	}

	path := roomPath(roomID, "/")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var state RoomState
	if err := c.get(ctx, path, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Version fetches the room version, the cheap polling probe.
func (c *Client) Version(ctx context.Context, roomID string) (int64, error) {
	var result struct {
		Version int64 `json:"version"`
	}
	if err := c.get(ctx, roomPath(roomID, "/version"), &result); err != nil {
		return 0, err
	}
	return result.Version, nil
}

// DeleteRoom destroys the room and everything in it.
func (c *Client) DeleteRoom(ctx context.Context, roomID string) error {
	return c.delete(ctx, roomPath(roomID, "/"), nil)
}
