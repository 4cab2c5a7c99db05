package client

import (
	"context"

	"github.com/livepaste/livepaste/pkg/models"
)

// ChangeDraft proposes new content for one file. All text fields are
// ciphertext.
type ChangeDraft struct {
	FilePathHash        string  `json:"file_path_hash"`
	FilePathEncrypted   string  `json:"file_path_encrypted"`
	OldContentEncrypted *string `json:"old_content_encrypted,omitempty"`
	NewContentEncrypted string  `json:"new_content_encrypted"`
	DiffEncrypted       string  `json:"diff_encrypted,omitempty"`
}

// ChangesetDraft is a batch of proposed changes awaiting review.
type ChangesetDraft struct {
	AuthorEncrypted  string        `json:"author_encrypted"`
	MessageEncrypted string        `json:"message_encrypted"`
	Changes          []ChangeDraft `json:"changes"`
}

// CreateChangeset submits a changeset for review.
func (c *Client) CreateChangeset(ctx context.Context, roomID string, draft ChangesetDraft) (*models.Changeset, error) {
	var cs models.Changeset
	if err := c.post(ctx, roomPath(roomID, "/changesets"), draft, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}

// AcceptChangeset accepts every pending change in the set, applying
// each to its target file.
func (c *Client) AcceptChangeset(ctx context.Context, roomID, changesetID string) (*models.Changeset, error) {
	return c.resolveChangeset(ctx, roomID, changesetID, "accept")
}

// RejectChangeset rejects every pending change in the set.
func (c *Client) RejectChangeset(ctx context.Context, roomID, changesetID string) (*models.Changeset, error) {
	return c.resolveChangeset(ctx, roomID, changesetID, "reject")
}

func (c *Client) resolveChangeset(ctx context.Context, roomID, changesetID, verdict string) (*models.Changeset, error) {
	var cs models.Changeset
	path := roomPath(roomID, "/changesets/"+changesetID+"/"+verdict)
	if err := c.post(ctx, path, nil, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}

// AcceptChange accepts a single change, applying it to its target file
// and marking the parent changeset partial.
func (c *Client) AcceptChange(ctx context.Context, roomID, changeID string) (*models.Change, error) {
	return c.resolveChange(ctx, roomID, changeID, "accept")
}

// RejectChange rejects a single change.
func (c *Client) RejectChange(ctx context.Context, roomID, changeID string) (*models.Change, error) {
	return c.resolveChange(ctx, roomID, changeID, "reject")
}

func (c *Client) resolveChange(ctx context.Context, roomID, changeID, verdict string) (*models.Change, error) {
	var change models.Change
	path := roomPath(roomID, "/changes/"+changeID+"/"+verdict)
	if err := c.post(ctx, path, nil, &change); err != nil {
		return nil, err
	}
	return &change, nil
}
