package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/livepaste/livepaste/pkg/models"
)

// OperationSubmit is one encrypted editor operation. A non-nil
// BaseVersion declares the file version the client edited against and
// arms conflict detection.
type OperationSubmit struct {
	FilePathHash string `json:"file_path_hash"`
	OpEncrypted  string `json:"op_encrypted"`
	ClientID     string `json:"client_id"`
	BaseVersion  *int64 `json:"base_version,omitempty"`
}

// OperationAck reports an accepted operation.
type OperationAck struct {
	Seq            int64 `json:"seq"`
	CurrentVersion int64 `json:"current_version"`
}

// ConflictingOp is one operation the rejected submitter has not seen.
type ConflictingOp struct {
	Seq         int64  `json:"seq"`
	OpEncrypted string `json:"op_encrypted"`
	ClientID    string `json:"client_id"`
}

// ConflictError is a rejected operation submission. The client rebases
// onto ConflictingOps and resubmits against CurrentVersion.
type ConflictError struct {
	CurrentVersion int64           `json:"current_version"`
	BaseVersion    int64           `json:"base_version"`
	ConflictingOps []ConflictingOp `json:"conflicting_ops"`
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("operation conflict: base version %d behind current %d (%d unseen ops)",
		e.BaseVersion, e.CurrentVersion, len(e.ConflictingOps))
}

// SubmitOperation appends an operation to the room log. A stale base
// version returns *ConflictError.
func (c *Client) SubmitOperation(ctx context.Context, roomID string, sub OperationSubmit) (*OperationAck, error) {
	var ack OperationAck
	err := c.post(ctx, roomPath(roomID, "/ops"), sub, &ack)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsConflict() {
			var conflict ConflictError
			if json.Unmarshal(apiErr.Body, &conflict) == nil {
				return nil, &conflict
			}
		}
		return nil, err
	}
	return &ack, nil
}

// OperationPage is one page of the operation log.
type OperationPage struct {
	Operations []models.Operation `json:"operations"`
	OpSeq      int64              `json:"op_seq"`
	HasMore    bool               `json:"has_more"`
}

// ListOperations fetches operations with seq greater than since,
// optionally filtered to one file's path hash.
func (c *Client) ListOperations(ctx context.Context, roomID string, since int64, filePathHash string, limit int) (*OperationPage, error) {
	params := url.Values{}
	if since > 0 {
		params.Set("since", fmt.Sprintf("%d", since))
	}
	if filePathHash != "" {
		params.Set("file", filePathHash)
	}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	path := roomPath(roomID, "/ops")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var page OperationPage
	if err := c.get(ctx, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
