package models

import "time"

// ChangesetStatus is the review state of a proposed multi-file change.
//
// Transitions:
//   - pending -> accepted / rejected via whole-changeset resolution;
//   - pending -> partial on the first per-change resolution;
//   - partial never becomes accepted or rejected.
type ChangesetStatus string

const (
	// ChangesetPending means no change in the set has been resolved.
	ChangesetPending ChangesetStatus = "pending"

	// ChangesetAccepted means the whole set was accepted at once.
	ChangesetAccepted ChangesetStatus = "accepted"

	// ChangesetRejected means the whole set was rejected at once.
	ChangesetRejected ChangesetStatus = "rejected"

	// ChangesetPartial means at least one child change was resolved
	// individually; the set as a whole was never globally resolved.
	ChangesetPartial ChangesetStatus = "partial"
)

// IsValid returns true if this is a valid changeset status.
func (s ChangesetStatus) IsValid() bool {
	switch s {
	case ChangesetPending, ChangesetAccepted, ChangesetRejected, ChangesetPartial:
		return true
	default:
		return false
	}
}

// IsResolved returns true once the status has left pending.
func (s ChangesetStatus) IsResolved() bool {
	return s.IsValid() && s != ChangesetPending
}

// String returns the string representation of the status.
func (s ChangesetStatus) String() string {
	return string(s)
}

// ChangeStatus is the review state of a single proposed file change.
type ChangeStatus string

const (
	// ChangePending means the change awaits review.
	ChangePending ChangeStatus = "pending"

	// ChangeAccepted means the change was applied to its target file.
	ChangeAccepted ChangeStatus = "accepted"

	// ChangeRejected means the change was discarded.
	ChangeRejected ChangeStatus = "rejected"
)

// IsValid returns true if this is a valid change status.
func (s ChangeStatus) IsValid() bool {
	switch s {
	case ChangePending, ChangeAccepted, ChangeRejected:
		return true
	default:
		return false
	}
}

// IsResolved returns true once the status has left pending.
func (s ChangeStatus) IsResolved() bool {
	return s == ChangeAccepted || s == ChangeRejected
}

// String returns the string representation of the status.
func (s ChangeStatus) String() string {
	return string(s)
}

// Changeset is a named set of proposed file replacements awaiting review,
// typically produced by an AI assistant or a collaborator. Author and
// message are ciphertext like everything else user-originated.
type Changeset struct {
	ID               string          `gorm:"primaryKey;size:36" json:"id"`
	RoomID           string          `gorm:"not null;size:8;index" json:"room_id"`
	AuthorEncrypted  string          `gorm:"type:text" json:"author_encrypted"`
	MessageEncrypted string          `gorm:"type:text" json:"message_encrypted"`
	Status           ChangesetStatus `gorm:"not null;size:16;default:pending" json:"status"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// ResolvedAt is set exactly when Status leaves pending.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	Changes []Change `gorm:"foreignKey:ChangesetID" json:"changes,omitempty"`
}

// TableName returns the table name for Changeset.
func (Changeset) TableName() string {
	return "changesets"
}

// PendingChanges counts the child changes still awaiting review.
func (c *Changeset) PendingChanges() int {
	n := 0
	for i := range c.Changes {
		if c.Changes[i].Status == ChangePending {
			n++
		}
	}
	return n
}

// Change is one proposed file replacement inside a changeset. FilePathHash
// names the upsert target when the change is accepted.
type Change struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	ChangesetID string `gorm:"not null;size:36;index" json:"changeset_id"`
	RoomID      string `gorm:"not null;size:8;index" json:"room_id"`

	FilePathHash      string `gorm:"not null;size:64" json:"file_path_hash"`
	FilePathEncrypted string `gorm:"type:text" json:"file_path_encrypted"`

	// OldContentEncrypted is NULL when the change creates a new file.
	OldContentEncrypted *string `gorm:"type:text" json:"old_content_encrypted"`
	NewContentEncrypted string  `gorm:"type:text" json:"new_content_encrypted"`
	DiffEncrypted       string  `gorm:"type:text" json:"diff_encrypted"`

	Status    ChangeStatus `gorm:"not null;size:16;default:pending" json:"status"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for Change.
func (Change) TableName() string {
	return "changes"
}
