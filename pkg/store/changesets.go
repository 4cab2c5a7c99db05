package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/livepaste/livepaste/pkg/models"
)

// ============================================
// CHANGESET OPERATIONS
// ============================================

func (s *GORMStore) CreateChangeset(ctx context.Context, roomID string, cs *models.Changeset) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.ensureRoom(tx, roomID)
		if err != nil {
			return err
		}

		if cs.ID == "" {
			cs.ID = uuid.New().String()
		}
		cs.RoomID = roomID
		cs.Status = models.ChangesetPending
		cs.ResolvedAt = nil
		cs.CreatedAt = time.Now()

		for i := range cs.Changes {
			if cs.Changes[i].ID == "" {
				cs.Changes[i].ID = uuid.New().String()
			}
			cs.Changes[i].ChangesetID = cs.ID
			cs.Changes[i].RoomID = roomID
			cs.Changes[i].Status = models.ChangePending
			cs.Changes[i].CreatedAt = cs.CreatedAt
		}

		if err := tx.Create(cs).Error; err != nil {
			return err
		}

		return s.bumpRoom(tx, room)
	})
}

func (s *GORMStore) GetChangeset(ctx context.Context, roomID, changesetID string) (*models.Changeset, error) {
	var cs models.Changeset
	err := s.db.WithContext(ctx).
		Preload("Changes").
		Where("room_id = ? AND id = ?", roomID, changesetID).
		First(&cs).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrChangesetNotFound)
	}
	return &cs, nil
}

func (s *GORMStore) ResolveChangeset(ctx context.Context, roomID, changesetID string, accept bool) (*models.Changeset, error) {
	var cs models.Changeset
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.ensureRoom(tx, roomID)
		if err != nil {
			return err
		}

		if err := s.forUpdate(tx).
			Where("room_id = ? AND id = ?", roomID, changesetID).
			First(&cs).Error; err != nil {
			return convertNotFoundError(err, models.ErrChangesetNotFound)
		}

		// Whole-changeset resolution applies to pending sets only; partial
		// sets keep their per-change history.
		if cs.Status != models.ChangesetPending {
			return models.ErrChangesetResolved
		}

		var changes []models.Change
		if err := tx.Where("changeset_id = ?", cs.ID).
			Order("created_at").
			Find(&changes).Error; err != nil {
			return err
		}

		childStatus := models.ChangeRejected
		csStatus := models.ChangesetRejected
		if accept {
			childStatus = models.ChangeAccepted
			csStatus = models.ChangesetAccepted
		}

		for i := range changes {
			if changes[i].Status != models.ChangePending {
				continue
			}
			if accept {
				if err := s.applyChange(tx, roomID, &changes[i]); err != nil {
					return err
				}
			}
			changes[i].Status = childStatus
		}

		if err := tx.Model(&models.Change{}).
			Where("changeset_id = ? AND status = ?", cs.ID, models.ChangePending).
			Update("status", childStatus).Error; err != nil {
			return err
		}

		now := time.Now()
		cs.Status = csStatus
		cs.ResolvedAt = &now
		if err := tx.Model(&models.Changeset{}).
			Where("id = ?", cs.ID).
			Updates(map[string]any{
				"status":      cs.Status,
				"resolved_at": cs.ResolvedAt,
			}).Error; err != nil {
			return err
		}

		cs.Changes = changes
		return s.bumpRoom(tx, room)
	})
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func (s *GORMStore) ResolveChange(ctx context.Context, roomID, changeID string, accept bool) (*models.Change, error) {
	var change models.Change
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.ensureRoom(tx, roomID)
		if err != nil {
			return err
		}

		if err := s.forUpdate(tx).
			Where("room_id = ? AND id = ?", roomID, changeID).
			First(&change).Error; err != nil {
			return convertNotFoundError(err, models.ErrChangeNotFound)
		}
		if change.Status != models.ChangePending {
			return models.ErrChangeResolved
		}

		var cs models.Changeset
		if err := s.forUpdate(tx).
			Where("id = ?", change.ChangesetID).
			First(&cs).Error; err != nil {
			return convertNotFoundError(err, models.ErrChangesetNotFound)
		}

		// A globally accepted or rejected set leaves no pending children,
		// so only pending and partial parents reach this point in
		// practice; the guard covers manual tampering.
		if cs.Status != models.ChangesetPending && cs.Status != models.ChangesetPartial {
			return models.ErrChangesetResolved
		}

		if accept {
			if err := s.applyChange(tx, roomID, &change); err != nil {
				return err
			}
			change.Status = models.ChangeAccepted
		} else {
			change.Status = models.ChangeRejected
		}

		if err := tx.Model(&models.Change{}).
			Where("id = ?", change.ID).
			Update("status", change.Status).Error; err != nil {
			return err
		}

		// The first per-change resolution marks the parent partial. It
		// stays partial no matter how the remaining children resolve.
		if cs.Status == models.ChangesetPending {
			now := time.Now()
			if err := tx.Model(&models.Changeset{}).
				Where("id = ?", cs.ID).
				Updates(map[string]any{
					"status":      models.ChangesetPartial,
					"resolved_at": &now,
				}).Error; err != nil {
				return err
			}
		}

		return s.bumpRoom(tx, room)
	})
	if err != nil {
		return nil, err
	}
	return &change, nil
}

// applyChange upserts the change's proposed content into its target file.
// Runs inside the caller's transaction; the caller bumps the room version.
func (s *GORMStore) applyChange(tx *gorm.DB, roomID string, change *models.Change) error {
	content := change.NewContentEncrypted
	_, err := s.upsertFile(tx, roomID, FileUpsert{
		PathHash:         change.FilePathHash,
		PathEncrypted:    change.FilePathEncrypted,
		ContentEncrypted: &content,
		IsSyncable:       true,
		SizeBytes:        int64(len(content)),
	})
	return err
}
