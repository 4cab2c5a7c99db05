package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/livepaste/livepaste/pkg/models"
)

// ============================================
// OPERATION LOG
// ============================================

func (s *GORMStore) SubmitOperation(ctx context.Context, roomID string, sub OperationSubmit) (*OperationResult, error) {
	result := &OperationResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.ensureRoom(tx, roomID)
		if err != nil {
			return err
		}

		// The file row may not exist yet; the first operation can land
		// before the initial upsert. Treat a missing file as version 0.
		var fileVersion, snapshotSeq int64
		var fileID string
		var file models.File
		ferr := s.forUpdate(tx).
			Select("id", "version", "snapshot_seq").
			Where("room_id = ? AND path_hash = ?", roomID, sub.FilePathHash).
			First(&file).Error
		switch {
		case ferr == nil:
			fileVersion = file.Version
			snapshotSeq = file.SnapshotSeq
			fileID = file.ID
		case convertNotFoundError(ferr, models.ErrFileNotFound) == models.ErrFileNotFound:
			// version stays 0
		default:
			return ferr
		}

		baseVersion := int64(0)
		if sub.BaseVersion != nil {
			baseVersion = *sub.BaseVersion

			// A declared base behind the stored file means another client
			// advanced it since this editor last looked. Reject only when
			// there are post-snapshot operations from other clients the
			// submitter has not seen; rebasing is the client's job.
			if baseVersion < fileVersion {
				var conflicting []models.Operation
				if err := tx.Where(
					"room_id = ? AND file_path_hash = ? AND seq > ? AND client_id <> ?",
					roomID, sub.FilePathHash, snapshotSeq, sub.ClientID,
				).Order("seq").
					Find(&conflicting).Error; err != nil {
					return err
				}
				if len(conflicting) > 0 {
					return &models.OperationConflictError{
						CurrentVersion: fileVersion,
						BaseVersion:    baseVersion,
						ConflictingOps: conflicting,
					}
				}
			}
		}

		room.OpSeq++
		room.Version++
		room.UpdatedAt = time.Now()
		if err := tx.Model(&models.Room{}).
			Where("id = ?", room.ID).
			Updates(map[string]any{
				"op_seq":     room.OpSeq,
				"version":    room.Version,
				"updated_at": room.UpdatedAt,
			}).Error; err != nil {
			return err
		}

		if fileID != "" {
			if err := tx.Model(&models.File{}).
				Where("id = ?", fileID).
				Updates(map[string]any{
					"version":    fileVersion + 1,
					"updated_at": time.Now(),
				}).Error; err != nil {
				return err
			}
		}

		op := models.Operation{
			RoomID:       roomID,
			Seq:          room.OpSeq,
			FilePathHash: sub.FilePathHash,
			ClientID:     sub.ClientID,
			BaseVersion:  baseVersion,
			OpEncrypted:  sub.OpEncrypted,
		}
		if err := tx.Create(&op).Error; err != nil {
			return err
		}

		result.Seq = room.OpSeq
		result.CurrentVersion = fileVersion + 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *GORMStore) ListOperations(ctx context.Context, roomID string, since int64, filePathHash string, limit int) ([]models.Operation, int64, bool, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	var ops []models.Operation
	var opSeq int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.ensureRoom(tx, roomID)
		if err != nil {
			return err
		}
		opSeq = room.OpSeq

		q := tx.Where("room_id = ? AND seq > ?", roomID, since)
		if filePathHash != "" {
			q = q.Where("file_path_hash = ?", filePathHash)
		}
		return q.Order("seq").Limit(limit).Find(&ops).Error
	})
	if err != nil {
		return nil, 0, false, err
	}

	hasMore := len(ops) == limit
	return ops, opSeq, hasMore, nil
}
