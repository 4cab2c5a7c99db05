package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/livepaste/livepaste/pkg/models"
)

// deleteBatchSize bounds the number of rows touched by a single statement
// during reconciliation, keeping long transactions from starving the pool.
const deleteBatchSize = 500

// ============================================
// FILE OPERATIONS
// ============================================

func (s *GORMStore) UpsertFile(ctx context.Context, roomID string, req FileUpsert) (*models.File, int64, error) {
	var file *models.File
	var version int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.ensureRoom(tx, roomID)
		if err != nil {
			return err
		}

		file, err = s.upsertFile(tx, roomID, req)
		if err != nil {
			return err
		}

		if err := s.bumpRoom(tx, room); err != nil {
			return err
		}
		version = room.Version
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return file, version, nil
}

func (s *GORMStore) UpsertFiles(ctx context.Context, roomID string, reqs []FileUpsert) (int64, error) {
	var version int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.ensureRoom(tx, roomID)
		if err != nil {
			return err
		}

		for _, req := range reqs {
			if _, err := s.upsertFile(tx, roomID, req); err != nil {
				return err
			}
		}

		// One bump per batch, not per file.
		if err := s.bumpRoom(tx, room); err != nil {
			return err
		}
		version = room.Version
		return nil
	})
	return version, err
}

// upsertFile inserts or updates one file keyed by (room_id, path_hash)
// and clears any tombstone for the path. Callers hold the room lock and
// are responsible for the room-version bump.
func (s *GORMStore) upsertFile(tx *gorm.DB, roomID string, req FileUpsert) (*models.File, error) {
	content := req.ContentEncrypted
	if req.IsSyncable && content == nil {
		// A syncable file always has a body, if only the empty ciphertext.
		empty := ""
		content = &empty
	}

	var file models.File
	err := s.forUpdate(tx).
		Where("room_id = ? AND path_hash = ?", roomID, req.PathHash).
		First(&file).Error

	switch {
	case err == nil:
		file.PathEncrypted = req.PathEncrypted
		file.ContentEncrypted = content
		file.IsSyncable = req.IsSyncable
		file.SizeBytes = req.SizeBytes
		file.Version++
		file.UpdatedAt = time.Now()

		if err := tx.Model(&models.File{}).
			Where("id = ?", file.ID).
			Updates(map[string]any{
				"path_encrypted":    file.PathEncrypted,
				"content_encrypted": file.ContentEncrypted,
				"is_syncable":       file.IsSyncable,
				"size_bytes":        file.SizeBytes,
				"version":           file.Version,
				"updated_at":        file.UpdatedAt,
			}).Error; err != nil {
			return nil, err
		}

	case convertNotFoundError(err, models.ErrFileNotFound) == models.ErrFileNotFound:
		now := time.Now()
		file = models.File{
			ID:               uuid.New().String(),
			RoomID:           roomID,
			PathHash:         req.PathHash,
			PathEncrypted:    req.PathEncrypted,
			ContentEncrypted: content,
			IsSyncable:       req.IsSyncable,
			SizeBytes:        req.SizeBytes,
			Version:          1,
			SnapshotSeq:      0,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := tx.Create(&file).Error; err != nil {
			return nil, err
		}

	default:
		return nil, err
	}

	// Re-creating a path supersedes its deletion; a delta response must
	// never carry both the live file and its tombstone.
	if err := tx.Where("room_id = ? AND path_hash = ?", roomID, req.PathHash).
		Delete(&models.DeletedFile{}).Error; err != nil {
		return nil, err
	}

	return &file, nil
}

func (s *GORMStore) DeleteFile(ctx context.Context, roomID, fileID string) (int64, error) {
	var version int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.lockRoom(tx, roomID)
		if err != nil {
			return err
		}

		var file models.File
		if err := s.forUpdate(tx).
			Where("room_id = ? AND id = ?", roomID, fileID).
			First(&file).Error; err != nil {
			return convertNotFoundError(err, models.ErrFileNotFound)
		}

		if err := tx.Delete(&file).Error; err != nil {
			return err
		}

		if err := s.bumpRoom(tx, room); err != nil {
			return err
		}

		if err := s.writeTombstones(tx, roomID, []string{file.PathHash}, room.Version); err != nil {
			return err
		}

		version = room.Version
		return nil
	})
	return version, err
}

func (s *GORMStore) ReconcileRoom(ctx context.Context, roomID string, keep map[string]struct{}) (*SyncResult, error) {
	result := &SyncResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.ensureRoom(tx, roomID)
		if err != nil {
			return err
		}

		deleted, err := s.reconcileFiles(tx, room, keep)
		if err != nil {
			return err
		}

		result.DeletedPathHashes = deleted
		result.Version = room.Version
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *GORMStore) SyncFiles(ctx context.Context, roomID string, reqs []FileUpsert) (*SyncResult, error) {
	result := &SyncResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.ensureRoom(tx, roomID)
		if err != nil {
			return err
		}

		keep := make(map[string]struct{}, len(reqs))
		for _, req := range reqs {
			if _, err := s.upsertFile(tx, roomID, req); err != nil {
				return err
			}
			keep[req.PathHash] = struct{}{}
		}

		if err := s.bumpRoom(tx, room); err != nil {
			return err
		}

		deleted, err := s.reconcileFiles(tx, room, keep)
		if err != nil {
			return err
		}

		result.DeletedPathHashes = deleted
		result.Version = room.Version
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// reconcileFiles deletes every room file whose path hash is not in keep,
// tombstoning the lot at a single new room version. No deletions, no
// bump. Callers hold the room lock; room.Version reflects the bump on
// return.
func (s *GORMStore) reconcileFiles(tx *gorm.DB, room *models.Room, keep map[string]struct{}) ([]string, error) {
	var files []models.File
	if err := tx.Select("id", "path_hash").
		Where("room_id = ?", room.ID).
		Find(&files).Error; err != nil {
		return nil, err
	}

	var staleIDs []string
	var staleHashes []string
	for _, f := range files {
		if _, ok := keep[f.PathHash]; !ok {
			staleIDs = append(staleIDs, f.ID)
			staleHashes = append(staleHashes, f.PathHash)
		}
	}

	if len(staleIDs) == 0 {
		return nil, nil
	}

	if err := s.bumpRoom(tx, room); err != nil {
		return nil, err
	}

	for start := 0; start < len(staleIDs); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(staleIDs))
		if err := tx.Where("id IN ?", staleIDs[start:end]).
			Delete(&models.File{}).Error; err != nil {
			return nil, err
		}
	}

	if err := s.writeTombstones(tx, room.ID, staleHashes, room.Version); err != nil {
		return nil, err
	}

	return staleHashes, nil
}

// writeTombstones upserts one tombstone per path at the given room
// version. Re-deleting a path moves its tombstone forward; only the most
// recent deletion matters to clients.
func (s *GORMStore) writeTombstones(tx *gorm.DB, roomID string, pathHashes []string, version int64) error {
	if len(pathHashes) == 0 {
		return nil
	}

	now := time.Now()
	stones := make([]models.DeletedFile, len(pathHashes))
	for i, hash := range pathHashes {
		stones[i] = models.DeletedFile{
			RoomID:           roomID,
			PathHash:         hash,
			DeletedAtVersion: version,
			DeletedAt:        now,
		}
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "path_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"deleted_at_version", "deleted_at"}),
	}).CreateInBatches(stones, deleteBatchSize).Error
}

// ============================================
// DELTA READ
// ============================================

func (s *GORMStore) RoomState(ctx context.Context, roomID string, q StateQuery) (*RoomState, error) {
	limit := q.Limit
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	state := &RoomState{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room := models.Room{ID: roomID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&room).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", roomID).First(&room).Error; err != nil {
			return convertNotFoundError(err, models.ErrRoomNotFound)
		}
		state.Version = room.Version
		state.OpSeq = room.OpSeq

		if err := tx.Where("room_id = ? AND version > ?", roomID, q.Since).
			Order("path_encrypted").
			Limit(limit).
			Offset(q.Offset).
			Find(&state.Files).Error; err != nil {
			return err
		}
		state.HasMore = len(state.Files) == limit

		// A caller at since=0 has no prior state to reconcile, so the
		// tombstone list is omitted entirely.
		if q.Since > 0 {
			if err := tx.Model(&models.DeletedFile{}).
				Where("room_id = ? AND deleted_at_version > ?", roomID, q.Since).
				Order("deleted_at_version").
				Pluck("path_hash", &state.DeletedPathHashes).Error; err != nil {
				return err
			}
		}

		return tx.Preload("Changes").
			Where("room_id = ? AND status = ?", roomID, models.ChangesetPending).
			Order("created_at").
			Find(&state.Changesets).Error
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// ============================================
// SNAPSHOT COMPACTION
// ============================================

func (s *GORMStore) SnapshotFile(ctx context.Context, roomID, pathHash, contentEncrypted string, throughSeq int64) (*models.File, int64, int64, error) {
	var file models.File
	var version, purged int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.ensureRoom(tx, roomID)
		if err != nil {
			return err
		}

		if err := s.forUpdate(tx).
			Where("room_id = ? AND path_hash = ?", roomID, pathHash).
			First(&file).Error; err != nil {
			return convertNotFoundError(err, models.ErrFileNotFound)
		}

		file.ContentEncrypted = &contentEncrypted
		file.SnapshotSeq = throughSeq
		file.Version++
		file.UpdatedAt = time.Now()

		if err := tx.Model(&models.File{}).
			Where("id = ?", file.ID).
			Updates(map[string]any{
				"content_encrypted": file.ContentEncrypted,
				"snapshot_seq":      file.SnapshotSeq,
				"version":           file.Version,
				"updated_at":        file.UpdatedAt,
			}).Error; err != nil {
			return err
		}

		if err := s.bumpRoom(tx, room); err != nil {
			return err
		}
		version = room.Version

		// Operations at or below the snapshot are now redundant.
		res := tx.Where("room_id = ? AND file_path_hash = ? AND seq <= ?",
			roomID, pathHash, throughSeq).
			Delete(&models.Operation{})
		purged = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return nil, 0, 0, err
	}
	return &file, version, purged, nil
}
