package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/livepaste/livepaste/pkg/models"
)

// ============================================
// ROOM OPERATIONS
// ============================================

func (s *GORMStore) EnsureRoom(ctx context.Context, roomID string) (*models.Room, error) {
	room := models.Room{ID: roomID}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&room).Error; err != nil {
		return nil, err
	}

	// Re-read: the insert may have been a no-op on an existing room.
	var existing models.Room
	if err := s.db.WithContext(ctx).Where("id = ?", roomID).First(&existing).Error; err != nil {
		return nil, convertNotFoundError(err, models.ErrRoomNotFound)
	}
	return &existing, nil
}

func (s *GORMStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	if err := s.db.WithContext(ctx).Where("id = ?", roomID).First(&room).Error; err != nil {
		return nil, convertNotFoundError(err, models.ErrRoomNotFound)
	}
	return &room, nil
}

func (s *GORMStore) RoomVersion(ctx context.Context, roomID string) (int64, error) {
	room, err := s.EnsureRoom(ctx, roomID)
	if err != nil {
		return 0, err
	}
	return room.Version, nil
}

func (s *GORMStore) DeleteRoom(ctx context.Context, roomID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.lockRoom(tx, roomID)
		if err != nil {
			return err
		}
		return s.deleteRoomCascade(tx, room.ID)
	})
}

// deleteRoomCascade removes the room and all dependents. The explicit
// deletes keep SQLite correct without foreign-key pragma support;
// PostgreSQL would cascade on its own.
func (s *GORMStore) deleteRoomCascade(tx *gorm.DB, roomID string) error {
	if err := tx.Where("room_id = ?", roomID).Delete(&models.Change{}).Error; err != nil {
		return err
	}
	if err := tx.Where("room_id = ?", roomID).Delete(&models.Changeset{}).Error; err != nil {
		return err
	}
	if err := tx.Where("room_id = ?", roomID).Delete(&models.Operation{}).Error; err != nil {
		return err
	}
	if err := tx.Where("room_id = ?", roomID).Delete(&models.DeletedFile{}).Error; err != nil {
		return err
	}
	if err := tx.Where("room_id = ?", roomID).Delete(&models.File{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", roomID).Delete(&models.Room{}).Error
}

func (s *GORMStore) SetRoomPassword(ctx context.Context, roomID, passwordHash string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.ensureRoom(tx, roomID)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Room{}).
			Where("id = ?", room.ID).
			Update("password_hash", passwordHash).Error; err != nil {
			return err
		}

		// Clients poll the version to notice that room state changed.
		return s.bumpRoom(tx, room)
	})
}
