package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/livepaste/livepaste/pkg/models"
)

// ============================================
// RETENTION
// ============================================

func (s *GORMStore) DeleteExpiredRooms(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var roomIDs []string
		if err := tx.Model(&models.Room{}).
			Where("updated_at < ?", cutoff).
			Pluck("id", &roomIDs).Error; err != nil {
			return err
		}

		for _, id := range roomIDs {
			if err := s.deleteRoomCascade(tx, id); err != nil {
				return err
			}
		}

		removed = int64(len(roomIDs))
		return nil
	})
	return removed, err
}

func (s *GORMStore) PruneTombstones(ctx context.Context, horizon int64) (int64, error) {
	result := s.db.WithContext(ctx).Exec(
		`DELETE FROM deleted_files
		 WHERE deleted_at_version <
		       (SELECT rooms.version FROM rooms WHERE rooms.id = deleted_files.room_id) - ?`,
		horizon,
	)
	return result.RowsAffected, result.Error
}
