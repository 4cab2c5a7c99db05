package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/livepaste/livepaste/pkg/models"
	"github.com/livepaste/livepaste/pkg/store"
)

func TestConfigApplyDefaults(t *testing.T) {
	tests := []struct {
		name      string
		hours     int
		wantHours int
	}{
		{"zero takes default", 0, DefaultHours},
		{"below minimum clamps up", -5, MinHours},
		{"above maximum clamps down", 500, MaxHours},
		{"in range passes through", 72, 72},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Hours: tt.hours}
			cfg.ApplyDefaults()
			if cfg.Hours != tt.wantHours {
				t.Errorf("Hours = %d, want %d", cfg.Hours, tt.wantHours)
			}
			if cfg.SweepInterval != DefaultSweepInterval {
				t.Errorf("SweepInterval = %v, want %v", cfg.SweepInterval, DefaultSweepInterval)
			}
			if cfg.TombstoneHorizon != DefaultTombstoneHorizon {
				t.Errorf("TombstoneHorizon = %d, want %d", cfg.TombstoneHorizon, DefaultTombstoneHorizon)
			}
		})
	}
}

func newTestStore(t *testing.T) *store.GORMStore {
	t.Helper()
	s, err := store.New(&store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: ":memory:"},
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSweepDeletesExpiredRooms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	content := "c"
	if _, _, err := s.UpsertFile(ctx, "staleee1", store.FileUpsert{
		PathHash: "h1", PathEncrypted: "p1", ContentEncrypted: &content, IsSyncable: true,
	}); err != nil {
		t.Fatalf("UpsertFile failed: %v", err)
	}
	if _, _, err := s.UpsertFile(ctx, "freshhh1", store.FileUpsert{
		PathHash: "h1", PathEncrypted: "p1", ContentEncrypted: &content, IsSyncable: true,
	}); err != nil {
		t.Fatalf("UpsertFile failed: %v", err)
	}

	if err := s.DB().Model(&models.Room{}).
		Where("id = ?", "staleee1").
		Update("updated_at", time.Now().Add(-48*time.Hour)).Error; err != nil {
		t.Fatalf("failed to age room: %v", err)
	}

	sweeper := NewSweeper(s, Config{Hours: 24}, nil)
	sweeper.Sweep(ctx)

	if _, err := s.GetRoom(ctx, "staleee1"); !errors.Is(err, models.ErrRoomNotFound) {
		t.Errorf("expired room survived the sweep: %v", err)
	}
	if _, err := s.GetRoom(ctx, "freshhh1"); err != nil {
		t.Errorf("fresh room removed by the sweep: %v", err)
	}
}

func TestSweeperStartStop(t *testing.T) {
	s := newTestStore(t)
	sweeper := NewSweeper(s, Config{SweepInterval: time.Minute}, nil)

	sweeper.Start()
	sweeper.Start() // second Start is a no-op
	sweeper.Stop()
}
