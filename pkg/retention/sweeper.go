// Package retention implements the background sweep that removes idle
// rooms and stale deletion tombstones.
package retention

import (
	"context"
	"sync"
	"time"

	"github.com/livepaste/livepaste/internal/logger"
	"github.com/livepaste/livepaste/pkg/metrics"
	"github.com/livepaste/livepaste/pkg/store"
)

const (
	// DefaultHours is how long a room survives without a write.
	DefaultHours = 24

	// MinHours and MaxHours bound the configurable retention window.
	MinHours = 1
	MaxHours = 120

	// DefaultSweepInterval is how often the sweep runs.
	DefaultSweepInterval = time.Hour

	// DefaultTombstoneHorizon is how many room versions a tombstone may
	// trail its room before being pruned. Clients further behind than
	// this fall back to a full fetch anyway.
	DefaultTombstoneHorizon = 100
)

// Config holds retention sweeper configuration.
type Config struct {
	// Hours is the room idle lifetime; clamped to [MinHours, MaxHours].
	// Bound to RETENTION_HOURS.
	Hours int `mapstructure:"hours" yaml:"hours"`

	// SweepInterval is the delay between sweeps.
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`

	// TombstoneHorizon is the version distance beyond which tombstones
	// are pruned.
	TombstoneHorizon int64 `mapstructure:"tombstone_horizon" yaml:"tombstone_horizon"`
}

// ApplyDefaults fills in missing configuration with default values and
// clamps Hours into its legal range.
func (c *Config) ApplyDefaults() {
	if c.Hours == 0 {
		c.Hours = DefaultHours
	}
	if c.Hours < MinHours {
		c.Hours = MinHours
	}
	if c.Hours > MaxHours {
		c.Hours = MaxHours
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.TombstoneHorizon <= 0 {
		c.TombstoneHorizon = DefaultTombstoneHorizon
	}
}

// Sweeper periodically deletes rooms idle past the retention window and
// prunes tombstones their rooms have long outgrown.
type Sweeper struct {
	store   store.Store
	config  Config
	metrics metrics.RoomMetrics

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewSweeper creates a retention sweeper. A nil metrics value disables
// instrumentation.
func NewSweeper(st store.Store, cfg Config, m metrics.RoomMetrics) *Sweeper {
	cfg.ApplyDefaults()
	return &Sweeper{
		store:   st,
		config:  cfg,
		metrics: m,
		stopCh:  make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	logger.Info("Retention sweeper started",
		"hours", s.config.Hours,
		"sweep_interval", s.config.SweepInterval)

	s.wg.Add(1)
	go s.loop()
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	logger.Info("Retention sweeper stopped")
}

func (s *Sweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Sweep(context.Background())
		}
	}
}

// Sweep runs one retention pass. Exported so the sweep can be driven
// directly in tests and by operational tooling.
func (s *Sweeper) Sweep(ctx context.Context) {
	start := time.Now()
	cutoff := start.Add(-time.Duration(s.config.Hours) * time.Hour)

	rooms, err := s.store.DeleteExpiredRooms(ctx, cutoff)
	if err != nil {
		logger.Error("Retention sweep failed to delete expired rooms", logger.KeyError, err.Error())
	} else if rooms > 0 {
		metrics.ObserveRoomsDeleted(s.metrics, "expired", int(rooms))
	}

	tombstones, err := s.store.PruneTombstones(ctx, s.config.TombstoneHorizon)
	if err != nil {
		logger.Error("Retention sweep failed to prune tombstones", logger.KeyError, err.Error())
	} else if tombstones > 0 {
		metrics.ObserveTombstonesPruned(s.metrics, int(tombstones))
	}

	if rooms > 0 || tombstones > 0 {
		logger.Info("Retention sweep completed",
			"rooms_deleted", rooms,
			"tombstones_pruned", tombstones,
			logger.KeyDurationMs, logger.Duration(start))
	} else {
		logger.Debug("Retention sweep found nothing to remove",
			logger.KeyDurationMs, logger.Duration(start))
	}
}
