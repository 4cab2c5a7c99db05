// Package sync tracks chunked upload sessions.
//
// Large workspace syncs arrive as a begin call, a series of chunk
// uploads, and a completion call that reconciles the room against the
// union of uploaded paths. Chunks persist their files immediately; the
// session only remembers which chunks arrived and which paths they
// carried. Sessions live in process memory, so an abandoned upload costs
// nothing but the map entry until the sweeper drops it.
package sync

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/livepaste/livepaste/internal/logger"
	"github.com/livepaste/livepaste/pkg/models"
)

const (
	// DefaultTTL is how long a session survives without activity.
	DefaultTTL = 5 * time.Minute

	// DefaultSweepInterval is how often expired sessions are collected.
	DefaultSweepInterval = time.Minute
)

// Config holds session manager configuration.
type Config struct {
	// SessionTTL is the session idle lifetime.
	SessionTTL time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`

	// SweepInterval is the delay between expiry sweeps.
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultTTL
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
}

// Session is one in-flight chunked upload.
type Session struct {
	Token       string
	RoomID      string
	ClientID    string
	TotalChunks int
	TotalFiles  int

	// ReceivedChunks records chunk indexes seen so far; retries land in
	// the same slot.
	ReceivedChunks map[int]struct{}

	// PathHashes is the union of file paths across received chunks. On
	// completion it becomes the keep set for room reconciliation.
	PathHashes map[string]struct{}

	StartedAt    time.Time
	LastActivity time.Time
}

// Remaining returns how many chunks have not arrived yet.
func (s *Session) Remaining() int {
	return s.TotalChunks - len(s.ReceivedChunks)
}

// Manager owns the session table and its expiry sweep.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	interval time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewManager creates a session manager from config.
func NewManager(cfg Config) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      cfg.SessionTTL,
		interval: cfg.SweepInterval,
		stopCh:   make(chan struct{}),
	}
}

// Begin opens a session and returns its token.
func (m *Manager) Begin(roomID, clientID string, totalChunks, totalFiles int) *Session {
	now := time.Now()
	session := &Session{
		Token:          uuid.New().String(),
		RoomID:         roomID,
		ClientID:       clientID,
		TotalChunks:    totalChunks,
		TotalFiles:     totalFiles,
		ReceivedChunks: make(map[int]struct{}),
		PathHashes:     make(map[string]struct{}),
		StartedAt:      now,
		LastActivity:   now,
	}

	m.mu.Lock()
	m.sessions[session.Token] = session
	m.mu.Unlock()

	logger.Debug("Sync session started",
		logger.KeyRoomID, roomID,
		logger.KeySessionID, session.Token,
		logger.KeyTotalChunks, totalChunks,
		logger.KeyFiles, totalFiles)

	return session
}

// RecordChunk marks a chunk as received and folds its paths into the
// session. Returns the counts of received and remaining chunks.
// Returns models.ErrSessionExpired when the token is unknown, expired,
// or bound to a different room.
func (m *Manager) RecordChunk(token, roomID string, chunkIndex int, pathHashes []string) (received, remaining int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.lookup(token, roomID)
	if !ok {
		return 0, 0, models.ErrSessionExpired
	}

	session.ReceivedChunks[chunkIndex] = struct{}{}
	for _, hash := range pathHashes {
		session.PathHashes[hash] = struct{}{}
	}
	session.LastActivity = time.Now()

	return len(session.ReceivedChunks), session.Remaining(), nil
}

// Peek checks that a live session exists for the room without consuming
// it or refreshing its activity clock. Returns models.ErrSessionExpired
// when the token is unknown, expired, or bound to a different room.
func (m *Manager) Peek(token, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookup(token, roomID); !ok {
		return models.ErrSessionExpired
	}
	return nil
}

// Take removes the session and returns it for completion.
// Returns models.ErrSessionExpired when the token is unknown, expired,
// or bound to a different room.
func (m *Manager) Take(token, roomID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.lookup(token, roomID)
	if !ok {
		return nil, models.ErrSessionExpired
	}

	delete(m.sessions, token)
	return session, nil
}

// lookup fetches a live session for the room; callers hold the mutex.
// Expired entries found along the way are dropped immediately rather
// than waiting for the sweeper.
func (m *Manager) lookup(token, roomID string) (*Session, bool) {
	session, ok := m.sessions[token]
	if !ok {
		return nil, false
	}
	if time.Since(session.LastActivity) > m.ttl {
		delete(m.sessions, token)
		return nil, false
	}
	if session.RoomID != roomID {
		return nil, false
	}
	return session, true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Start launches the background expiry sweep.
func (m *Manager) Start() {
	m.wg.Add(1)
	go m.sweepLoop()
	logger.Debug("Sync session sweeper started", "ttl", m.ttl)
}

// Stop halts the sweep and waits for it to exit.
func (m *Manager) Stop() {
	close(m.stopCh)
	m.wg.Wait()
}

func (m *Manager) sweepLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			if n := m.sweep(); n > 0 {
				logger.Debug("Expired sync sessions dropped", logger.KeyCount, n)
			}
		}
	}
}

func (m *Manager) sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for token, session := range m.sessions {
		if time.Since(session.LastActivity) > m.ttl {
			delete(m.sessions, token)
			dropped++
		}
	}
	return dropped
}
