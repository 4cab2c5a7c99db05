package sync

import (
	"errors"
	"testing"
	"time"

	"github.com/livepaste/livepaste/pkg/models"
)

func TestSessionLifecycle(t *testing.T) {
	m := NewManager(Config{})

	session := m.Begin("abc12345", "editor-1", 3, 10)
	if session.Token == "" {
		t.Fatal("session token not assigned")
	}
	if session.Remaining() != 3 {
		t.Errorf("remaining = %d, want 3", session.Remaining())
	}

	received, remaining, err := m.RecordChunk(session.Token, "abc12345", 0, []string{"h1", "h2"})
	if err != nil {
		t.Fatalf("RecordChunk failed: %v", err)
	}
	if received != 1 || remaining != 2 {
		t.Errorf("after chunk 0: received=%d remaining=%d, want 1/2", received, remaining)
	}

	// A retried chunk lands in the same slot.
	received, remaining, err = m.RecordChunk(session.Token, "abc12345", 0, []string{"h1", "h2"})
	if err != nil {
		t.Fatalf("RecordChunk retry failed: %v", err)
	}
	if received != 1 || remaining != 2 {
		t.Errorf("after retry: received=%d remaining=%d, want 1/2", received, remaining)
	}

	if _, _, err := m.RecordChunk(session.Token, "abc12345", 1, []string{"h2", "h3"}); err != nil {
		t.Fatalf("RecordChunk failed: %v", err)
	}
	if _, _, err := m.RecordChunk(session.Token, "abc12345", 2, []string{"h4"}); err != nil {
		t.Fatalf("RecordChunk failed: %v", err)
	}

	taken, err := m.Take(session.Token, "abc12345")
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if len(taken.PathHashes) != 4 {
		t.Errorf("path union = %d hashes, want 4", len(taken.PathHashes))
	}
	if m.Len() != 0 {
		t.Errorf("sessions after Take = %d, want 0", m.Len())
	}

	// The token is single-use.
	if _, err := m.Take(session.Token, "abc12345"); !errors.Is(err, models.ErrSessionExpired) {
		t.Errorf("second Take = %v, want ErrSessionExpired", err)
	}
}

func TestSessionUnknownToken(t *testing.T) {
	m := NewManager(Config{})

	if _, _, err := m.RecordChunk("no-such-token", "abc12345", 0, nil); !errors.Is(err, models.ErrSessionExpired) {
		t.Errorf("RecordChunk = %v, want ErrSessionExpired", err)
	}
	if _, err := m.Take("no-such-token", "abc12345"); !errors.Is(err, models.ErrSessionExpired) {
		t.Errorf("Take = %v, want ErrSessionExpired", err)
	}
}

func TestSessionPeek(t *testing.T) {
	m := NewManager(Config{})
	session := m.Begin("abc12345", "editor-1", 2, 2)

	if err := m.Peek(session.Token, "abc12345"); err != nil {
		t.Errorf("Peek on a live session = %v, want nil", err)
	}
	if err := m.Peek("no-such-token", "abc12345"); !errors.Is(err, models.ErrSessionExpired) {
		t.Errorf("Peek unknown token = %v, want ErrSessionExpired", err)
	}
	if err := m.Peek(session.Token, "zzz99999"); !errors.Is(err, models.ErrSessionExpired) {
		t.Errorf("cross-room Peek = %v, want ErrSessionExpired", err)
	}

	// Peek is read-only: the session is still there to take.
	if _, err := m.Take(session.Token, "abc12345"); err != nil {
		t.Errorf("Take after Peek failed: %v", err)
	}
}

func TestSessionRoomMismatch(t *testing.T) {
	m := NewManager(Config{})
	session := m.Begin("abc12345", "editor-1", 1, 1)

	// A token minted for one room is worthless in another.
	if _, _, err := m.RecordChunk(session.Token, "zzz99999", 0, nil); !errors.Is(err, models.ErrSessionExpired) {
		t.Errorf("cross-room RecordChunk = %v, want ErrSessionExpired", err)
	}
	if _, err := m.Take(session.Token, "zzz99999"); !errors.Is(err, models.ErrSessionExpired) {
		t.Errorf("cross-room Take = %v, want ErrSessionExpired", err)
	}

	// The session survives the failed attempts.
	if _, err := m.Take(session.Token, "abc12345"); err != nil {
		t.Errorf("Take in the right room failed: %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	m := NewManager(Config{SessionTTL: 10 * time.Millisecond})
	session := m.Begin("abc12345", "editor-1", 2, 2)

	time.Sleep(25 * time.Millisecond)

	if _, _, err := m.RecordChunk(session.Token, "abc12345", 0, nil); !errors.Is(err, models.ErrSessionExpired) {
		t.Errorf("expired RecordChunk = %v, want ErrSessionExpired", err)
	}
	if m.Len() != 0 {
		t.Errorf("expired session not dropped on access")
	}
}

func TestSessionSweep(t *testing.T) {
	m := NewManager(Config{SessionTTL: 10 * time.Millisecond})
	m.Begin("abc12345", "editor-1", 1, 1)
	m.Begin("abc12345", "editor-2", 1, 1)

	time.Sleep(25 * time.Millisecond)

	if dropped := m.sweep(); dropped != 2 {
		t.Errorf("sweep dropped %d sessions, want 2", dropped)
	}
	if m.Len() != 0 {
		t.Errorf("sessions after sweep = %d, want 0", m.Len())
	}
}

func TestManagerStartStop(t *testing.T) {
	m := NewManager(Config{SessionTTL: time.Minute})
	m.Start()
	m.Stop()
}
