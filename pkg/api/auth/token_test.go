package auth

import (
	"errors"
	"testing"
	"time"
)

func TestMintAndValidate(t *testing.T) {
	svc, err := NewRoomTokenService(Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("NewRoomTokenService failed: %v", err)
	}

	token, expiresIn, err := svc.Mint("abc12345")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if token == "" {
		t.Fatal("Mint returned an empty token")
	}
	if expiresIn != int(DefaultTTL.Seconds()) {
		t.Errorf("expiresIn = %d, want %d", expiresIn, int(DefaultTTL.Seconds()))
	}

	if err := svc.Validate(token, "abc12345"); err != nil {
		t.Errorf("Validate rejected a fresh token: %v", err)
	}
}

func TestValidateWrongRoom(t *testing.T) {
	svc, _ := NewRoomTokenService(Config{Secret: "test-secret"})

	token, _, err := svc.Mint("abc12345")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	if err := svc.Validate(token, "other123"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token for another room accepted: %v", err)
	}
}

func TestValidateExpired(t *testing.T) {
	svc, _ := NewRoomTokenService(Config{Secret: "test-secret", TTL: -time.Minute})

	token, _, err := svc.Mint("abc12345")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	if err := svc.Validate(token, "abc12345"); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expired token accepted: %v", err)
	}
}

func TestValidateGarbage(t *testing.T) {
	svc, _ := NewRoomTokenService(Config{Secret: "test-secret"})

	if err := svc.Validate("not-a-jwt", "abc12345"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token accepted: %v", err)
	}
}

func TestDifferentSecretsRejected(t *testing.T) {
	a, _ := NewRoomTokenService(Config{Secret: "secret-a"})
	b, _ := NewRoomTokenService(Config{Secret: "secret-b"})

	token, _, err := a.Mint("abc12345")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if err := b.Validate(token, "abc12345"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token signed with another secret accepted: %v", err)
	}
}

func TestEphemeralSecret(t *testing.T) {
	// Two services without a configured secret must not trust each
	// other's tokens.
	a, err := NewRoomTokenService(Config{})
	if err != nil {
		t.Fatalf("NewRoomTokenService failed: %v", err)
	}
	b, _ := NewRoomTokenService(Config{})

	token, _, err := a.Mint("abc12345")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if err := a.Validate(token, "abc12345"); err != nil {
		t.Errorf("service rejected its own token: %v", err)
	}
	if err := b.Validate(token, "abc12345"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ephemeral secrets shared across instances: %v", err)
	}
}
