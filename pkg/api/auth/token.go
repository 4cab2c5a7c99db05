// Package auth issues and validates short-lived room access tokens.
//
// A client that proves knowledge of a room's password receives a token
// scoped to that single room. Subsequent requests present the token as a
// Bearer credential instead of resending the password digest.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the room token lifetime when none is configured.
const DefaultTTL = 15 * time.Minute

var (
	// ErrInvalidToken is returned when a token fails validation for any
	// reason other than expiry.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token's lifetime has passed.
	ErrExpiredToken = errors.New("token expired")
)

// Config holds token service configuration.
type Config struct {
	// Secret signs tokens. When empty a random per-process secret is
	// generated, which invalidates outstanding tokens on restart.
	Secret string `mapstructure:"token_secret" yaml:"token_secret"`

	// TTL is the token lifetime.
	TTL time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

// roomClaims binds a token to a single room.
type roomClaims struct {
	jwt.RegisteredClaims
	RoomID string `json:"room_id"`
}

// RoomTokenService mints and validates room-scoped access tokens.
type RoomTokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewRoomTokenService creates a token service from config, generating an
// ephemeral signing secret when none is provided.
func NewRoomTokenService(cfg Config) (*RoomTokenService, error) {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
		secret = []byte(hex.EncodeToString(buf))
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RoomTokenService{secret: secret, ttl: ttl}, nil
}

// Mint issues a token for the given room. Returns the signed token and
// its lifetime in seconds.
func (s *RoomTokenService) Mint(roomID string) (string, int, error) {
	now := time.Now()
	claims := roomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "livepaste",
			Subject:   roomID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		RoomID: roomID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign room token: %w", err)
	}
	return token, int(s.ttl.Seconds()), nil
}

// Validate checks a token's signature and expiry and confirms it was
// minted for the given room.
func (s *RoomTokenService) Validate(tokenString, roomID string) error {
	token, err := jwt.ParseWithClaims(tokenString, &roomClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}

	claims, ok := token.Claims.(*roomClaims)
	if !ok || !token.Valid {
		return ErrInvalidToken
	}
	if claims.RoomID != roomID {
		return ErrInvalidToken
	}
	return nil
}
