package models

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the default cost parameter for bcrypt hashing.
// Cost 10 provides a good balance between security and performance.
const DefaultBcryptCost = 10

// Password validation errors.
var (
	// ErrInvalidCredentials is returned when a presented digest does not
	// verify against the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPasswordTooShort is returned when a password is too short.
	ErrPasswordTooShort = errors.New("password must be at least 4 characters")

	// ErrPasswordTooLong is returned when a password is too long.
	// bcrypt has a maximum input length of 72 bytes.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
)

// Password length constraints. The server receives the client-side SHA-256
// hex digest (64 characters) rather than the raw password, so in practice
// only malformed requests hit these bounds.
const (
	// MinPasswordLength is the minimum accepted password digest length.
	MinPasswordLength = 4

	// MaxPasswordLength is the maximum accepted password digest length.
	// bcrypt silently truncates at 72 bytes, so we enforce this limit.
	MaxPasswordLength = 72
)

// HashPassword creates a bcrypt hash of the given password digest.
func HashPassword(digest string) (string, error) {
	if err := ValidatePassword(digest); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(digest), DefaultBcryptCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyPassword checks if a password digest matches a bcrypt hash.
// bcrypt's comparison is constant-time.
func VerifyPassword(digest, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(digest))
	return err == nil
}

// ValidatePassword checks if a password digest meets the length bounds.
func ValidatePassword(digest string) error {
	if len(digest) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(digest) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}
