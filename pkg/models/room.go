// Package models provides shared domain types for the LivePaste server.
//
// This package contains all data models persisted by the room store,
// including rooms, files, operations, deletion tombstones, and changesets.
// It provides a single source of truth for domain types with GORM
// annotations for database persistence. Every user-origin text field is
// ciphertext produced by the client; the server never parses it.
package models

import (
	"crypto/rand"
	"regexp"
	"time"
)

// RoomIDLength is the length of every room identifier.
const RoomIDLength = 8

// roomIDAlphabet is the character set for generated room IDs, giving a
// 62^8 identifier space.
const roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{8}$`)

// Room is the top-level container shared by collaborating clients. It is
// the concurrency and authorization boundary: every mutation serializes on
// the room row and bumps Version, and the optional password guards all
// non-public endpoints.
type Room struct {
	ID string `gorm:"primaryKey;size:8" json:"id"`

	// Version increases on every successful mutation of room state and is
	// the basis for delta-sync polling.
	Version int64 `gorm:"not null;default:0" json:"version"`

	// OpSeq increases independently of Version and stamps each operation
	// log entry with its position in the room's total order.
	OpSeq int64 `gorm:"not null;default:0" json:"op_seq"`

	// PasswordHash is the bcrypt hash of the client-side SHA-256 digest,
	// or empty when the room is open.
	PasswordHash string `gorm:"size:255" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for Room.
func (Room) TableName() string {
	return "rooms"
}

// HasPassword reports whether the room requires a password.
func (r *Room) HasPassword() bool {
	return r.PasswordHash != ""
}

// ValidRoomID reports whether id is a well-formed room identifier:
// exactly eight case-sensitive alphanumeric characters.
func ValidRoomID(id string) bool {
	return roomIDPattern.MatchString(id)
}

// NewRoomID generates a random room identifier from the 62-character
// alphabet using rejection sampling to keep the distribution uniform.
func NewRoomID() (string, error) {
	// Largest multiple of len(roomIDAlphabet) below 256.
	const limit = 248

	id := make([]byte, 0, RoomIDLength)
	buf := make([]byte, RoomIDLength*2)
	for len(id) < RoomIDLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			id = append(id, roomIDAlphabet[int(b)%len(roomIDAlphabet)])
			if len(id) == RoomIDLength {
				break
			}
		}
	}
	return string(id), nil
}
