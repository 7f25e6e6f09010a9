package models

import (
	"time"
)

// This file contains pure domain models for authentication: entities
// that should not depend on transport or HTTP-specific concerns.

// Role classifies a user's permission level.
type Role string

const (
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// User represents a registered account.
// This is a pure domain entity - use UserResult for JSON responses.
// PasswordHash never leaves the service layer.
type User struct {
	ID              string
	Email           string
	Username        string
	FirstName       string
	LastName        string
	PasswordHash    string
	Role            Role
	IsActive        bool
	IsEmailVerified bool
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RefreshToken is one device session: the currently valid refresh token for
// one login, rotated in place on every refresh.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	UserAgent string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has passed its expiry.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// PasswordResetToken is a pending reset capability. At most one exists per
// user; requesting again replaces it.
type PasswordResetToken struct {
	UserID    string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the reset window has closed.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
