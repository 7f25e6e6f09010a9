package models

import "time"

// This file contains transport-layer response models for JSON output.
// These are shaped for API responses and should avoid domain behavior.

// UserResult is the sanitized user payload. It never carries the password hash.
type UserResult struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	FirstName       string     `json:"firstName,omitempty"`
	LastName        string     `json:"lastName,omitempty"`
	Role            string     `json:"role"`
	IsActive        bool       `json:"isActive"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// NewUserResult strips the password hash from a domain user.
func NewUserResult(u *User) UserResult {
	return UserResult{
		ID:              u.ID,
		Email:           u.Email,
		Username:        u.Username,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            string(u.Role),
		IsActive:        u.IsActive,
		IsEmailVerified: u.IsEmailVerified,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// AuthResult is the response payload for register, login, and refresh.
type AuthResult struct {
	User         UserResult `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

// SessionSummary represents one active device session for display to the user.
type SessionSummary struct {
	ID        string    `json:"id"`
	Device    string    `json:"device"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsCurrent bool      `json:"isCurrent"`
}

// SessionsResult is the response to a list sessions request.
type SessionsResult struct {
	Sessions []SessionSummary `json:"sessions"`
}

// LogoutAllResult reports how many sessions were revoked during logout-all.
type LogoutAllResult struct {
	RevokedCount int `json:"revokedCount"`
}

// MessageResult is a generic acknowledgement payload.
type MessageResult struct {
	Message string `json:"message"`
}

// UsersResult is one page of an admin user listing.
type UsersResult struct {
	Users      []UserResult `json:"users"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"totalPages"`
}
