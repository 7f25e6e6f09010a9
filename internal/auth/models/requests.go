package models

import (
	"strings"

	"featstack/pkg/validation"
)

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"firstName,omitempty" validate:"max=100"`
	LastName  string `json:"lastName,omitempty" validate:"max=100"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
}

func (r *RegisterRequest) Validate() error {
	return validation.Validate(r)
}

// LoginRequest exchanges credentials for a token pair.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	return validation.Validate(r)
}

// RefreshRequest exchanges a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required,notblank"`
}

func (r *RefreshRequest) Validate() error {
	return validation.Validate(r)
}

// LogoutRequest ends the session identified by the refresh token.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required,notblank"`
}

func (r *LogoutRequest) Validate() error {
	return validation.Validate(r)
}

// ForgotPasswordRequest starts the password reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ForgotPasswordRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *ForgotPasswordRequest) Validate() error {
	return validation.Validate(r)
}

// ResetPasswordRequest completes the password reset flow.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required,notblank"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

func (r *ResetPasswordRequest) Validate() error {
	return validation.Validate(r)
}

// CreateUserRequest is the admin variant of registration, allowing a role.
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"firstName,omitempty" validate:"max=100"`
	LastName  string `json:"lastName,omitempty" validate:"max=100"`
	Role      string `json:"role,omitempty" validate:"omitempty,oneof=USER ADMIN MODERATOR"`
}

func (r *CreateUserRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
}

func (r *CreateUserRequest) Validate() error {
	return validation.Validate(r)
}

// UpdateUserRequest patches an existing user. All fields are optional.
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Username  *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,max=100"`
	Role      *string `json:"role,omitempty" validate:"omitempty,oneof=USER ADMIN MODERATOR"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

func (r *UpdateUserRequest) Normalize() {
	if r.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &email
	}
	if r.Username != nil {
		username := strings.TrimSpace(*r.Username)
		r.Username = &username
	}
}

func (r *UpdateUserRequest) Validate() error {
	return validation.Validate(r)
}
