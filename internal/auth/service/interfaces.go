package service

import (
	"context"
	"time"

	"featstack/internal/auth/models"
	jwttoken "featstack/internal/jwt_token"
)

// UserStore defines the persistence interface for user data.
// Error Contract: Find methods return sentinel.ErrNotFound when the entity
// doesn't exist; Create returns sentinel.DuplicateError on unique violations.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	UpdatePassword(ctx context.Context, userID, passwordHash string, at time.Time) error
}

// RefreshTokenStore defines the persistence interface for device sessions.
// Error Contract: Rotate returns sentinel.ErrNotFound when the old token does
// not match any row and sentinel.ErrExpired when the row's window has closed.
type RefreshTokenStore interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Rotate(ctx context.Context, oldToken, newToken string, expiresAt, now time.Time) (*models.RefreshToken, error)
	DeleteByUserAndToken(ctx context.Context, userID, token string) error
	DeleteByUser(ctx context.Context, userID string) (int, error)
	ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]*models.RefreshToken, error)
}

// ResetTokenStore defines the persistence interface for password reset tokens.
type ResetTokenStore interface {
	Upsert(ctx context.Context, token *models.PasswordResetToken) error
	Find(ctx context.Context, token string) (*models.PasswordResetToken, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// TokenIssuer signs access/refresh token pairs.
type TokenIssuer interface {
	IssuePair(userID, email, role string) (*jwttoken.TokenPair, error)
}

// NotificationSender delivers the password reset token to the user.
// Fire-and-forget from the session manager's perspective.
type NotificationSender interface {
	SendResetPasswordEmail(ctx context.Context, email, token string) error
}
