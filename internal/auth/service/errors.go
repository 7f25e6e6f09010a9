package service

import (
	"context"
	"errors"

	dErrors "featstack/pkg/domain-errors"
	"featstack/pkg/sentinel"
)

// Error translation: sentinel errors from the stores become domain errors at
// the service boundary, never leaking storage vocabulary to callers.

// refreshUnauthorized maps any store failure during refresh onto the single
// "Invalid or expired refresh token" contract, falling back to Internal for
// infrastructure failures.
func (s *Service) refreshUnauthorized(ctx context.Context, err error, userID string) error {
	attrs := []any{}
	if userID != "" {
		attrs = append(attrs, "user_id", userID)
	}

	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		s.authFailure(ctx, "refresh_token_not_found", attrs...)
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, "Invalid or expired refresh token")
	case errors.Is(err, sentinel.ErrExpired):
		s.authFailure(ctx, "refresh_token_expired", attrs...)
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, "Invalid or expired refresh token")
	default:
		s.logger.ErrorContext(ctx, "refresh token lookup failed", append(attrs, "error", err)...)
		return dErrors.Wrap(err, dErrors.CodeInternal, "Failed to refresh token")
	}
}
