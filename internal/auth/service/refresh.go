package service

import (
	"context"
	"time"

	"featstack/internal/auth/models"
	"featstack/internal/platform/tracer"
	dErrors "featstack/pkg/domain-errors"
)

// Refresh exchanges a live refresh token for a fresh token pair, rotating the
// stored token in place. Rotation is one-shot: the compare-and-swap in the
// store guarantees that of two concurrent refreshes with the same token only
// one succeeds and the other fails Unauthorized.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (result *models.AuthResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRefresh)
	defer func() { span.End(err) }()

	record, err := s.refreshTokens.Find(ctx, refreshToken)
	if err != nil {
		return nil, s.refreshUnauthorized(ctx, err, "")
	}

	now := time.Now()
	if record.Expired(now) {
		s.authFailure(ctx, "refresh_token_expired", "user_id", record.UserID)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired refresh token")
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		return nil, s.refreshUnauthorized(ctx, err, record.UserID)
	}
	if !user.IsActive {
		s.authFailure(ctx, "inactive_account", "user_id", user.ID)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "User is inactive")
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to generate tokens")
	}

	// The old token string dies here; presenting it again finds no row.
	if _, err := s.refreshTokens.Rotate(ctx, refreshToken, pair.RefreshToken, now.Add(s.cfg.RefreshTokenTTL), now); err != nil {
		return nil, s.refreshUnauthorized(ctx, err, user.ID)
	}

	s.logEvent(ctx, "token_refreshed", "user_id", user.ID)
	s.incrementTokenRefreshes()
	span.SetAttributes(tracer.String(tracer.AttrUserID, user.ID))

	return &models.AuthResult{
		User:         models.NewUserResult(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}
