package service

import (
	"context"
	"errors"

	"featstack/internal/auth/models"
	"featstack/internal/platform/tracer"
	"featstack/pkg/sentinel"
)

// Logout ends the device session matching the user and refresh token.
// Idempotent and swallow-on-error: logout always appears to succeed to the
// caller; underlying failures are logged for operability.
func (s *Service) Logout(ctx context.Context, userID, refreshToken string) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanLogout,
		tracer.String(tracer.AttrUserID, userID),
	)
	defer span.End(nil)

	if err := s.refreshTokens.DeleteByUserAndToken(ctx, userID, refreshToken); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Session already gone: a double logout or an expired token that
			// the cleanup worker swept. Not a failure worth a warning.
			s.logger.DebugContext(ctx, "logout found no session", "user_id", userID)
			return
		}
		s.logger.WarnContext(ctx, "logout failed", "user_id", userID, "error", err)
		return
	}

	s.logEvent(ctx, "user_logged_out", "user_id", userID)
	s.decrementActiveSessions(1)
}

// LogoutAll ends every device session of the user. Same swallow-on-error
// policy as Logout.
func (s *Service) LogoutAll(ctx context.Context, userID string) *models.LogoutAllResult {
	ctx, span := s.tracer.Start(ctx, tracer.SpanLogoutAll,
		tracer.String(tracer.AttrUserID, userID),
	)
	defer span.End(nil)

	deleted, err := s.refreshTokens.DeleteByUser(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "logout all failed", "user_id", userID, "error", err)
		return &models.LogoutAllResult{}
	}

	s.logEvent(ctx, "user_logged_out_all", "user_id", userID, "revoked", deleted)
	s.decrementActiveSessions(deleted)
	span.SetAttributes(tracer.Int64(tracer.AttrSessions, int64(deleted)))

	return &models.LogoutAllResult{RevokedCount: deleted}
}
