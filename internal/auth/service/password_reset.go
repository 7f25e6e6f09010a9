package service

import (
	"context"
	"time"

	"featstack/internal/auth/models"
	"featstack/internal/platform/tracer"
	dErrors "featstack/pkg/domain-errors"
	"featstack/pkg/secrets"
)

// RequestPasswordReset starts the reset flow. The response is deliberately
// identical whether or not the email exists, so the endpoint cannot be used
// to enumerate accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanResetRequest,
		tracer.String(tracer.AttrEmailHash, tracer.HashEmail(email)),
	)
	defer func() { span.End(err) }()

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		// Unknown email: succeed with no observable side effect.
		s.logger.DebugContext(ctx, "password reset requested for unknown email")
		return nil
	}

	token, err := secrets.GenerateToken()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "Failed to generate reset token")
	}

	now := time.Now()
	record := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.ResetTokenTTL),
	}
	if err := s.resets.Upsert(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "Failed to save reset token")
	}

	s.logEvent(ctx, "password_reset_requested", "user_id", user.ID)
	s.incrementResetRequests()

	// Fire-and-forget: the caller never learns whether delivery worked.
	if s.notifier != nil {
		if err := s.notifier.SendResetPasswordEmail(ctx, user.Email, token); err != nil {
			s.logger.ErrorContext(ctx, "failed to send reset password email",
				"user_id", user.ID, "error", err)
		}
	}

	return nil
}

// CompletePasswordReset consumes a reset token and installs the new password.
// Existing refresh tokens deliberately stay valid; revoking them here would
// change the externally observable contract.
func (s *Service) CompletePasswordReset(ctx context.Context, token, newPassword string) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanResetComplete)
	defer func() { span.End(err) }()

	record, err := s.resets.Find(ctx, token)
	if err != nil {
		s.authFailure(ctx, "reset_token_not_found")
		return dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")
	}

	now := time.Now()
	if record.Expired(now) {
		s.authFailure(ctx, "reset_token_expired", "user_id", record.UserID)
		return dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")
	}

	hash, err := secrets.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, record.UserID, hash, now); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "Failed to reset password")
	}
	if err := s.resets.DeleteByUser(ctx, record.UserID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "Failed to reset password")
	}

	s.logEvent(ctx, "password_reset_completed", "user_id", record.UserID)
	s.incrementResetCompleted()
	span.SetAttributes(tracer.String(tracer.AttrUserID, record.UserID))

	return nil
}
