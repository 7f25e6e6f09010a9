package notification

import (
	"context"
	"log/slog"
)

// LogSender is the no-broker fallback for local development. It logs the
// reset link instead of delivering it anywhere.
type LogSender struct {
	logger      *slog.Logger
	frontendURL string
}

func NewLogSender(logger *slog.Logger, frontendURL string) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger, frontendURL: frontendURL}
}

func (s *LogSender) SendResetPasswordEmail(ctx context.Context, email, token string) error {
	s.logger.InfoContext(ctx, "password reset requested",
		"email", email,
		"reset_url", resetURL(s.frontendURL, token),
	)
	return nil
}
