// Package cleanup periodically removes expired refresh sessions and
// password reset tokens from the stores.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RefreshTokenStore exposes cleanup for expired device sessions.
type RefreshTokenStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// ResetTokenStore exposes cleanup for expired password reset tokens.
type ResetTokenStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Result summarizes the deletions performed by a cleanup run.
type Result struct {
	DeletedRefreshTokens int
	DeletedResetTokens   int
}

// Service periodically removes expired auth artifacts.
type Service struct {
	refreshTokens RefreshTokenStore
	resets        ResetTokenStore
	interval      time.Duration
	logger        *slog.Logger
}

// Option configures Service.
type Option func(*Service)

// WithInterval overrides the cleanup interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithLogger overrides the logger used for cleanup errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Service with required stores and options applied.
func New(refreshTokens RefreshTokenStore, resets ResetTokenStore, opts ...Option) (*Service, error) {
	if refreshTokens == nil || resets == nil {
		return nil, fmt.Errorf("refreshTokens and resets are required")
	}
	svc := &Service{
		refreshTokens: refreshTokens,
		resets:        resets,
		interval:      time.Hour,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "auth cleanup failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single cleanup pass over both stores. Errors from one
// store do not stop the other; they are aggregated and returned.
func (s *Service) RunOnce(ctx context.Context) (Result, error) {
	now := time.Now()
	var res Result
	var errs []error

	deletedRefresh, err := s.refreshTokens.DeleteExpired(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete expired refresh tokens: %w", err))
	} else {
		res.DeletedRefreshTokens = deletedRefresh
	}

	deletedResets, err := s.resets.DeleteExpired(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete expired reset tokens: %w", err))
	} else {
		res.DeletedResetTokens = deletedResets
	}

	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}

	if res.DeletedRefreshTokens > 0 || res.DeletedResetTokens > 0 {
		s.logger.InfoContext(ctx, "auth cleanup completed",
			"deleted_refresh_tokens", res.DeletedRefreshTokens,
			"deleted_reset_tokens", res.DeletedResetTokens,
		)
	}
	return res, nil
}
