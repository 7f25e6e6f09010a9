package service

import (
	"context"

	"featstack/internal/platform/middleware"
)

// logEvent records a structured lifecycle event. The request id travels in
// the context when the call came through the HTTP layer.
func (s *Service) logEvent(ctx context.Context, event string, attrs ...any) {
	attrs = append(attrs, "event", event)
	if requestID := middleware.GetRequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	s.logger.InfoContext(ctx, event, attrs...)
}

// authFailure logs a rejected authentication attempt and counts it.
func (s *Service) authFailure(ctx context.Context, reason string, attrs ...any) {
	attrs = append(attrs, "reason", reason)
	s.logger.WarnContext(ctx, "authentication failure", attrs...)
	if s.metrics != nil {
		s.metrics.IncrementAuthFailures()
	}
}

func (s *Service) incrementUsersCreated() {
	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}
}

func (s *Service) incrementLogins() {
	if s.metrics != nil {
		s.metrics.IncrementLogins()
	}
}

func (s *Service) incrementTokenRefreshes() {
	if s.metrics != nil {
		s.metrics.IncrementTokenRefreshes()
	}
}

func (s *Service) incrementActiveSessions(n int) {
	if s.metrics != nil {
		s.metrics.IncrementActiveSessions(n)
	}
}

func (s *Service) decrementActiveSessions(n int) {
	if s.metrics != nil {
		s.metrics.DecrementActiveSessions(n)
	}
}

func (s *Service) incrementResetRequests() {
	if s.metrics != nil {
		s.metrics.IncrementResetRequests()
	}
}

func (s *Service) incrementResetCompleted() {
	if s.metrics != nil {
		s.metrics.IncrementResetCompleted()
	}
}
