package service

import (
	"context"
	"time"

	"github.com/mssola/useragent"

	"featstack/internal/auth/models"
	dErrors "featstack/pkg/domain-errors"
)

// Sessions lists the caller's active refresh sessions, newest first.
// currentToken, when non-empty, marks the session the caller is using.
func (s *Service) Sessions(ctx context.Context, userID, currentToken string) (*models.SessionsResult, error) {
	records, err := s.refreshTokens.ListActiveByUser(ctx, userID, time.Now())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to list sessions")
	}

	sessions := make([]models.SessionSummary, 0, len(records))
	for _, record := range records {
		sessions = append(sessions, models.SessionSummary{
			ID:        record.ID,
			Device:    deviceName(record.UserAgent),
			CreatedAt: record.CreatedAt,
			ExpiresAt: record.ExpiresAt,
			IsCurrent: currentToken != "" && record.Token == currentToken,
		})
	}

	return &models.SessionsResult{Sessions: sessions}, nil
}

// deviceName renders a user agent string as a short human-readable label.
func deviceName(rawUA string) string {
	if rawUA == "" {
		return "Unknown device"
	}
	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	os := ua.OS()
	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	case os != "":
		return os
	default:
		return "Unknown device"
	}
}
