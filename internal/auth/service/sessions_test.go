package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"featstack/internal/auth/models"
	dErrors "featstack/pkg/domain-errors"
)

func (s *ServiceSuite) TestSessions() {
	userID := uuid.NewString()

	newSession := func(token, ua string, age time.Duration) *models.RefreshToken {
		return &models.RefreshToken{
			ID:        uuid.NewString(),
			UserID:    userID,
			Token:     token,
			UserAgent: ua,
			CreatedAt: time.Now().Add(-age),
			ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		}
	}

	s.T().Run("happy path - device names and current marker", func(t *testing.T) {
		chrome := newSession("tok-1", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36", time.Hour)
		bare := newSession("tok-2", "", 2*time.Hour)

		s.mockRefreshStore.EXPECT().ListActiveByUser(gomock.Any(), userID, gomock.Any()).
			Return([]*models.RefreshToken{chrome, bare}, nil)

		result, err := s.service.Sessions(context.Background(), userID, "tok-2")
		require.NoError(t, err)
		require.Len(t, result.Sessions, 2)

		assert.Equal(t, chrome.ID, result.Sessions[0].ID)
		assert.Contains(t, result.Sessions[0].Device, "Chrome")
		assert.Contains(t, result.Sessions[0].Device, "Windows")
		assert.False(t, result.Sessions[0].IsCurrent)

		assert.Equal(t, "Unknown device", result.Sessions[1].Device)
		assert.True(t, result.Sessions[1].IsCurrent)
	})

	s.T().Run("no current token - nothing marked current", func(t *testing.T) {
		session := newSession("tok-1", "curl/8.5.0", time.Minute)
		s.mockRefreshStore.EXPECT().ListActiveByUser(gomock.Any(), userID, gomock.Any()).
			Return([]*models.RefreshToken{session}, nil)

		result, err := s.service.Sessions(context.Background(), userID, "")
		require.NoError(t, err)
		require.Len(t, result.Sessions, 1)
		assert.False(t, result.Sessions[0].IsCurrent)
	})

	s.T().Run("no sessions - empty list, not nil", func(t *testing.T) {
		s.mockRefreshStore.EXPECT().ListActiveByUser(gomock.Any(), userID, gomock.Any()).
			Return(nil, nil)

		result, err := s.service.Sessions(context.Background(), userID, "")
		require.NoError(t, err)
		assert.NotNil(t, result.Sessions)
		assert.Empty(t, result.Sessions)
	})

	s.T().Run("store failure - internal", func(t *testing.T) {
		s.mockRefreshStore.EXPECT().ListActiveByUser(gomock.Any(), userID, gomock.Any()).
			Return(nil, assert.AnError)

		_, err := s.service.Sessions(context.Background(), userID, "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
