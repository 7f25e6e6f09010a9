package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"featstack/pkg/sentinel"
)

func (s *ServiceSuite) TestLogout() {
	userID := uuid.NewString()
	const token = "refresh-jwt"

	s.T().Run("happy path - session deleted", func(t *testing.T) {
		s.mockRefreshStore.EXPECT().DeleteByUserAndToken(gomock.Any(), userID, token).Return(nil)

		s.service.Logout(context.Background(), userID, token)
	})

	s.T().Run("store failure is swallowed", func(t *testing.T) {
		s.mockRefreshStore.EXPECT().DeleteByUserAndToken(gomock.Any(), userID, token).
			Return(assert.AnError)

		// No panic, no error surfaced to the caller.
		s.service.Logout(context.Background(), userID, token)
	})

	s.T().Run("unknown session is quiet, store failure warns", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil)) // info level: debug lines suppressed
		svc := New(
			s.mockUserStore,
			s.mockRefreshStore,
			s.mockResetStore,
			s.mockTokens,
			Config{BcryptCost: bcrypt.MinCost, RefreshTokenTTL: 7 * 24 * time.Hour, ResetTokenTTL: time.Hour},
			WithLogger(logger),
		)

		// Double logout: the session row is already gone. Idempotent, so
		// nothing warn-worthy should reach the log.
		s.mockRefreshStore.EXPECT().DeleteByUserAndToken(gomock.Any(), userID, token).
			Return(fmt.Errorf("refresh token not found: %w", sentinel.ErrNotFound))
		svc.Logout(context.Background(), userID, token)
		assert.NotContains(t, buf.String(), "logout failed")

		// A real store failure still warns.
		buf.Reset()
		s.mockRefreshStore.EXPECT().DeleteByUserAndToken(gomock.Any(), userID, token).
			Return(assert.AnError)
		svc.Logout(context.Background(), userID, token)
		assert.Contains(t, buf.String(), "logout failed")
	})
}

func (s *ServiceSuite) TestLogoutAll() {
	userID := uuid.NewString()

	s.T().Run("happy path - reports revoked session count", func(t *testing.T) {
		s.mockRefreshStore.EXPECT().DeleteByUser(gomock.Any(), userID).Return(3, nil)

		result := s.service.LogoutAll(context.Background(), userID)
		assert.Equal(t, 3, result.RevokedCount)
	})

	s.T().Run("no sessions - zero count", func(t *testing.T) {
		s.mockRefreshStore.EXPECT().DeleteByUser(gomock.Any(), userID).Return(0, nil)

		result := s.service.LogoutAll(context.Background(), userID)
		assert.Equal(t, 0, result.RevokedCount)
	})

	s.T().Run("store failure is swallowed", func(t *testing.T) {
		s.mockRefreshStore.EXPECT().DeleteByUser(gomock.Any(), userID).Return(0, assert.AnError)

		result := s.service.LogoutAll(context.Background(), userID)
		assert.Equal(t, 0, result.RevokedCount)
	})
}
