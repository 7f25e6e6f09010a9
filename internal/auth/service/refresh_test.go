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
	jwttoken "featstack/internal/jwt_token"
	dErrors "featstack/pkg/domain-errors"
	"featstack/pkg/sentinel"
)

func (s *ServiceSuite) TestRefresh() {
	const oldToken = "old-refresh-jwt"
	pair := &jwttoken.TokenPair{AccessToken: "new-access-jwt", RefreshToken: "new-refresh-jwt"}

	newRecord := func(userID string) *models.RefreshToken {
		return &models.RefreshToken{
			ID:        uuid.NewString(),
			UserID:    userID,
			Token:     oldToken,
			UserAgent: "Mozilla/5.0",
			CreatedAt: time.Now().Add(-time.Hour),
			ExpiresAt: time.Now().Add(6 * 24 * time.Hour),
		}
	}

	s.T().Run("happy path - pair reissued and session rotated in place", func(t *testing.T) {
		user := s.newTestUser("user@example.com", "pw-irrelevant")
		record := newRecord(user.ID)

		s.mockRefreshStore.EXPECT().Find(gomock.Any(), oldToken).Return(record, nil)
		s.mockUserStore.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
		s.mockTokens.EXPECT().IssuePair(user.ID, user.Email, string(user.Role)).Return(pair, nil)
		s.mockRefreshStore.EXPECT().Rotate(gomock.Any(), oldToken, pair.RefreshToken, gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, oldTok, newTok string, expiresAt, now time.Time) (*models.RefreshToken, error) {
				assert.True(t, expiresAt.After(now))
				rotated := *record
				rotated.Token = newTok
				rotated.ExpiresAt = expiresAt
				return &rotated, nil
			})

		result, err := s.service.Refresh(context.Background(), oldToken)
		require.NoError(t, err)
		assert.Equal(t, pair.AccessToken, result.AccessToken)
		assert.Equal(t, pair.RefreshToken, result.RefreshToken)
		assert.Equal(t, user.Email, result.User.Email)
	})

	s.T().Run("unknown token - unauthorized", func(t *testing.T) {
		s.mockRefreshStore.EXPECT().Find(gomock.Any(), oldToken).Return(nil, sentinel.ErrNotFound)

		result, err := s.service.Refresh(context.Background(), oldToken)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "Invalid or expired refresh token")
	})

	s.T().Run("expired token - unauthorized", func(t *testing.T) {
		record := newRecord(uuid.NewString())
		record.ExpiresAt = time.Now().Add(-time.Minute)
		s.mockRefreshStore.EXPECT().Find(gomock.Any(), oldToken).Return(record, nil)

		_, err := s.service.Refresh(context.Background(), oldToken)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "Invalid or expired refresh token")
	})

	s.T().Run("inactive user - unauthorized", func(t *testing.T) {
		user := s.newTestUser("user@example.com", "pw-irrelevant")
		user.IsActive = false
		record := newRecord(user.ID)

		s.mockRefreshStore.EXPECT().Find(gomock.Any(), oldToken).Return(record, nil)
		s.mockUserStore.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)

		_, err := s.service.Refresh(context.Background(), oldToken)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	// A concurrent caller that lost the rotation race sees the same error as
	// a caller presenting a token that never existed.
	s.T().Run("rotation lost to a concurrent refresh - unauthorized", func(t *testing.T) {
		user := s.newTestUser("user@example.com", "pw-irrelevant")
		record := newRecord(user.ID)

		s.mockRefreshStore.EXPECT().Find(gomock.Any(), oldToken).Return(record, nil)
		s.mockUserStore.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
		s.mockTokens.EXPECT().IssuePair(user.ID, user.Email, string(user.Role)).Return(pair, nil)
		s.mockRefreshStore.EXPECT().Rotate(gomock.Any(), oldToken, pair.RefreshToken, gomock.Any(), gomock.Any()).
			Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Refresh(context.Background(), oldToken)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "Invalid or expired refresh token")
	})

	s.T().Run("store failure - internal", func(t *testing.T) {
		s.mockRefreshStore.EXPECT().Find(gomock.Any(), oldToken).Return(nil, assert.AnError)

		_, err := s.service.Refresh(context.Background(), oldToken)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
