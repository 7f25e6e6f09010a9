package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"featstack/internal/auth/models"
	jwttoken "featstack/internal/jwt_token"
	dErrors "featstack/pkg/domain-errors"
	"featstack/pkg/sentinel"
)

func (s *ServiceSuite) TestLogin() {
	const password = "correct-horse"
	pair := &jwttoken.TokenPair{AccessToken: "access-jwt", RefreshToken: "refresh-jwt"}
	newReq := func() *models.LoginRequest {
		return &models.LoginRequest{Email: "user@example.com", Password: password}
	}

	s.T().Run("happy path - tokens issued and last login recorded", func(t *testing.T) {
		user := s.newTestUser("user@example.com", password)

		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "user@example.com").Return(user, nil)
		s.mockUserStore.EXPECT().UpdateLastLogin(gomock.Any(), user.ID, gomock.Any()).Return(nil)
		s.mockTokens.EXPECT().IssuePair(user.ID, user.Email, string(user.Role)).Return(pair, nil)
		s.mockRefreshStore.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, token *models.RefreshToken) error {
				assert.Equal(t, user.ID, token.UserID)
				assert.Equal(t, pair.RefreshToken, token.Token)
				assert.Equal(t, "Mozilla/5.0", token.UserAgent)
				return nil
			})

		result, err := s.service.Login(context.Background(), newReq(), "Mozilla/5.0")
		require.NoError(t, err)
		assert.Equal(t, pair.AccessToken, result.AccessToken)
		assert.Equal(t, pair.RefreshToken, result.RefreshToken)
		require.NotNil(t, result.User.LastLoginAt)
		assert.WithinDuration(t, time.Now(), *result.User.LastLoginAt, 5*time.Second)
	})

	s.T().Run("unknown email - unauthorized", func(t *testing.T) {
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "user@example.com").
			Return(nil, sentinel.ErrNotFound)

		result, err := s.service.Login(context.Background(), newReq(), "")
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "No account found with this email")
	})

	s.T().Run("inactive account - unauthorized before password check", func(t *testing.T) {
		user := s.newTestUser("user@example.com", password)
		user.IsActive = false
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "user@example.com").Return(user, nil)

		_, err := s.service.Login(context.Background(), newReq(), "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "account is inactive")
	})

	s.T().Run("wrong password - unauthorized", func(t *testing.T) {
		user := s.newTestUser("user@example.com", "different-password")
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "user@example.com").Return(user, nil)

		_, err := s.service.Login(context.Background(), newReq(), "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "Incorrect password")
	})

	s.T().Run("last login update failure does not block the login", func(t *testing.T) {
		user := s.newTestUser("user@example.com", password)

		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "user@example.com").Return(user, nil)
		s.mockUserStore.EXPECT().UpdateLastLogin(gomock.Any(), user.ID, gomock.Any()).Return(assert.AnError)
		s.mockTokens.EXPECT().IssuePair(user.ID, user.Email, string(user.Role)).Return(pair, nil)
		s.mockRefreshStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		result, err := s.service.Login(context.Background(), newReq(), "")
		require.NoError(t, err)
		assert.Nil(t, result.User.LastLoginAt)
	})
}
