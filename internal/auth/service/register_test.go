package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"featstack/internal/auth/models"
	jwttoken "featstack/internal/jwt_token"
	dErrors "featstack/pkg/domain-errors"
	"featstack/pkg/sentinel"
)

func (s *ServiceSuite) TestRegister() {
	newReq := func() *models.RegisterRequest {
		return &models.RegisterRequest{
			Email:    "new@example.com",
			Username: "newuser",
			Password: "str0ngpassword",
		}
	}
	pair := &jwttoken.TokenPair{AccessToken: "access-jwt", RefreshToken: "refresh-jwt"}

	s.T().Run("happy path - user created and session opened", func(t *testing.T) {
		req := newReq()
		var createdID string

		s.mockUserStore.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, user *models.User) error {
				assert.Equal(t, req.Email, user.Email)
				assert.Equal(t, req.Username, user.Username)
				assert.Equal(t, models.RoleUser, user.Role)
				assert.True(t, user.IsActive)
				assert.NotEqual(t, req.Password, user.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)))
				createdID = user.ID
				return nil
			})
		s.mockTokens.EXPECT().IssuePair(gomock.Any(), req.Email, string(models.RoleUser)).Return(pair, nil)
		s.mockRefreshStore.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, token *models.RefreshToken) error {
				assert.Equal(t, createdID, token.UserID)
				assert.Equal(t, pair.RefreshToken, token.Token)
				assert.Equal(t, "test-agent", token.UserAgent)
				assert.True(t, token.ExpiresAt.After(token.CreatedAt))
				return nil
			})

		result, err := s.service.Register(context.Background(), req, "test-agent")
		require.NoError(t, err)
		assert.Equal(t, pair.AccessToken, result.AccessToken)
		assert.Equal(t, pair.RefreshToken, result.RefreshToken)
		assert.Equal(t, req.Email, result.User.Email)
		assert.NotEmpty(t, result.User.ID)
	})

	s.T().Run("duplicate email - conflict", func(t *testing.T) {
		s.mockUserStore.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(&sentinel.DuplicateError{Field: "email"})

		result, err := s.service.Register(context.Background(), newReq(), "test-agent")
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		assert.Contains(t, err.Error(), "Email already exists")
	})

	s.T().Run("duplicate username - conflict", func(t *testing.T) {
		s.mockUserStore.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(&sentinel.DuplicateError{Field: "username"})

		_, err := s.service.Register(context.Background(), newReq(), "test-agent")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		assert.Contains(t, err.Error(), "Username already exists")
	})

	s.T().Run("registration disabled - conflict before any store call", func(t *testing.T) {
		s.service.cfg.DisableRegister = true
		defer func() { s.service.cfg.DisableRegister = false }()

		result, err := s.service.Register(context.Background(), newReq(), "test-agent")
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		assert.Contains(t, err.Error(), "Registration is currently disabled")
	})

	s.T().Run("token issuance failure - internal", func(t *testing.T) {
		s.mockUserStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.mockTokens.EXPECT().IssuePair(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, assert.AnError)

		_, err := s.service.Register(context.Background(), newReq(), "test-agent")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.T().Run("refresh token persistence failure - internal", func(t *testing.T) {
		s.mockUserStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.mockTokens.EXPECT().IssuePair(gomock.Any(), gomock.Any(), gomock.Any()).Return(pair, nil)
		s.mockRefreshStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(assert.AnError)

		_, err := s.service.Register(context.Background(), newReq(), "test-agent")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
