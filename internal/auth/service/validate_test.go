package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"featstack/internal/auth/models"
	jwttoken "featstack/internal/jwt_token"
	dErrors "featstack/pkg/domain-errors"
	"featstack/pkg/sentinel"
)

func (s *ServiceSuite) TestValidateCredentials() {
	const password = "correct-horse"

	s.T().Run("happy path - returns user without side effects", func(t *testing.T) {
		user := s.newTestUser("user@example.com", password)
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "user@example.com").Return(user, nil)
		// No UpdateLastLogin, no token issuance, no session row.

		got, err := s.service.ValidateCredentials(context.Background(), "user@example.com", password)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	s.T().Run("unknown email - not found", func(t *testing.T) {
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "ghost@example.com").
			Return(nil, sentinel.ErrNotFound)

		_, err := s.service.ValidateCredentials(context.Background(), "ghost@example.com", password)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
		assert.Contains(t, err.Error(), "does not exist")
	})

	s.T().Run("disabled account - forbidden", func(t *testing.T) {
		user := s.newTestUser("user@example.com", password)
		user.IsActive = false
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "user@example.com").Return(user, nil)

		_, err := s.service.ValidateCredentials(context.Background(), "user@example.com", password)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
		assert.Contains(t, err.Error(), "disabled")
	})

	s.T().Run("wrong password - unauthorized", func(t *testing.T) {
		user := s.newTestUser("user@example.com", password)
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "user@example.com").Return(user, nil)

		_, err := s.service.ValidateCredentials(context.Background(), "user@example.com", "wrong")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

// TestPasswordAcceptanceParity drives the same stored hash and attempt
// through both credential paths. Login and ValidateCredentials report
// different error taxonomies, but whether a password is accepted must never
// depend on which door it came through.
func (s *ServiceSuite) TestPasswordAcceptanceParity() {
	const password = "correct-horse"
	pair := &jwttoken.TokenPair{AccessToken: "access-jwt", RefreshToken: "refresh-jwt"}

	cases := []struct {
		name     string
		attempt  string
		accepted bool
	}{
		{"correct password accepted by both", password, true},
		{"wrong password rejected by both", "battery-staple", false},
		{"empty password rejected by both", "", false},
	}

	for _, tc := range cases {
		s.T().Run(tc.name, func(t *testing.T) {
			user := s.newTestUser("user@example.com", password)
			s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "user@example.com").
				Return(user, nil).Times(2)
			if tc.accepted {
				// Login's session side effects only fire on acceptance.
				s.mockUserStore.EXPECT().UpdateLastLogin(gomock.Any(), user.ID, gomock.Any()).Return(nil)
				s.mockTokens.EXPECT().IssuePair(user.ID, user.Email, string(user.Role)).Return(pair, nil)
				s.mockRefreshStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			}

			req := &models.LoginRequest{Email: "user@example.com", Password: tc.attempt}
			_, loginErr := s.service.Login(context.Background(), req, "")
			_, validateErr := s.service.ValidateCredentials(context.Background(), "user@example.com", tc.attempt)

			if tc.accepted {
				assert.NoError(t, loginErr)
				assert.NoError(t, validateErr)
			} else {
				assert.True(t, dErrors.HasCode(loginErr, dErrors.CodeUnauthorized))
				assert.True(t, dErrors.HasCode(validateErr, dErrors.CodeUnauthorized))
			}
		})
	}
}

func (s *ServiceSuite) TestFindUserByID() {
	s.T().Run("happy path", func(t *testing.T) {
		user := s.newTestUser("user@example.com", "irrelevant")
		s.mockUserStore.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)

		got, err := s.service.FindUserByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
	})

	s.T().Run("missing user - not found", func(t *testing.T) {
		s.mockUserStore.EXPECT().FindByID(gomock.Any(), "missing").Return(nil, sentinel.ErrNotFound)

		_, err := s.service.FindUserByID(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
