package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"featstack/internal/auth/models"
	dErrors "featstack/pkg/domain-errors"
	"featstack/pkg/sentinel"
)

func (s *ServiceSuite) TestRequestPasswordReset() {
	s.T().Run("happy path - token stored and email sent", func(t *testing.T) {
		user := s.newTestUser("user@example.com", "irrelevant")
		var issuedToken string

		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "user@example.com").Return(user, nil)
		s.mockResetStore.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, record *models.PasswordResetToken) error {
				assert.Equal(t, user.ID, record.UserID)
				assert.Len(t, record.Token, 64) // 32 random bytes, hex encoded
				assert.WithinDuration(t, time.Now().Add(time.Hour), record.ExpiresAt, 5*time.Second)
				issuedToken = record.Token
				return nil
			})
		s.mockNotifier.EXPECT().SendResetPasswordEmail(gomock.Any(), user.Email, gomock.Any()).DoAndReturn(
			func(ctx context.Context, email, token string) error {
				assert.Equal(t, issuedToken, token)
				return nil
			})

		err := s.service.RequestPasswordReset(context.Background(), "user@example.com")
		require.NoError(t, err)
	})

	s.T().Run("unknown email - silent success with no side effects", func(t *testing.T) {
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "ghost@example.com").
			Return(nil, sentinel.ErrNotFound)
		// No Upsert, no email.

		err := s.service.RequestPasswordReset(context.Background(), "ghost@example.com")
		require.NoError(t, err)
	})

	s.T().Run("email delivery failure is swallowed", func(t *testing.T) {
		user := s.newTestUser("user@example.com", "irrelevant")

		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "user@example.com").Return(user, nil)
		s.mockResetStore.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
		s.mockNotifier.EXPECT().SendResetPasswordEmail(gomock.Any(), user.Email, gomock.Any()).
			Return(assert.AnError)

		err := s.service.RequestPasswordReset(context.Background(), "user@example.com")
		require.NoError(t, err)
	})

	s.T().Run("store failure - internal", func(t *testing.T) {
		user := s.newTestUser("user@example.com", "irrelevant")

		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "user@example.com").Return(user, nil)
		s.mockResetStore.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(assert.AnError)

		err := s.service.RequestPasswordReset(context.Background(), "user@example.com")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestCompletePasswordReset() {
	const token = "reset-token"
	const newPassword = "brand-new-password"

	newRecord := func() *models.PasswordResetToken {
		return &models.PasswordResetToken{
			UserID:    uuid.NewString(),
			Token:     token,
			CreatedAt: time.Now().Add(-time.Minute),
			ExpiresAt: time.Now().Add(time.Hour),
		}
	}

	s.T().Run("happy path - password replaced and token consumed", func(t *testing.T) {
		record := newRecord()

		s.mockResetStore.EXPECT().Find(gomock.Any(), token).Return(record, nil)
		s.mockUserStore.EXPECT().UpdatePassword(gomock.Any(), record.UserID, gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, userID, hash string, at time.Time) error {
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(newPassword)))
				return nil
			})
		s.mockResetStore.EXPECT().DeleteByUser(gomock.Any(), record.UserID).Return(nil)

		err := s.service.CompletePasswordReset(context.Background(), token, newPassword)
		require.NoError(t, err)
	})

	s.T().Run("unknown token - unauthorized", func(t *testing.T) {
		s.mockResetStore.EXPECT().Find(gomock.Any(), token).Return(nil, sentinel.ErrNotFound)

		err := s.service.CompletePasswordReset(context.Background(), token, newPassword)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "Invalid or expired token")
	})

	s.T().Run("expired token - unauthorized, password untouched", func(t *testing.T) {
		record := newRecord()
		record.ExpiresAt = time.Now().Add(-time.Minute)
		s.mockResetStore.EXPECT().Find(gomock.Any(), token).Return(record, nil)
		// No UpdatePassword, no DeleteByUser.

		err := s.service.CompletePasswordReset(context.Background(), token, newPassword)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.T().Run("weak new password - validation", func(t *testing.T) {
		record := newRecord()
		s.mockResetStore.EXPECT().Find(gomock.Any(), token).Return(record, nil)

		err := s.service.CompletePasswordReset(context.Background(), token, "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.T().Run("update failure - internal", func(t *testing.T) {
		record := newRecord()

		s.mockResetStore.EXPECT().Find(gomock.Any(), token).Return(record, nil)
		s.mockUserStore.EXPECT().UpdatePassword(gomock.Any(), record.UserID, gomock.Any(), gomock.Any()).
			Return(assert.AnError)

		err := s.service.CompletePasswordReset(context.Background(), token, newPassword)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
