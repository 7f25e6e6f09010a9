package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks UserStore,RefreshTokenStore,ResetTokenStore,TokenIssuer,NotificationSender

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"featstack/internal/auth/models"
	"featstack/internal/auth/service/mocks"
)

type ServiceSuite struct {
	suite.Suite
	ctrl             *gomock.Controller
	mockUserStore    *mocks.MockUserStore
	mockRefreshStore *mocks.MockRefreshTokenStore
	mockResetStore   *mocks.MockResetTokenStore
	mockTokens       *mocks.MockTokenIssuer
	mockNotifier     *mocks.MockNotificationSender
	service          *Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockUserStore = mocks.NewMockUserStore(s.ctrl)
	s.mockRefreshStore = mocks.NewMockRefreshTokenStore(s.ctrl)
	s.mockResetStore = mocks.NewMockResetTokenStore(s.ctrl)
	s.mockTokens = mocks.NewMockTokenIssuer(s.ctrl)
	s.mockNotifier = mocks.NewMockNotificationSender(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := Config{
		BcryptCost:      bcrypt.MinCost, // keep hashing fast in tests
		RefreshTokenTTL: 7 * 24 * time.Hour,
		ResetTokenTTL:   time.Hour,
	}
	s.service = New(
		s.mockUserStore,
		s.mockRefreshStore,
		s.mockResetStore,
		s.mockTokens,
		cfg,
		WithLogger(logger),
		WithNotificationSender(s.mockNotifier),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// Shared fixture builders - used across multiple test files

func (s *ServiceSuite) newTestUser(email, password string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.Require().NoError(err)
	now := time.Now()
	return &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     "testuser",
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		IsActive:     true,
		CreatedAt:    now.Add(-24 * time.Hour),
		UpdatedAt:    now.Add(-24 * time.Hour),
	}
}
