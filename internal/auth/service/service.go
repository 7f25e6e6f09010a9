// Package service implements the session manager: registration, login,
// refresh with rotation, logout, and the password reset flow.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"featstack/internal/auth/models"
	"featstack/internal/platform/metrics"
	"featstack/internal/platform/tracer"
	dErrors "featstack/pkg/domain-errors"
	"featstack/pkg/secrets"
	"featstack/pkg/sentinel"
)

const (
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultResetTokenTTL   = time.Hour
)

// Config carries the policy knobs injected at construction.
type Config struct {
	// DisableRegister turns public registration off globally.
	DisableRegister bool
	// BcryptCost tunes the password hashing work factor. Zero selects the default.
	BcryptCost int
	// RefreshTokenTTL bounds how long a device session stays valid without refreshing.
	RefreshTokenTTL time.Duration
	// ResetTokenTTL bounds the password reset window.
	ResetTokenTTL time.Duration
}

// Service orchestrates the token lifecycle over the stores and the codec.
// Operations are stateless between calls and safe to run concurrently.
type Service struct {
	users         UserStore
	refreshTokens RefreshTokenStore
	resets        ResetTokenStore
	tokens        TokenIssuer
	notifier      NotificationSender
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        tracer.Tracer
	cfg           Config
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithNotificationSender(n NotificationSender) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func New(users UserStore, refreshTokens RefreshTokenStore, resets ResetTokenStore, tokens TokenIssuer, cfg Config, opts ...Option) *Service {
	svc := &Service{
		users:         users,
		refreshTokens: refreshTokens,
		resets:        resets,
		tokens:        tokens,
		cfg:           cfg,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	if svc.cfg.RefreshTokenTTL <= 0 {
		svc.cfg.RefreshTokenTTL = defaultRefreshTokenTTL
	}
	if svc.cfg.ResetTokenTTL <= 0 {
		svc.cfg.ResetTokenTTL = defaultResetTokenTTL
	}
	return svc
}

// Register creates an account and opens its first device session.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest, userAgent string) (result *models.AuthResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRegister,
		tracer.String(tracer.AttrEmailHash, tracer.HashEmail(req.Email)),
	)
	defer func() { span.End(err) }()

	if s.cfg.DisableRegister {
		s.authFailure(ctx, "registration_disabled", "email", req.Email)
		return nil, dErrors.New(dErrors.CodeConflict, "Registration is currently disabled")
	}

	hash, err := secrets.HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if field, ok := sentinel.IsDuplicate(err); ok {
			s.authFailure(ctx, "duplicate_"+field, "email", req.Email)
			switch field {
			case "username":
				return nil, dErrors.Wrap(err, dErrors.CodeConflict, "Username already exists")
			default:
				return nil, dErrors.Wrap(err, dErrors.CodeConflict, "Email already exists")
			}
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to create user")
	}

	s.logEvent(ctx, "user_registered", "user_id", user.ID)
	s.incrementUsersCreated()
	span.SetAttributes(tracer.String(tracer.AttrUserID, user.ID))

	return s.startSession(ctx, user, userAgent)
}

// Login exchanges credentials for a token pair and opens a device session.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest, userAgent string) (result *models.AuthResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanLogin,
		tracer.String(tracer.AttrEmailHash, tracer.HashEmail(req.Email)),
	)
	defer func() { span.End(err) }()

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		s.authFailure(ctx, "unknown_email", "email", req.Email)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "No account found with this email")
	}

	if !user.IsActive {
		s.authFailure(ctx, "inactive_account", "user_id", user.ID)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Your account is inactive. Please contact support.")
	}

	if err := secrets.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		s.authFailure(ctx, "bad_password", "user_id", user.ID)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Incorrect password. Please try again.")
	}

	// Best-effort: a failed timestamp update must not block the login.
	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.WarnContext(ctx, "failed to update last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}

	s.logEvent(ctx, "user_logged_in", "user_id", user.ID)
	s.incrementLogins()
	span.SetAttributes(tracer.String(tracer.AttrUserID, user.ID))

	return s.startSession(ctx, user, userAgent)
}

// ValidateCredentials is the narrower contract behind pluggable credential
// checks. Unlike Login it distinguishes the failure classes and performs no
// side effects.
func (s *Service) ValidateCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "User with this email does not exist.")
	}

	if !user.IsActive {
		return nil, dErrors.New(dErrors.CodeForbidden, "User account is disabled.")
	}

	if err := secrets.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Incorrect password.")
	}

	return user, nil
}

// FindUserByID backs current-user resolution for guarded operations.
func (s *Service) FindUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "User not found")
	}
	return user, nil
}

// startSession issues a token pair and persists the refresh side as a new
// device session row.
func (s *Service) startSession(ctx context.Context, user *models.User, userAgent string) (*models.AuthResult, error) {
	pair, err := s.tokens.IssuePair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to generate tokens")
	}

	now := time.Now()
	record := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     pair.RefreshToken,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
	}
	if err := s.refreshTokens.Create(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to save refresh token")
	}

	s.incrementActiveSessions(1)

	result := &models.AuthResult{
		User:         models.NewUserResult(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
	return result, nil
}
