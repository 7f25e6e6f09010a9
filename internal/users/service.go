// Package users implements the admin-facing user management operations.
// It shares the user store with the auth service but exposes the wider
// create/update/delete surface reserved for administrators.
package users

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"featstack/internal/auth/models"
	dErrors "featstack/pkg/domain-errors"
	"featstack/pkg/secrets"
	"featstack/pkg/sentinel"
)

// Store is the persistence surface this service needs from the user store.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context, offset, limit int) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Service struct {
	store      Store
	logger     *slog.Logger
	bcryptCost int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func New(store Store, opts ...Option) *Service {
	svc := &Service{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// Create provisions a user with an explicit role. Unlike public
// registration it never opens a session.
func (s *Service) Create(ctx context.Context, req *models.CreateUserRequest) (*models.UserResult, error) {
	hash, err := secrets.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid role")
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, user); err != nil {
		return nil, duplicateOrInternal(err, "Failed to create user")
	}

	s.logger.InfoContext(ctx, "user created by admin", "user_id", user.ID, "role", role)
	result := models.NewUserResult(user)
	return &result, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*models.UserResult, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Failed to load user")
	}
	result := models.NewUserResult(user)
	return &result, nil
}

// List returns one page of users, newest first. Page numbering starts at 1.
func (s *Service) List(ctx context.Context, page, limit int) (*models.UsersResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	users, err := s.store.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to list users")
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to list users")
	}

	results := make([]models.UserResult, 0, len(users))
	for _, u := range users {
		results = append(results, models.NewUserResult(u))
	}
	return &models.UsersResult{
		Users:      results,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Update applies a partial update. Only the fields present in the request
// change; a new password is re-hashed before storage.
func (s *Service) Update(ctx context.Context, userID string, req *models.UpdateUserRequest) (*models.UserResult, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Failed to load user")
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		if !role.Valid() {
			return nil, dErrors.New(dErrors.CodeValidation, "Invalid role")
		}
		user.Role = role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hash, err := secrets.HashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, user); err != nil {
		return nil, duplicateOrInternal(err, "Failed to update user")
	}

	s.logger.InfoContext(ctx, "user updated by admin", "user_id", user.ID)
	result := models.NewUserResult(user)
	return &result, nil
}

func (s *Service) Delete(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		return notFoundOrInternal(err, "Failed to delete user")
	}
	s.logger.InfoContext(ctx, "user deleted by admin", "user_id", userID)
	return nil
}

// notFoundOrInternal keeps infrastructure failures out of the 404 bucket:
// only a store not-found becomes "User not found", anything else is a 500.
func notFoundOrInternal(err error, fallback string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "User not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, fallback)
}

func duplicateOrInternal(err error, fallback string) error {
	if field, ok := sentinel.IsDuplicate(err); ok {
		switch field {
		case "username":
			return dErrors.Wrap(err, dErrors.CodeConflict, "Username already exists")
		default:
			return dErrors.Wrap(err, dErrors.CodeConflict, "Email already exists")
		}
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, fallback)
}
