package user

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"featstack/internal/auth/models"
	"featstack/pkg/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when the requested entity does not exist
// - Return sentinel.DuplicateError when a unique field is already taken
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

// InMemoryStore stores users in memory for tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// New constructs an empty in-memory user store.
func New() *InMemoryStore {
	return &InMemoryStore{users: make(map[string]*models.User)}
}

func (s *InMemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return &sentinel.DuplicateError{Field: "email"}
		}
		if existing.Username == user.Username {
			return &sentinel.DuplicateError{Field: "username"}
		}
	}

	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	for id, existing := range s.users {
		if id == user.ID {
			continue
		}
		if existing.Email == user.Email {
			return &sentinel.DuplicateError{Field: "email"}
		}
		if existing.Username == user.Username {
			return &sentinel.DuplicateError{Field: "username"}
		}
	}

	copied := *user
	s.users[user.ID] = &copied
	return nil
}

// UpdateLastLogin stamps the user's last login time.
func (s *InMemoryStore) UpdateLastLogin(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	user.LastLoginAt = &at
	user.UpdatedAt = at
	return nil
}

// UpdatePassword replaces the user's password hash.
func (s *InMemoryStore) UpdatePassword(_ context.Context, userID, passwordHash string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = at
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	delete(s.users, userID)
	return nil
}

// List returns a page of users, newest first.
func (s *InMemoryStore) List(_ context.Context, offset, limit int) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		copied := *user
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []*models.User{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}
