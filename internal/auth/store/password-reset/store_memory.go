// Package passwordreset persists pending reset capabilities: at most one per
// user, replaced on re-request, consumed or expired exactly once.
package passwordreset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"featstack/internal/auth/models"
	"featstack/pkg/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when the token does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

// InMemoryStore stores reset tokens in memory for tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	byUser  map[string]*models.PasswordResetToken
	byToken map[string]*models.PasswordResetToken
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byUser:  make(map[string]*models.PasswordResetToken),
		byToken: make(map[string]*models.PasswordResetToken),
	}
}

// Upsert stores the reset token, replacing any earlier token for the user.
func (s *InMemoryStore) Upsert(_ context.Context, token *models.PasswordResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byUser[token.UserID]; ok {
		delete(s.byToken, old.Token)
	}
	copied := *token
	s.byUser[token.UserID] = &copied
	s.byToken[token.Token] = &copied
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, token string) (*models.PasswordResetToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.byToken[token]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, fmt.Errorf("reset token not found: %w", sentinel.ErrNotFound)
}

// DeleteByUser removes the user's pending reset token, if any.
func (s *InMemoryStore) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.byUser[userID]; ok {
		delete(s.byToken, record.Token)
		delete(s.byUser, userID)
	}
	return nil
}

// DeleteExpired removes all reset tokens past their expiry.
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for userID, record := range s.byUser {
		if record.Expired(now) {
			delete(s.byToken, record.Token)
			delete(s.byUser, userID)
			deleted++
		}
	}
	return deleted, nil
}
