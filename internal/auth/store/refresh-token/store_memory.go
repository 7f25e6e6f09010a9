// Package refreshtoken persists one row per device session. The row's token
// value is the currently valid refresh token for that session; rotation
// replaces it in place so an old token can never be presented twice.
package refreshtoken

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
// - Return sentinel.ErrNotFound when the token does not exist
// - Return sentinel.ErrExpired when the token exists but its window has closed
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures
//
// In-memory stores keep the initial implementation lightweight and testable.
// They intentionally favor clarity over performance.
type InMemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]*models.RefreshToken
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tokens: make(map[string]*models.RefreshToken)}
}

func (s *InMemoryStore) Create(_ context.Context, token *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *token
	s.tokens[token.Token] = &copied
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tokens[token]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, fmt.Errorf("refresh token not found: %w", sentinel.ErrNotFound)
}

// Rotate atomically replaces oldToken with newToken on the same session row.
// The compare-and-swap on the token value guarantees a refresh token is
// accepted at most once: a second presentation of oldToken finds no row.
func (s *InMemoryStore) Rotate(_ context.Context, oldToken, newToken string, expiresAt, now time.Time) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.tokens[oldToken]
	if !ok {
		return nil, fmt.Errorf("refresh token not found: %w", sentinel.ErrNotFound)
	}
	if record.Expired(now) {
		return nil, fmt.Errorf("refresh token expired: %w", sentinel.ErrExpired)
	}

	delete(s.tokens, oldToken)
	record.Token = newToken
	record.ExpiresAt = expiresAt
	s.tokens[newToken] = record

	copied := *record
	return &copied, nil
}

// DeleteByUserAndToken removes the session identified by the token, scoped to
// the user so one account cannot log out another's session.
func (s *InMemoryStore) DeleteByUserAndToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.tokens[token]
	if !ok || record.UserID != userID {
		return fmt.Errorf("refresh token not found: %w", sentinel.ErrNotFound)
	}
	delete(s.tokens, token)
	return nil
}

// DeleteByUser removes every session of the user and reports how many.
func (s *InMemoryStore) DeleteByUser(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for key, record := range s.tokens {
		if record.UserID == userID {
			delete(s.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}

// ListActiveByUser returns the user's unexpired sessions, newest first.
func (s *InMemoryStore) ListActiveByUser(_ context.Context, userID string, now time.Time) ([]*models.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sessions []*models.RefreshToken
	for _, record := range s.tokens {
		if record.UserID != userID || record.Expired(now) {
			continue
		}
		copied := *record
		sessions = append(sessions, &copied)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// DeleteExpired removes all sessions past their expiry.
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for key, record := range s.tokens {
		if record.Expired(now) {
			delete(s.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}
