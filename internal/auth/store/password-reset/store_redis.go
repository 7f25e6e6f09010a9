package passwordreset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"featstack/internal/auth/models"
	"featstack/pkg/sentinel"
)

const (
	// Redis key prefixes for reset token data
	tokenKeyPrefix = "password_reset:token:"
	userKeyPrefix  = "password_reset:user:"
)

// resetJSON is the JSON-serializable representation of a PasswordResetToken.
type resetJSON struct {
	UserID    string `json:"user_id"`
	Token     string `json:"token"`
	CreatedAt int64  `json:"created_at"` // Unix nano
	ExpiresAt int64  `json:"expires_at"` // Unix nano
}

// RedisStore persists reset tokens in Redis with TTL-based expiry.
// This is the production-recommended implementation for distributed deployments:
// the key TTL makes expired-token cleanup automatic.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed reset token store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Upsert stores the reset token, replacing any earlier token for the user.
func (s *RedisStore) Upsert(ctx context.Context, token *models.PasswordResetToken) error {
	if token == nil {
		return fmt.Errorf("reset token is required")
	}

	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("reset token already expired")
	}

	data, err := json.Marshal(resetJSON{
		UserID:    token.UserID,
		Token:     token.Token,
		CreatedAt: token.CreatedAt.UnixNano(),
		ExpiresAt: token.ExpiresAt.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("marshal reset token: %w", err)
	}

	// Replace the user's previous token before writing the new pair of keys.
	oldToken, err := s.client.Get(ctx, userKeyPrefix+token.UserID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("find previous reset token: %w", err)
	}

	pipe := s.client.Pipeline()
	if oldToken != "" {
		pipe.Del(ctx, tokenKeyPrefix+oldToken)
	}
	pipe.Set(ctx, tokenKeyPrefix+token.Token, data, ttl)
	pipe.Set(ctx, userKeyPrefix+token.UserID, token.Token, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("upsert reset token: %w", err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	data, err := s.client.Get(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("reset token not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find reset token: %w", err)
	}

	var j resetJSON
	if err := json.Unmarshal([]byte(data), &j); err != nil {
		return nil, fmt.Errorf("unmarshal reset token: %w", err)
	}
	return &models.PasswordResetToken{
		UserID:    j.UserID,
		Token:     j.Token,
		CreatedAt: time.Unix(0, j.CreatedAt),
		ExpiresAt: time.Unix(0, j.ExpiresAt),
	}, nil
}

// DeleteByUser removes the user's pending reset token, if any.
func (s *RedisStore) DeleteByUser(ctx context.Context, userID string) error {
	token, err := s.client.Get(ctx, userKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find reset token by user: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, tokenKeyPrefix+token)
	pipe.Del(ctx, userKeyPrefix+userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op for Redis: key TTLs already evict expired tokens.
func (s *RedisStore) DeleteExpired(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}
