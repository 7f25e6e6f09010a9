package passwordreset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"featstack/internal/auth/models"
	"featstack/pkg/sentinel"
)

// PostgresStore persists reset tokens in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed reset token store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Upsert stores the reset token, replacing any earlier token for the user.
// The user_id primary key makes "one pending reset per user" a schema fact.
func (s *PostgresStore) Upsert(ctx context.Context, token *models.PasswordResetToken) error {
	if token == nil {
		return fmt.Errorf("reset token is required")
	}
	query := `
		INSERT INTO password_resets (user_id, token, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET token = EXCLUDED.token, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at
	`
	_, err := s.db.ExecContext(ctx, query, token.UserID, token.Token, token.CreatedAt, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("upsert reset token: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	query := `
		SELECT user_id, token, created_at, expires_at
		FROM password_resets
		WHERE token = $1
	`
	var record models.PasswordResetToken
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&record.UserID,
		&record.Token,
		&record.CreatedAt,
		&record.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reset token not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	return &record, nil
}

// DeleteByUser removes the user's pending reset token, if any.
func (s *PostgresStore) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM password_resets WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}
	return nil
}

// DeleteExpired removes all reset tokens past their expiry.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM password_resets WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens rows: %w", err)
	}
	return int(rows), nil
}
