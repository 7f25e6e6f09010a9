package refreshtoken

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"featstack/internal/auth/models"
	"featstack/pkg/sentinel"
)

// PostgresStore persists refresh tokens in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed refresh token store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, token *models.RefreshToken) error {
	if token == nil {
		return fmt.Errorf("refresh token is required")
	}
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, user_agent, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.UserAgent,
		token.CreatedAt,
		token.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, user_agent, created_at, expires_at
		FROM refresh_tokens
		WHERE token = $1
	`
	record, err := scanRefreshToken(s.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("refresh token not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return record, nil
}

// Rotate atomically replaces oldToken with newToken on the same session row.
// The WHERE clause on the old token value is the compare-and-swap: of two
// concurrent refreshes with the same token, exactly one updates a row and the
// other sees zero rows.
func (s *PostgresStore) Rotate(ctx context.Context, oldToken, newToken string, expiresAt, now time.Time) (*models.RefreshToken, error) {
	query := `
		UPDATE refresh_tokens
		SET token = $2, expires_at = $3
		WHERE token = $1 AND expires_at > $4
		RETURNING id, user_id, token, user_agent, created_at, expires_at
	`
	record, err := scanRefreshToken(s.db.QueryRowContext(ctx, query, oldToken, newToken, expiresAt, now))
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	// No live row matched. Distinguish expired from unknown for the caller.
	var exists bool
	checkErr := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE token = $1)`, oldToken).Scan(&exists)
	if checkErr != nil {
		return nil, fmt.Errorf("rotate refresh token check: %w", checkErr)
	}
	if exists {
		return nil, fmt.Errorf("refresh token expired: %w", sentinel.ErrExpired)
	}
	return nil, fmt.Errorf("refresh token not found: %w", sentinel.ErrNotFound)
}

// DeleteByUserAndToken removes the session identified by the token, scoped to
// the user so one account cannot log out another's session.
func (s *PostgresStore) DeleteByUserAndToken(ctx context.Context, userID, token string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = $1 AND token = $2`, userID, token)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete refresh token rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("refresh token not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

// DeleteByUser removes every session of the user and reports how many.
func (s *PostgresStore) DeleteByUser(ctx context.Context, userID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete refresh tokens by user: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete refresh tokens rows: %w", err)
	}
	return int(rows), nil
}

// ListActiveByUser returns the user's unexpired sessions, newest first.
func (s *PostgresStore) ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, user_agent, created_at, expires_at
		FROM refresh_tokens
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list refresh tokens: %w", err)
	}
	defer rows.Close()

	var sessions []*models.RefreshToken
	for rows.Next() {
		record, err := scanRefreshToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan refresh token: %w", err)
		}
		sessions = append(sessions, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list refresh tokens rows: %w", err)
	}
	return sessions, nil
}

// DeleteExpired removes all sessions past their expiry.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens rows: %w", err)
	}
	return int(rows), nil
}

type refreshTokenRow interface {
	Scan(dest ...any) error
}

func scanRefreshToken(row refreshTokenRow) (*models.RefreshToken, error) {
	var record models.RefreshToken
	if err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.Token,
		&record.UserAgent,
		&record.CreatedAt,
		&record.ExpiresAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}
