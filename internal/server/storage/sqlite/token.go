package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/portfolio-tracker/internal/models"
	"github.com/iudanet/portfolio-tracker/internal/server/storage"
)

// SaveRefreshToken stores a new refresh token record
func (s *Storage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, is_revoked, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.conn(ctx).ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.IsRevoked,
		token.CreatedAt,
		token.ExpiresAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrTokenAlreadyExists
		}
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	return nil
}

// GetActiveRefreshToken retrieves the non-revoked record by token hash
func (s *Storage) GetActiveRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, is_revoked, created_at, expires_at, revoked_at
		FROM refresh_tokens
		WHERE token_hash = ? AND is_revoked = 0
	`

	token, err := scanToken(s.conn(ctx).QueryRowContext(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return token, nil
}

// RevokeRefreshToken revokes the non-revoked record matching owner and hash
func (s *Storage) RevokeRefreshToken(ctx context.Context, userID, tokenHash string, revokedAt time.Time) error {
	query := `
		UPDATE refresh_tokens
		SET is_revoked = 1, revoked_at = ?
		WHERE user_id = ? AND token_hash = ? AND is_revoked = 0
	`

	result, err := s.conn(ctx).ExecContext(ctx, query, revokedAt, userID, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrTokenNotFound
	}

	return nil
}

// GetUserTokens retrieves all refresh token records for a user
func (s *Storage) GetUserTokens(ctx context.Context, userID string) ([]*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, is_revoked, created_at, expires_at, revoked_at
		FROM refresh_tokens
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`

	rows, err := s.conn(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user tokens: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tokens []*models.RefreshToken

	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tokens, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken(row rowScanner) (*models.RefreshToken, error) {
	token := &models.RefreshToken{}
	var revokedAt sql.NullTime

	if err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.IsRevoked,
		&token.CreatedAt,
		&token.ExpiresAt,
		&revokedAt,
	); err != nil {
		return nil, err
	}

	token.RevokedAt = nullTime(revokedAt)

	return token, nil
}
