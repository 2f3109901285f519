package storage

import (
	"context"
	"time"

	"github.com/iudanet/portfolio-tracker/internal/models"
)

// TokenStorage defines interface for refresh token persistence.
// Records are never deleted, only revoked.
type TokenStorage interface {
	// SaveRefreshToken stores a new non-revoked record
	// Returns ErrTokenAlreadyExists if the hash is already known
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// GetActiveRefreshToken retrieves the non-revoked record by token hash
	// Returns ErrTokenNotFound if there is none
	GetActiveRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error)

	// RevokeRefreshToken revokes the non-revoked record matching owner and hash
	// Returns ErrTokenNotFound if there is none
	RevokeRefreshToken(ctx context.Context, userID, tokenHash string, revokedAt time.Time) error

	// GetUserTokens retrieves all records of a user, newest first
	GetUserTokens(ctx context.Context, userID string) ([]*models.RefreshToken, error)
}
