package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/portfolio-tracker/internal/apperr"
	"github.com/iudanet/portfolio-tracker/internal/clock"
	"github.com/iudanet/portfolio-tracker/internal/crypto"
	"github.com/iudanet/portfolio-tracker/internal/models"
	"github.com/iudanet/portfolio-tracker/internal/server/storage"
)

// Ledger учитывает выданные refresh токены.
// Хранится только SHA-256 хеш токена, сам токен никогда не попадает в БД.
type Ledger struct {
	tokens storage.TokenStorage
	clock  clock.Clock
}

// NewLedger creates a refresh token ledger over tokens.
func NewLedger(tokens storage.TokenStorage, clk clock.Clock) *Ledger {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Ledger{tokens: tokens, clock: clk}
}

// Record persists a non-revoked record for raw owned by ownerUserID.
func (l *Ledger) Record(ctx context.Context, ownerUserID, raw string, expiresAt time.Time) error {
	record := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    ownerUserID,
		TokenHash: crypto.HashToken(raw),
		CreatedAt: l.clock.Now(),
		ExpiresAt: expiresAt,
	}

	if err := l.tokens.SaveRefreshToken(ctx, record); err != nil {
		if errors.Is(err, storage.ErrTokenAlreadyExists) {
			return apperr.Conflict("Refresh token already recorded")
		}
		return fmt.Errorf("failed to record refresh token: %w", err)
	}

	return nil
}

// Revoke flips the non-revoked record of ownerUserID matching raw.
// Fails with apperr NotFound when there is no such record.
func (l *Ledger) Revoke(ctx context.Context, ownerUserID, raw string) error {
	err := l.tokens.RevokeRefreshToken(ctx, ownerUserID, crypto.HashToken(raw), l.clock.Now())
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return apperr.NotFound("Refresh token not found")
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

// IsValid reports whether a non-revoked record for raw exists.
func (l *Ledger) IsValid(ctx context.Context, raw string) (bool, error) {
	_, err := l.Lookup(ctx, raw)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Lookup returns the non-revoked record for raw.
func (l *Ledger) Lookup(ctx context.Context, raw string) (*models.RefreshToken, error) {
	record, err := l.tokens.GetActiveRefreshToken(ctx, crypto.HashToken(raw))
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return nil, apperr.NotFound("Refresh token not found")
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	return record, nil
}
