package storage

import (
	"context"
	"time"
)

// AuthStorage хранит текущую сессию пользователя на клиенте.
// Одновременно хранится только одна сессия.
type AuthStorage interface {
	// SaveAuth replaces the stored session
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth returns ErrAuthNotFound if nobody is logged in
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes the stored session (logout)
	DeleteAuth(ctx context.Context) error
}

// AuthData represents the session persisted between CLI invocations.
type AuthData struct {
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	Email            string    `json:"email"`
	UserID           string    `json:"user_id"`
	PortfolioID      string    `json:"portfolio_id,omitempty"` // заполняется после первого dashboard
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
}

// AccessExpired reports whether the access token is past its expiry at now.
func (a *AuthData) AccessExpired(now time.Time) bool {
	return !now.Before(a.AccessExpiresAt)
}

// RefreshExpired reports whether the refresh token is past its expiry at now.
func (a *AuthData) RefreshExpired(now time.Time) bool {
	return !now.Before(a.RefreshExpiresAt)
}
