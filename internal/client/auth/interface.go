package auth

import (
	"context"

	"github.com/iudanet/portfolio-tracker/internal/client/storage"
	"github.com/iudanet/portfolio-tracker/pkg/api"
)

// Service defines the session operations the CLI needs.
// A session is created by Register or Login and persisted in storage.AuthStorage
// so that later invocations reuse it.
type Service interface {
	Register(ctx context.Context, req api.RegisterRequest) (*storage.AuthData, error)
	Login(ctx context.Context, email, password string) (*storage.AuthData, error)

	// Refresh rotates the stored refresh token
	Refresh(ctx context.Context) (*storage.AuthData, error)

	// Logout revokes the refresh token on the server and always clears the local session
	Logout(ctx context.Context) error

	// Current returns the stored session or storage.ErrAuthNotFound
	Current(ctx context.Context) (*storage.AuthData, error)

	// Do calls fn with a valid access token, refreshing it once when needed
	Do(ctx context.Context, fn func(accessToken string) error) error

	// RememberPortfolio stores the caller's portfolio id in the session
	RememberPortfolio(ctx context.Context, portfolioID string) error
}
