// Package auth keeps the CLI session: it logs in against the server,
// persists tokens locally and rotates them before they are rejected.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/portfolio-tracker/internal/client/api"
	"github.com/iudanet/portfolio-tracker/internal/client/storage"
	"github.com/iudanet/portfolio-tracker/internal/clock"
	pkgapi "github.com/iudanet/portfolio-tracker/pkg/api"
)

// ErrSessionExpired означает, что refresh token истек или отозван и нужен новый login
var ErrSessionExpired = errors.New("session expired, please login again")

// refreshSkew обновляет access token чуть раньше истечения
const refreshSkew = 10 * time.Second

// Client is the subset of the HTTP client used by the session.
type Client interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.AuthResponse, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) (*pkgapi.MessageResponse, error)
}

// Session implements Service on top of the HTTP client and a local store.
type Session struct {
	client Client
	store  storage.AuthStorage
	clock  clock.Clock
	logger *slog.Logger
}

var _ Service = (*Session)(nil)

// NewSession создает сервис сессии
func NewSession(client Client, store storage.AuthStorage, clk clock.Clock, logger *slog.Logger) *Session {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		client: client,
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// Register регистрирует пользователя и сохраняет выданную сессию
func (s *Session) Register(ctx context.Context, req pkgapi.RegisterRequest) (*storage.AuthData, error) {
	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return s.start(ctx, resp)
}

// Login выполняет вход и сохраняет сессию
func (s *Session) Login(ctx context.Context, email, password string) (*storage.AuthData, error) {
	resp, err := s.client.Login(ctx, pkgapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return s.start(ctx, resp)
}

func (s *Session) start(ctx context.Context, resp *pkgapi.AuthResponse) (*storage.AuthData, error) {
	data := &storage.AuthData{
		Email:  resp.User.Email,
		UserID: resp.User.ID,
	}
	s.applyTokens(data, &resp.Tokens)

	if err := s.store.SaveAuth(ctx, data); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return data, nil
}

// Refresh ротирует refresh token. При отказе сервера локальная сессия удаляется.
func (s *Session) Refresh(ctx context.Context) (*storage.AuthData, error) {
	data, err := s.store.GetAuth(ctx)
	if err != nil {
		return nil, err
	}

	if data.RefreshExpired(s.clock.Now()) {
		s.drop(ctx)
		return nil, ErrSessionExpired
	}

	pair, err := s.client.Refresh(ctx, data.RefreshToken)
	if err != nil {
		if api.IsUnauthorized(err) {
			s.drop(ctx)
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	s.applyTokens(data, pair)
	if err := s.store.SaveAuth(ctx, data); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.DebugContext(ctx, "tokens refreshed", slog.String("user_id", data.UserID))
	return data, nil
}

// Logout отзывает refresh token на сервере. Локальная сессия удаляется
// даже если сервер недоступен или токен уже отозван.
func (s *Session) Logout(ctx context.Context) error {
	data, err := s.store.GetAuth(ctx)
	if err != nil {
		return err
	}

	var remoteErr error
	accessToken := data.AccessToken
	if data.AccessExpired(s.clock.Now().Add(refreshSkew)) && !data.RefreshExpired(s.clock.Now()) {
		if refreshed, err := s.Refresh(ctx); err == nil {
			data = refreshed
			accessToken = refreshed.AccessToken
		}
	}

	if _, err := s.client.Logout(ctx, accessToken, data.RefreshToken); err != nil {
		remoteErr = err
		s.logger.WarnContext(ctx, "server logout failed", slog.Any("error", err))
	}

	if err := s.store.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return remoteErr
}

// Current возвращает сохраненную сессию
func (s *Session) Current(ctx context.Context) (*storage.AuthData, error) {
	return s.store.GetAuth(ctx)
}

// Do вызывает fn с действующим access token. Истекший token обновляется
// заранее, а на 401 от сервера выполняется одна ротация и повтор.
func (s *Session) Do(ctx context.Context, fn func(accessToken string) error) error {
	data, err := s.store.GetAuth(ctx)
	if err != nil {
		return err
	}

	if data.AccessExpired(s.clock.Now().Add(refreshSkew)) {
		if data, err = s.Refresh(ctx); err != nil {
			return err
		}
	}

	err = fn(data.AccessToken)
	if !api.IsUnauthorized(err) {
		return err
	}

	data, err = s.Refresh(ctx)
	if err != nil {
		return err
	}
	return fn(data.AccessToken)
}

// RememberPortfolio сохраняет id портфеля, чтобы команды add/update/remove
// работали без явного --portfolio
func (s *Session) RememberPortfolio(ctx context.Context, portfolioID string) error {
	data, err := s.store.GetAuth(ctx)
	if err != nil {
		return err
	}
	if data.PortfolioID == portfolioID {
		return nil
	}
	data.PortfolioID = portfolioID
	return s.store.SaveAuth(ctx, data)
}

func (s *Session) applyTokens(data *storage.AuthData, tokens *pkgapi.TokenResponse) {
	data.AccessToken = tokens.AccessToken
	data.RefreshToken = tokens.RefreshToken
	data.AccessExpiresAt = s.clock.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	data.RefreshExpiresAt = tokens.RefreshExpiresAt
}

func (s *Session) drop(ctx context.Context) {
	if err := s.store.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		s.logger.WarnContext(ctx, "failed to delete expired session", slog.Any("error", err))
	}
}
