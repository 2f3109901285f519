// Package auth implements registration, login and the refresh token lifecycle.
//
// Каждый refresh токен проходит ровно два состояния: ISSUED -> REVOKED.
// Ротация и logout отзывают токен, отозванный токен больше не принимается.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iudanet/portfolio-tracker/internal/apperr"
	"github.com/iudanet/portfolio-tracker/internal/clock"
	"github.com/iudanet/portfolio-tracker/internal/crypto"
	"github.com/iudanet/portfolio-tracker/internal/models"
	"github.com/iudanet/portfolio-tracker/internal/server/jwt"
	"github.com/iudanet/portfolio-tracker/internal/server/storage"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgInvalidRefresh     = "Invalid refresh token"
	msgLoggedOut          = "Logged out successfully"
)

// RegisterInput содержит данные для регистрации
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// AuthResult is the outcome of a successful register or login.
type AuthResult struct {
	User   *models.User
	Tokens *jwt.TokenPair
}

// LogoutResult is the outcome of a successful logout.
type LogoutResult struct {
	Message string
}

// Service orchestrates credentials, token issuing and the refresh token ledger.
type Service struct {
	logger     *slog.Logger
	users      storage.UserStorage
	portfolios storage.PortfolioStorage
	tx         storage.Transactor
	ledger     *Ledger
	issuer     *jwt.Issuer
	hasher     *crypto.PasswordHasher
	clock      clock.Clock
}

// NewService создает сервис авторизации
func NewService(
	logger *slog.Logger,
	users storage.UserStorage,
	portfolios storage.PortfolioStorage,
	tx storage.Transactor,
	ledger *Ledger,
	issuer *jwt.Issuer,
	hasher *crypto.PasswordHasher,
	clk clock.Clock,
) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		logger:     logger,
		users:      users,
		portfolios: portfolios,
		tx:         tx,
		ledger:     ledger,
		issuer:     issuer,
		hasher:     hasher,
		clock:      clk,
	}
}

// Register creates a user together with an empty portfolio and logs them in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	_, err := s.users.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperr.Conflict("Email already registered")
	case !errors.Is(err, storage.ErrUserNotFound):
		return nil, apperr.Internal(fmt.Errorf("failed to check email: %w", err))
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := s.clock.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	portfolio := &models.Portfolio{
		ID:                    uuid.New().String(),
		UserID:                user.ID,
		TotalValue:            decimal.Zero,
		TotalCost:             decimal.Zero,
		TotalGainLoss:         decimal.Zero,
		TotalReturnPercentage: decimal.Zero,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.CreateUser(ctx, user); err != nil {
			return err
		}
		return s.portfolios.CreatePortfolio(ctx, portfolio)
	})
	if err != nil {
		// tombstone-пользователи тоже держат email, как и параллельная регистрация
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, apperr.Conflict("Email already registered")
		}
		s.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		return nil, apperr.Internal(err)
	}

	s.logger.InfoContext(ctx, "user registered successfully",
		slog.String("user_id", user.ID),
		slog.String("portfolio_id", portfolio.ID))

	return s.Login(ctx, in.Email, in.Password)
}

// Login verifies credentials and issues a new token pair.
// Unknown email and wrong password fail with the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.logger.WarnContext(ctx, "login for unknown email")
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		s.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		return nil, apperr.Internal(err)
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			s.logger.WarnContext(ctx, "invalid password", slog.String("user_id", user.ID))
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		s.logger.ErrorContext(ctx, "failed to verify password", slog.Any("error", err))
		return nil, apperr.Internal(err)
	}

	pair, err := s.issuer.Issue(jwt.Subject{ID: user.ID, Email: user.Email})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue tokens", slog.Any("error", err))
		return nil, apperr.Internal(err)
	}

	if err := s.ledger.Record(ctx, user.ID, pair.RefreshToken, pair.RefreshExpiresAt); err != nil {
		s.logger.ErrorContext(ctx, "failed to record refresh token", slog.Any("error", err))
		return nil, apperr.Internal(err)
	}

	// last_login не критичен для входа
	now := s.clock.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.WarnContext(ctx, "failed to update last login",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
	} else {
		user.LastLogin = &now
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return &AuthResult{User: user, Tokens: pair}, nil
}

// Refresh rotates raw: the presented token is revoked and a new pair is issued.
// Every failure is reported as the same Unauthorized error.
func (s *Service) Refresh(ctx context.Context, raw string) (*jwt.TokenPair, error) {
	pair, err := s.rotate(ctx, raw)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			s.logger.ErrorContext(ctx, "refresh failed", slog.Any("error", err))
		} else {
			s.logger.WarnContext(ctx, "refresh rejected", slog.Any("error", err))
		}
		return nil, apperr.Unauthorized(msgInvalidRefresh)
	}

	return pair, nil
}

func (s *Service) rotate(ctx context.Context, raw string) (*jwt.TokenPair, error) {
	claims, err := s.issuer.Verify(raw, jwt.RefreshKey)
	if err != nil {
		return nil, apperr.Unauthorized(err.Error())
	}

	record, err := s.ledger.Lookup(ctx, raw)
	if err != nil {
		return nil, err
	}

	if record.UserID != claims.Subject {
		return nil, apperr.Unauthorized("refresh token owner mismatch")
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.Unauthorized("user not found")
		}
		return nil, err
	}

	var pair *jwt.TokenPair
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.Revoke(ctx, user.ID, raw); err != nil {
			return err
		}

		var err error
		pair, err = s.issuer.Issue(jwt.Subject{ID: user.ID, Email: user.Email})
		if err != nil {
			return err
		}

		return s.ledger.Record(ctx, user.ID, pair.RefreshToken, pair.RefreshExpiresAt)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "refresh token rotated", slog.String("user_id", user.ID))

	return pair, nil
}

// Logout revokes raw on behalf of callerUserID.
// A token that is unknown, already revoked or owned by someone else fails with NotFound.
func (s *Service) Logout(ctx context.Context, raw, callerUserID string) (*LogoutResult, error) {
	if err := s.ledger.Revoke(ctx, callerUserID, raw); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.logger.WarnContext(ctx, "logout with unknown refresh token", slog.String("user_id", callerUserID))
			return nil, err
		}
		s.logger.ErrorContext(ctx, "failed to revoke refresh token", slog.Any("error", err))
		return nil, apperr.Internal(err)
	}

	s.logger.InfoContext(ctx, "user logged out", slog.String("user_id", callerUserID))

	return &LogoutResult{Message: msgLoggedOut}, nil
}

// AccessTokenTTL returns the lifetime of issued access tokens.
func (s *Service) AccessTokenTTL() time.Duration {
	return s.issuer.AccessTokenTTL()
}
