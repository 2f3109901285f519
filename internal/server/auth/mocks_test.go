package auth

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/portfolio-tracker/internal/clock"
	"github.com/iudanet/portfolio-tracker/internal/crypto"
	"github.com/iudanet/portfolio-tracker/internal/models"
	"github.com/iudanet/portfolio-tracker/internal/server/jwt"
	"github.com/iudanet/portfolio-tracker/internal/server/storage"
)

var testNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

// mockUserStorage is a map-backed UserStorage keyed by email
type mockUserStorage struct {
	users              map[string]*models.User
	createError        error
	getUserError       error
	updateLastLoginErr error
	mu                 sync.Mutex
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.users[user.Email]; exists {
		return storage.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	user, ok := m.users[email]
	if !ok || user.DeletedAt != nil {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	for _, user := range m.users {
		if user.ID == userID && user.DeletedAt == nil {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) DeleteUser(ctx context.Context, userID string, deletedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == userID && user.DeletedAt == nil {
			user.DeletedAt = &deletedAt
			return nil
		}
	}
	return storage.ErrUserNotFound
}

func (m *mockUserStorage) UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error {
	return m.updateLastLoginErr
}

// mockTokenStorage is a map-backed TokenStorage keyed by token hash
type mockTokenStorage struct {
	tokens map[string]*models.RefreshToken
	mu     sync.Mutex
}

func newMockTokenStorage() *mockTokenStorage {
	return &mockTokenStorage{tokens: make(map[string]*models.RefreshToken)}
}

func (m *mockTokenStorage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tokens[token.TokenHash]; exists {
		return storage.ErrTokenAlreadyExists
	}
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *mockTokenStorage) GetActiveRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[tokenHash]
	if !ok || token.IsRevoked {
		return nil, storage.ErrTokenNotFound
	}
	return token, nil
}

func (m *mockTokenStorage) RevokeRefreshToken(ctx context.Context, userID, tokenHash string, revokedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[tokenHash]
	if !ok || token.IsRevoked || token.UserID != userID {
		return storage.ErrTokenNotFound
	}
	token.IsRevoked = true
	token.RevokedAt = &revokedAt
	return nil
}

func (m *mockTokenStorage) GetUserTokens(ctx context.Context, userID string) ([]*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.RefreshToken
	for _, token := range m.tokens {
		if token.UserID == userID {
			result = append(result, token)
		}
	}
	return result, nil
}

// mockPortfolioStorage хранит только созданные портфели
type mockPortfolioStorage struct {
	storage.PortfolioStorage
	portfolios  map[string]*models.Portfolio
	createError error
}

func newMockPortfolioStorage() *mockPortfolioStorage {
	return &mockPortfolioStorage{portfolios: make(map[string]*models.Portfolio)}
}

func (m *mockPortfolioStorage) CreatePortfolio(ctx context.Context, portfolio *models.Portfolio) error {
	if m.createError != nil {
		return m.createError
	}
	m.portfolios[portfolio.UserID] = portfolio
	return nil
}

// mockTransactor runs fn without a real transaction
type mockTransactor struct {
	calls int
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type testEnv struct {
	service    *Service
	users      *mockUserStorage
	tokens     *mockTokenStorage
	portfolios *mockPortfolioStorage
	tx         *mockTransactor
	issuer     *jwt.Issuer
	clock      *clock.Manual
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clk := clock.NewManual(testNow)
	issuer, err := jwt.NewIssuer(jwt.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
	}, clk)
	require.NoError(t, err)

	env := &testEnv{
		users:      newMockUserStorage(),
		tokens:     newMockTokenStorage(),
		portfolios: newMockPortfolioStorage(),
		tx:         &mockTransactor{},
		issuer:     issuer,
		clock:      clk,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.service = NewService(
		logger,
		env.users,
		env.portfolios,
		env.tx,
		NewLedger(env.tokens, clk),
		issuer,
		crypto.NewPasswordHasher(crypto.MinPasswordCost),
		clk,
	)

	return env
}
