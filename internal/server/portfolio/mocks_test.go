package portfolio

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/portfolio-tracker/internal/clock"
	"github.com/iudanet/portfolio-tracker/internal/models"
	"github.com/iudanet/portfolio-tracker/internal/server/market"
	"github.com/iudanet/portfolio-tracker/internal/server/storage"
	"github.com/iudanet/portfolio-tracker/internal/server/storage/sqlite"
)

var testNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// mockPortfolioStorage is a map-backed PortfolioStorage with one portfolio per user
type mockPortfolioStorage struct {
	portfolios       map[string]*models.Portfolio // userID -> portfolio
	updateTotalsErr  error
	valuationUpdates int
}

func newMockPortfolioStorage() *mockPortfolioStorage {
	return &mockPortfolioStorage{portfolios: make(map[string]*models.Portfolio)}
}

func (m *mockPortfolioStorage) CreatePortfolio(ctx context.Context, portfolio *models.Portfolio) error {
	m.portfolios[portfolio.UserID] = portfolio
	return nil
}

func (m *mockPortfolioStorage) GetPortfolioByID(ctx context.Context, portfolioID string) (*models.Portfolio, error) {
	for _, p := range m.portfolios {
		if p.ID == portfolioID {
			return p, nil
		}
	}
	return nil, storage.ErrPortfolioNotFound
}

func (m *mockPortfolioStorage) GetPortfolioByUserID(ctx context.Context, userID string) (*models.Portfolio, error) {
	p, ok := m.portfolios[userID]
	if !ok {
		return nil, storage.ErrPortfolioNotFound
	}
	return p, nil
}

func (m *mockPortfolioStorage) UpdatePortfolioTotals(ctx context.Context, portfolio *models.Portfolio) error {
	return m.updateTotalsErr
}

func (m *mockPortfolioStorage) CreateAsset(ctx context.Context, asset *models.Asset) error {
	for _, p := range m.portfolios {
		if p.ID == asset.PortfolioID {
			p.Assets = append(p.Assets, asset)
			return nil
		}
	}
	return storage.ErrPortfolioNotFound
}

func (m *mockPortfolioStorage) GetAsset(ctx context.Context, portfolioID, assetID string) (*models.Asset, error) {
	for _, p := range m.portfolios {
		if p.ID != portfolioID {
			continue
		}
		for _, a := range p.Assets {
			if a.ID == assetID {
				return a, nil
			}
		}
	}
	return nil, storage.ErrAssetNotFound
}

func (m *mockPortfolioStorage) UpdateAssetPosition(ctx context.Context, asset *models.Asset) error {
	return nil
}

func (m *mockPortfolioStorage) UpdateAssetValuation(ctx context.Context, asset *models.Asset) error {
	m.valuationUpdates++
	return nil
}

func (m *mockPortfolioStorage) SoftDeleteAsset(ctx context.Context, asset *models.Asset, deletedAt time.Time) error {
	return nil
}

type mockTransactor struct {
	calls int
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

func newAsset(code, quantity, price string) *models.Asset {
	return &models.Asset{
		ID:        uuid.New().String(),
		Code:      code,
		Name:      code,
		AssetType: models.AssetTypeStock,
		Quantity:  d(quantity),
		Price:     d(price),
	}
}

// sqliteEnv собирает сервис поверх in-memory SQLite
type sqliteEnv struct {
	store   *sqlite.Storage
	service *Service
	ledger  *TransactionLedger
	clock   *clock.Manual
}

func newSQLiteEnv(t *testing.T, prices market.PriceOracle) *sqliteEnv {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(ctx, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	clk := clock.NewManual(testNow)
	ledger := NewTransactionLedger(store, store, clk)
	engine := NewEngine(testLogger(), store, store, prices, clk)

	return &sqliteEnv{
		store:   store,
		service: NewService(testLogger(), store, store, ledger, engine, clk),
		ledger:  ledger,
		clock:   clk,
	}
}

// createUser creates a user with an empty portfolio and returns both ids
func (e *sqliteEnv) createUser(t *testing.T, email string) (string, string) {
	t.Helper()
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "hash",
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	require.NoError(t, e.store.CreateUser(ctx, user))

	portfolio := &models.Portfolio{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	require.NoError(t, e.store.CreatePortfolio(ctx, portfolio))

	return user.ID, portfolio.ID
}
