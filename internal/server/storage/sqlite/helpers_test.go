package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/portfolio-tracker/internal/models"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	storage, err := New(ctx, ":memory:", nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = storage.Close()
	}

	return storage, cleanup
}

func createTestUser(t *testing.T, ctx context.Context, s *Storage) string {
	userID := uuid.New().String()
	now := time.Now().UTC()
	user := &models.User{
		ID:           userID,
		Email:        "user_" + userID[:8] + "@example.com",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.CreateUser(ctx, user)
	require.NoError(t, err)

	return userID
}

func createTestPortfolio(t *testing.T, ctx context.Context, s *Storage, userID string) *models.Portfolio {
	now := time.Now().UTC()
	portfolio := &models.Portfolio{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.CreatePortfolio(ctx, portfolio)
	require.NoError(t, err)

	return portfolio
}

func newTestAsset(portfolioID, code string, quantity, price string) *models.Asset {
	now := time.Now().UTC()
	return &models.Asset{
		ID:           uuid.New().String(),
		PortfolioID:  portfolioID,
		AssetType:    models.AssetTypeStock,
		Code:         code,
		Name:         code + " Inc.",
		Quantity:     decimal.RequireFromString(quantity),
		Price:        decimal.RequireFromString(price),
		PurchaseDate: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
