package storage

import (
	"context"
	"time"

	"github.com/iudanet/portfolio-tracker/internal/models"
)

// PortfolioStorage defines interface for portfolio and asset persistence
type PortfolioStorage interface {
	// CreatePortfolio creates an empty portfolio for a user
	CreatePortfolio(ctx context.Context, portfolio *models.Portfolio) error

	// GetPortfolioByID retrieves a portfolio without its assets
	// Returns ErrPortfolioNotFound if portfolio doesn't exist
	GetPortfolioByID(ctx context.Context, portfolioID string) (*models.Portfolio, error)

	// GetPortfolioByUserID retrieves the user's portfolio with its active assets
	// Returns ErrPortfolioNotFound if portfolio doesn't exist
	GetPortfolioByUserID(ctx context.Context, userID string) (*models.Portfolio, error)

	// UpdatePortfolioTotals writes the recalculated aggregates
	UpdatePortfolioTotals(ctx context.Context, portfolio *models.Portfolio) error

	// CreateAsset adds an asset to a portfolio
	CreateAsset(ctx context.Context, asset *models.Asset) error

	// GetAsset retrieves an active asset scoped to a portfolio
	// Returns ErrAssetNotFound if asset doesn't exist or is deleted
	GetAsset(ctx context.Context, portfolioID, assetID string) (*models.Asset, error)

	// UpdateAssetPosition writes quantity and purchase price
	// Returns ErrAssetNotFound if asset doesn't exist or is deleted
	UpdateAssetPosition(ctx context.Context, asset *models.Asset) error

	// UpdateAssetValuation writes the recalculated current price, value and gain/loss
	UpdateAssetValuation(ctx context.Context, asset *models.Asset) error

	// SoftDeleteAsset marks an asset as deleted and stores its sold price and date
	// Returns ErrAssetNotFound if asset doesn't exist or is already deleted
	SoftDeleteAsset(ctx context.Context, asset *models.Asset, deletedAt time.Time) error
}
