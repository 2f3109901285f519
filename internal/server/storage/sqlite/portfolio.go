package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iudanet/portfolio-tracker/internal/models"
	"github.com/iudanet/portfolio-tracker/internal/server/storage"
)

const portfolioColumns = `id, user_id, total_value, total_cost, total_gain_loss, total_return_percentage, created_at, updated_at`

const assetColumns = `id, portfolio_id, asset_type, code, name, quantity, purchase_price, purchase_date,
	current_price, current_value, gain_loss_amount, gain_loss_percentage,
	sold_price, sold_date, created_at, updated_at, deleted_at`

// CreatePortfolio creates an empty portfolio for a user
func (s *Storage) CreatePortfolio(ctx context.Context, portfolio *models.Portfolio) error {
	query := `
		INSERT INTO portfolios (` + portfolioColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.conn(ctx).ExecContext(ctx, query,
		portfolio.ID,
		portfolio.UserID,
		portfolio.TotalValue,
		portfolio.TotalCost,
		portfolio.TotalGainLoss,
		portfolio.TotalReturnPercentage,
		portfolio.CreatedAt,
		portfolio.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}

	return nil
}

// GetPortfolioByID retrieves a portfolio without its assets
func (s *Storage) GetPortfolioByID(ctx context.Context, portfolioID string) (*models.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE id = ?`

	portfolio, err := scanPortfolio(s.conn(ctx).QueryRowContext(ctx, query, portfolioID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	return portfolio, nil
}

// GetPortfolioByUserID retrieves the user's portfolio with its active assets
func (s *Storage) GetPortfolioByUserID(ctx context.Context, userID string) (*models.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE user_id = ?`

	portfolio, err := scanPortfolio(s.conn(ctx).QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	assets, err := s.getActiveAssets(ctx, portfolio.ID)
	if err != nil {
		return nil, err
	}
	portfolio.Assets = assets

	return portfolio, nil
}

// UpdatePortfolioTotals writes the recalculated aggregates
func (s *Storage) UpdatePortfolioTotals(ctx context.Context, portfolio *models.Portfolio) error {
	query := `
		UPDATE portfolios
		SET total_value = ?, total_cost = ?, total_gain_loss = ?, total_return_percentage = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.conn(ctx).ExecContext(ctx, query,
		portfolio.TotalValue,
		portfolio.TotalCost,
		portfolio.TotalGainLoss,
		portfolio.TotalReturnPercentage,
		portfolio.UpdatedAt,
		portfolio.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio totals: %w", err)
	}

	return expectOneRow(result, storage.ErrPortfolioNotFound)
}

// CreateAsset adds an asset to a portfolio
func (s *Storage) CreateAsset(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (id, portfolio_id, asset_type, code, name, quantity, purchase_price, purchase_date,
			current_price, current_value, gain_loss_amount, gain_loss_percentage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.conn(ctx).ExecContext(ctx, query,
		asset.ID,
		asset.PortfolioID,
		string(asset.AssetType),
		asset.Code,
		asset.Name,
		asset.Quantity,
		asset.Price,
		asset.PurchaseDate,
		asset.CurrentPrice,
		asset.CurrentValue,
		asset.GainLossAmount,
		asset.GainLossPercentage,
		asset.CreatedAt,
		asset.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}

	return nil
}

// GetAsset retrieves an active asset scoped to a portfolio
func (s *Storage) GetAsset(ctx context.Context, portfolioID, assetID string) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = ? AND portfolio_id = ? AND deleted_at IS NULL`

	asset, err := scanAsset(s.conn(ctx).QueryRowContext(ctx, query, assetID, portfolioID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return asset, nil
}

// UpdateAssetPosition writes quantity and purchase price
func (s *Storage) UpdateAssetPosition(ctx context.Context, asset *models.Asset) error {
	query := `
		UPDATE assets
		SET quantity = ?, purchase_price = ?, updated_at = ?
		WHERE id = ? AND portfolio_id = ? AND deleted_at IS NULL
	`

	result, err := s.conn(ctx).ExecContext(ctx, query,
		asset.Quantity,
		asset.Price,
		asset.UpdatedAt,
		asset.ID,
		asset.PortfolioID,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}

	return expectOneRow(result, storage.ErrAssetNotFound)
}

// UpdateAssetValuation writes the recalculated current price, value and gain/loss
func (s *Storage) UpdateAssetValuation(ctx context.Context, asset *models.Asset) error {
	query := `
		UPDATE assets
		SET current_price = ?, current_value = ?, gain_loss_amount = ?, gain_loss_percentage = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := s.conn(ctx).ExecContext(ctx, query,
		asset.CurrentPrice,
		asset.CurrentValue,
		asset.GainLossAmount,
		asset.GainLossPercentage,
		asset.UpdatedAt,
		asset.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset valuation: %w", err)
	}

	return expectOneRow(result, storage.ErrAssetNotFound)
}

// SoftDeleteAsset marks an asset as deleted and stores its sold price and date
func (s *Storage) SoftDeleteAsset(ctx context.Context, asset *models.Asset, deletedAt time.Time) error {
	query := `
		UPDATE assets
		SET deleted_at = ?, sold_date = ?, sold_price = ?, updated_at = ?
		WHERE id = ? AND portfolio_id = ? AND deleted_at IS NULL
	`

	result, err := s.conn(ctx).ExecContext(ctx, query,
		deletedAt,
		deletedAt,
		asset.CurrentPrice,
		deletedAt,
		asset.ID,
		asset.PortfolioID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	if err := expectOneRow(result, storage.ErrAssetNotFound); err != nil {
		return err
	}

	soldPrice := asset.CurrentPrice
	asset.SoldPrice = &soldPrice
	asset.SoldDate = &deletedAt
	asset.DeletedAt = &deletedAt

	return nil
}

func (s *Storage) getActiveAssets(ctx context.Context, portfolioID string) ([]*models.Asset, error) {
	query := `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE portfolio_id = ? AND deleted_at IS NULL
		ORDER BY created_at, rowid
	`

	rows, err := s.conn(ctx).QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	assets := make([]*models.Asset, 0)

	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return assets, nil
}

func scanPortfolio(row rowScanner) (*models.Portfolio, error) {
	portfolio := &models.Portfolio{}

	if err := row.Scan(
		&portfolio.ID,
		&portfolio.UserID,
		&portfolio.TotalValue,
		&portfolio.TotalCost,
		&portfolio.TotalGainLoss,
		&portfolio.TotalReturnPercentage,
		&portfolio.CreatedAt,
		&portfolio.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return portfolio, nil
}

func scanAsset(row rowScanner) (*models.Asset, error) {
	asset := &models.Asset{}
	var (
		assetType string
		soldPrice decimal.NullDecimal
		soldDate  sql.NullTime
		deletedAt sql.NullTime
	)

	if err := row.Scan(
		&asset.ID,
		&asset.PortfolioID,
		&assetType,
		&asset.Code,
		&asset.Name,
		&asset.Quantity,
		&asset.Price,
		&asset.PurchaseDate,
		&asset.CurrentPrice,
		&asset.CurrentValue,
		&asset.GainLossAmount,
		&asset.GainLossPercentage,
		&soldPrice,
		&soldDate,
		&asset.CreatedAt,
		&asset.UpdatedAt,
		&deletedAt,
	); err != nil {
		return nil, err
	}

	asset.AssetType = models.AssetType(assetType)
	if soldPrice.Valid {
		asset.SoldPrice = &soldPrice.Decimal
	}
	asset.SoldDate = nullTime(soldDate)
	asset.DeletedAt = nullTime(deletedAt)

	return asset, nil
}

func expectOneRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return notFound
	}

	return nil
}
