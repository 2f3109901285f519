// Package portfolio implements asset mutations, price recalculation and the
// transaction log of a user's portfolio.
package portfolio

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
	"github.com/iudanet/portfolio-tracker/internal/models"
	"github.com/iudanet/portfolio-tracker/internal/server/storage"
)

// AssetInput содержит данные нового актива
type AssetInput struct {
	PurchaseDate *time.Time // по умолчанию текущее время
	AssetType    models.AssetType
	Code         string
	Name         string
	Quantity     decimal.Decimal
	Price        decimal.Decimal
}

// UpdateAssetInput holds the fields to change. Nil means keep the stored value.
type UpdateAssetInput struct {
	Quantity *decimal.Decimal
	Price    *decimal.Decimal
}

// Summary is the aggregate part of the dashboard.
type Summary struct {
	LastUpdated           time.Time
	PortfolioID           string
	TotalValue            decimal.Decimal
	TotalCost             decimal.Decimal
	TotalGainLoss         decimal.Decimal
	TotalReturnPercentage decimal.Decimal
}

// Dashboard is a freshly recalculated portfolio with its transaction history.
type Dashboard struct {
	Transactions *TransactionHistory
	Assets       []*models.Asset
	Summary      Summary
}

// Service orchestrates asset mutations. Every mutation is one storage
// transaction ending with a full recalculation.
type Service struct {
	logger     *slog.Logger
	portfolios storage.PortfolioStorage
	tx         storage.Transactor
	ledger     *TransactionLedger
	engine     *Engine
	clock      clock.Clock
}

// NewService создает сервис портфеля
func NewService(
	logger *slog.Logger,
	portfolios storage.PortfolioStorage,
	tx storage.Transactor,
	ledger *TransactionLedger,
	engine *Engine,
	clk clock.Clock,
) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		logger:     logger,
		portfolios: portfolios,
		tx:         tx,
		ledger:     ledger,
		engine:     engine,
		clock:      clk,
	}
}

// AddAsset creates an asset in portfolioID, records a BUY and recalculates.
// The returned asset carries its freshly computed current values.
func (s *Service) AddAsset(ctx context.Context, userID, portfolioID string, in AssetInput) (*models.Asset, error) {
	var result *models.Asset

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.verifyOwnership(ctx, userID, portfolioID); err != nil {
			return err
		}

		now := s.clock.Now()
		purchaseDate := now
		if in.PurchaseDate != nil {
			purchaseDate = in.PurchaseDate.UTC()
		}

		asset := &models.Asset{
			ID:           uuid.New().String(),
			PortfolioID:  portfolioID,
			AssetType:    in.AssetType,
			Code:         in.Code,
			Name:         in.Name,
			Quantity:     in.Quantity,
			Price:        in.Price,
			PurchaseDate: purchaseDate,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := s.portfolios.CreateAsset(ctx, asset); err != nil {
			return fmt.Errorf("failed to create asset: %w", err)
		}

		if _, err := s.ledger.Record(ctx, userID, TransactionInput{
			Type:      models.TransactionBuy,
			AssetCode: asset.Code,
			AssetName: asset.Name,
			AssetType: asset.AssetType,
			Quantity:  asset.Quantity,
			Price:     asset.Price,
		}); err != nil {
			return err
		}

		portfolio, err := s.engine.Refresh(ctx, userID)
		if err != nil {
			return err
		}

		result = findAsset(portfolio, asset.ID, asset)
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "add asset", err)
	}

	s.logger.InfoContext(ctx, "asset added",
		slog.String("user_id", userID),
		slog.String("asset_id", result.ID),
		slog.String("code", result.Code))

	return result, nil
}

// UpdateAsset changes quantity and/or purchase price of an asset.
// A quantity of zero removes the asset. A quantity change records exactly one
// BUY or SELL for the delta at the new price.
func (s *Service) UpdateAsset(ctx context.Context, userID, portfolioID, assetID string, in UpdateAssetInput) (*models.Asset, error) {
	var result *models.Asset

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.verifyOwnership(ctx, userID, portfolioID); err != nil {
			return err
		}

		asset, err := s.loadAsset(ctx, portfolioID, assetID)
		if err != nil {
			return err
		}

		newQuantity := asset.Quantity
		if in.Quantity != nil {
			newQuantity = *in.Quantity
		}
		newPrice := asset.Price
		if in.Price != nil {
			newPrice = *in.Price
		}

		if newQuantity.Equal(asset.Quantity) && newPrice.Equal(asset.Price) {
			return apperr.Forbidden("No changes detected in asset update")
		}

		if newQuantity.IsZero() {
			if err := s.remove(ctx, userID, asset); err != nil {
				return err
			}
			result = asset
			return nil
		}

		delta := newQuantity.Sub(asset.Quantity)

		asset.Quantity = newQuantity
		asset.Price = newPrice
		asset.UpdatedAt = s.clock.Now()

		if err := s.portfolios.UpdateAssetPosition(ctx, asset); err != nil {
			return fmt.Errorf("failed to update asset: %w", err)
		}

		if !delta.IsZero() {
			txType := models.TransactionBuy
			if delta.IsNegative() {
				txType = models.TransactionSell
			}

			if _, err := s.ledger.Record(ctx, userID, TransactionInput{
				Type:      txType,
				AssetCode: asset.Code,
				AssetName: asset.Name,
				AssetType: asset.AssetType,
				Quantity:  delta.Abs(),
				Price:     newPrice,
			}); err != nil {
				return err
			}
		}

		portfolio, err := s.engine.Refresh(ctx, userID)
		if err != nil {
			return err
		}

		result = findAsset(portfolio, asset.ID, asset)
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "update asset", err)
	}

	s.logger.InfoContext(ctx, "asset updated",
		slog.String("user_id", userID),
		slog.String("asset_id", assetID))

	return result, nil
}

// RemoveAsset soft-deletes an asset and records a DELETE with its last quantity and price.
func (s *Service) RemoveAsset(ctx context.Context, userID, portfolioID, assetID string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.verifyOwnership(ctx, userID, portfolioID); err != nil {
			return err
		}

		asset, err := s.loadAsset(ctx, portfolioID, assetID)
		if err != nil {
			return err
		}

		return s.remove(ctx, userID, asset)
	})
	if err != nil {
		return s.fail(ctx, "remove asset", err)
	}

	s.logger.InfoContext(ctx, "asset removed",
		slog.String("user_id", userID),
		slog.String("asset_id", assetID))

	return nil
}

// Dashboard recalculates the user's portfolio and attaches the transaction history.
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	portfolio, err := s.engine.Refresh(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "refresh portfolio", err)
	}

	history, err := s.ledger.History(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "load transactions", err)
	}

	return &Dashboard{
		Summary: Summary{
			PortfolioID:           portfolio.ID,
			TotalValue:            portfolio.TotalValue,
			TotalCost:             portfolio.TotalCost,
			TotalGainLoss:         portfolio.TotalGainLoss,
			TotalReturnPercentage: portfolio.TotalReturnPercentage,
			LastUpdated:           portfolio.UpdatedAt,
		},
		Assets:       portfolio.Assets,
		Transactions: history,
	}, nil
}

// remove must run inside the caller's transaction
func (s *Service) remove(ctx context.Context, userID string, asset *models.Asset) error {
	if err := s.portfolios.SoftDeleteAsset(ctx, asset, s.clock.Now()); err != nil {
		if errors.Is(err, storage.ErrAssetNotFound) {
			return apperr.NotFound("Asset not found")
		}
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	if _, err := s.ledger.Record(ctx, userID, TransactionInput{
		Type:      models.TransactionDelete,
		AssetCode: asset.Code,
		AssetName: asset.Name,
		AssetType: asset.AssetType,
		Quantity:  asset.Quantity,
		Price:     asset.Price,
	}); err != nil {
		return err
	}

	_, err := s.engine.Refresh(ctx, userID)
	return err
}

func (s *Service) loadAsset(ctx context.Context, portfolioID, assetID string) (*models.Asset, error) {
	asset, err := s.portfolios.GetAsset(ctx, portfolioID, assetID)
	if err != nil {
		if errors.Is(err, storage.ErrAssetNotFound) {
			return nil, apperr.NotFound("Asset not found")
		}
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}
	return asset, nil
}

// fail passes classified errors through and wraps everything else as internal
func (s *Service) fail(ctx context.Context, op string, err error) error {
	if apperr.KindOf(err) != apperr.KindInternal {
		return err
	}
	s.logger.ErrorContext(ctx, "failed to "+op, slog.Any("error", err))
	return apperr.Internal(err)
}

func findAsset(portfolio *models.Portfolio, assetID string, fallback *models.Asset) *models.Asset {
	for _, a := range portfolio.Assets {
		if a.ID == assetID {
			return a
		}
	}
	return fallback
}
