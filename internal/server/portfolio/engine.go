package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/iudanet/portfolio-tracker/internal/apperr"
	"github.com/iudanet/portfolio-tracker/internal/clock"
	"github.com/iudanet/portfolio-tracker/internal/models"
	"github.com/iudanet/portfolio-tracker/internal/server/market"
	"github.com/iudanet/portfolio-tracker/internal/server/storage"
)

var hundred = decimal.NewFromInt(100)

// Engine пересчитывает стоимость активов и итоги портфеля
type Engine struct {
	logger     *slog.Logger
	portfolios storage.PortfolioStorage
	tx         storage.Transactor
	oracle     market.PriceOracle
	clock      clock.Clock
}

// NewEngine creates a recalculation engine.
func NewEngine(logger *slog.Logger, portfolios storage.PortfolioStorage, tx storage.Transactor, oracle market.PriceOracle, clk clock.Clock) *Engine {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Engine{
		logger:     logger,
		portfolios: portfolios,
		tx:         tx,
		oracle:     oracle,
		clock:      clk,
	}
}

// Refresh prices every active asset of the user's portfolio and rewrites the totals.
// All writes happen in one storage transaction.
func (e *Engine) Refresh(ctx context.Context, userID string) (*models.Portfolio, error) {
	var portfolio *models.Portfolio

	err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		portfolio, err = e.portfolios.GetPortfolioByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, storage.ErrPortfolioNotFound) {
				// портфель создается при регистрации, его отсутствие это нарушение целостности
				e.logger.ErrorContext(ctx, "portfolio missing for user", slog.String("user_id", userID))
				return apperr.NotFound("Portfolio not found")
			}
			return fmt.Errorf("failed to load portfolio: %w", err)
		}

		now := e.clock.Now()
		totalValue := decimal.Zero
		totalCost := decimal.Zero

		for _, asset := range portfolio.Assets {
			Revalue(asset, e.oracle.PriceFor(asset.Code))
			asset.UpdatedAt = now

			if err := e.portfolios.UpdateAssetValuation(ctx, asset); err != nil {
				return fmt.Errorf("failed to update asset %s: %w", asset.ID, err)
			}

			totalValue = totalValue.Add(asset.CurrentValue)
			totalCost = totalCost.Add(asset.CostBasis())
		}

		portfolio.TotalValue = totalValue
		portfolio.TotalCost = totalCost
		portfolio.TotalGainLoss = totalValue.Sub(totalCost)
		portfolio.TotalReturnPercentage = percentage(portfolio.TotalGainLoss, totalCost)
		portfolio.UpdatedAt = now

		if err := e.portfolios.UpdatePortfolioTotals(ctx, portfolio); err != nil {
			return fmt.Errorf("failed to update portfolio totals: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.DebugContext(ctx, "portfolio recalculated",
		slog.String("portfolio_id", portfolio.ID),
		slog.Int("assets", len(portfolio.Assets)))

	return portfolio, nil
}

// Revalue sets the derived columns of asset for currentPrice.
func Revalue(asset *models.Asset, currentPrice decimal.Decimal) {
	costBasis := asset.CostBasis()

	asset.CurrentPrice = currentPrice
	asset.CurrentValue = asset.Quantity.Mul(currentPrice)
	asset.GainLossAmount = asset.CurrentValue.Sub(costBasis)
	asset.GainLossPercentage = percentage(asset.GainLossAmount, costBasis)
}

// percentage is gain/base×100 rounded half away from zero, or 0 when base is not positive.
func percentage(gain, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return gain.Div(base).Mul(hundred).Round(2)
}
