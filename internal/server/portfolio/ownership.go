package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/portfolio-tracker/internal/apperr"
	"github.com/iudanet/portfolio-tracker/internal/server/storage"
)

// verifyOwnership fails Forbidden when portfolioID belongs to someone other than userID.
// An unknown portfolio fails NotFound.
func (s *Service) verifyOwnership(ctx context.Context, userID, portfolioID string) error {
	portfolio, err := s.portfolios.GetPortfolioByID(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, storage.ErrPortfolioNotFound) {
			return apperr.NotFound("Portfolio not found")
		}
		return fmt.Errorf("failed to load portfolio: %w", err)
	}

	if portfolio.UserID != userID {
		s.logger.WarnContext(ctx, "portfolio ownership violation",
			slog.String("user_id", userID),
			slog.String("portfolio_id", portfolioID))
		return apperr.Forbidden("You do not have permission to access this portfolio")
	}

	return nil
}
