package storage

import (
	"context"

	"github.com/iudanet/portfolio-tracker/internal/models"
)

// TransactionStorage defines interface for the append-only transaction log
type TransactionStorage interface {
	// SaveTransaction appends a transaction record
	SaveTransaction(ctx context.Context, tx *models.Transaction) error

	// GetUserTransactions retrieves all non-deleted transactions of a user,
	// newest first. Returns empty slice if none found
	GetUserTransactions(ctx context.Context, userID string) ([]*models.Transaction, error)
}
