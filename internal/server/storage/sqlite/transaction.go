package sqlite

import (
	"context"
	"fmt"

	"github.com/iudanet/portfolio-tracker/internal/models"
)

// SaveTransaction appends a transaction record
func (s *Storage) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, transaction_type, asset_code, asset_name, asset_type,
			quantity, price, total_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.conn(ctx).ExecContext(ctx, query,
		tx.ID,
		tx.UserID,
		string(tx.TransactionType),
		tx.AssetCode,
		tx.AssetName,
		string(tx.AssetType),
		tx.Quantity,
		tx.Price,
		tx.TotalAmount,
		tx.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// GetUserTransactions retrieves all non-deleted transactions of a user, newest first
func (s *Storage) GetUserTransactions(ctx context.Context, userID string) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, transaction_type, asset_code, asset_name, asset_type,
			quantity, price, total_amount, created_at
		FROM transactions
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC, rowid DESC
	`

	rows, err := s.conn(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	transactions := make([]*models.Transaction, 0)

	for rows.Next() {
		tx := &models.Transaction{}
		var txType, assetType string

		if err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&txType,
			&tx.AssetCode,
			&tx.AssetName,
			&assetType,
			&tx.Quantity,
			&tx.Price,
			&tx.TotalAmount,
			&tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		tx.TransactionType = models.TransactionType(txType)
		tx.AssetType = models.AssetType(assetType)
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return transactions, nil
}
