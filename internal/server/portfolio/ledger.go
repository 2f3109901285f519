package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iudanet/portfolio-tracker/internal/apperr"
	"github.com/iudanet/portfolio-tracker/internal/clock"
	"github.com/iudanet/portfolio-tracker/internal/models"
	"github.com/iudanet/portfolio-tracker/internal/server/storage"
)

// TransactionInput описывает одну мутацию портфеля для журнала
type TransactionInput struct {
	Type      models.TransactionType
	AssetCode string
	AssetName string
	AssetType models.AssetType
	Quantity  decimal.Decimal
	Price     decimal.Decimal
}

// TransactionHistory is the newest-first transaction log of a user with its totals.
type TransactionHistory struct {
	Records         []*models.Transaction
	Count           int
	TotalBuyAmount  decimal.Decimal
	TotalSellAmount decimal.Decimal
	NetFlow         decimal.Decimal
}

// TransactionLedger is the append-only log of portfolio mutations.
type TransactionLedger struct {
	users        storage.UserStorage
	transactions storage.TransactionStorage
	clock        clock.Clock
}

// NewTransactionLedger creates a transaction ledger.
func NewTransactionLedger(users storage.UserStorage, transactions storage.TransactionStorage, clk clock.Clock) *TransactionLedger {
	if clk == nil {
		clk = clock.Real{}
	}
	return &TransactionLedger{users: users, transactions: transactions, clock: clk}
}

// Record appends a transaction for userID. TotalAmount is quantity × price.
func (l *TransactionLedger) Record(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	if _, err := l.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	tx := &models.Transaction{
		ID:              uuid.New().String(),
		UserID:          userID,
		TransactionType: in.Type,
		AssetCode:       in.AssetCode,
		AssetName:       in.AssetName,
		AssetType:       in.AssetType,
		Quantity:        in.Quantity,
		Price:           in.Price,
		TotalAmount:     in.Quantity.Mul(in.Price),
		CreatedAt:       l.clock.Now(),
	}

	if err := l.transactions.SaveTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	return tx, nil
}

// History returns all transactions of userID newest first.
// BUY counts as inflow, SELL and DELETE count as outflow.
func (l *TransactionLedger) History(ctx context.Context, userID string) (*TransactionHistory, error) {
	records, err := l.transactions.GetUserTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	history := &TransactionHistory{
		Records:         records,
		Count:           len(records),
		TotalBuyAmount:  decimal.Zero,
		TotalSellAmount: decimal.Zero,
	}

	for _, r := range records {
		if r.TransactionType == models.TransactionBuy {
			history.TotalBuyAmount = history.TotalBuyAmount.Add(r.TotalAmount)
		} else {
			history.TotalSellAmount = history.TotalSellAmount.Add(r.TotalAmount)
		}
	}
	history.NetFlow = history.TotalBuyAmount.Sub(history.TotalSellAmount)

	return history, nil
}
