package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of portfolio mutation a transaction records.
type TransactionType string

const (
	TransactionBuy    TransactionType = "BUY"
	TransactionSell   TransactionType = "SELL"
	TransactionDelete TransactionType = "DELETE"
)

// ParseTransactionType validates s against the known transaction types.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(s); t {
	case TransactionBuy, TransactionSell, TransactionDelete:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Transaction is an append-only record of a portfolio mutation.
type Transaction struct {
	CreatedAt       time.Time       `json:"created_at"`
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	TransactionType TransactionType `json:"transaction_type"`
	AssetCode       string          `json:"asset_code"`
	AssetName       string          `json:"asset_name"`
	AssetType       AssetType       `json:"asset_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	TotalAmount     decimal.Decimal `json:"total_amount"` // quantity × price
}
