package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AssetType is the class of a holding.
type AssetType string

const (
	AssetTypeStock      AssetType = "STOCK"
	AssetTypeBond       AssetType = "BOND"
	AssetTypeMutualFund AssetType = "MUTUAL_FUND"
)

// ParseAssetType validates s against the known asset types.
func ParseAssetType(s string) (AssetType, error) {
	switch t := AssetType(s); t {
	case AssetTypeStock, AssetTypeBond, AssetTypeMutualFund:
		return t, nil
	default:
		return "", fmt.Errorf("unknown asset type %q", s)
	}
}

// Portfolio is the single portfolio of a user.
// All totals are derived by recalculation and never set by callers.
type Portfolio struct {
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	ID                    string          `json:"id"`
	UserID                string          `json:"user_id"`
	Assets                []*Asset        `json:"assets"` // только активные (не удаленные) активы
	TotalValue            decimal.Decimal `json:"total_value"`
	TotalCost             decimal.Decimal `json:"total_cost"`
	TotalGainLoss         decimal.Decimal `json:"total_gain_loss"`
	TotalReturnPercentage decimal.Decimal `json:"total_return_percentage"`
}

// Asset is one holding in a portfolio.
type Asset struct {
	PurchaseDate       time.Time        `json:"purchase_date"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	SoldDate           *time.Time       `json:"sold_date,omitempty"`
	DeletedAt          *time.Time       `json:"-"`
	SoldPrice          *decimal.Decimal `json:"sold_price,omitempty"`
	ID                 string           `json:"id"`
	PortfolioID        string           `json:"portfolio_id"`
	Code               string           `json:"code"`
	Name               string           `json:"name"`
	AssetType          AssetType        `json:"asset_type"`
	Quantity           decimal.Decimal  `json:"quantity"`
	Price              decimal.Decimal  `json:"price"` // цена покупки за единицу
	CurrentPrice       decimal.Decimal  `json:"current_price"`
	CurrentValue       decimal.Decimal  `json:"current_value"`
	GainLossAmount     decimal.Decimal  `json:"gain_loss_amount"`
	GainLossPercentage decimal.Decimal  `json:"gain_loss_percentage"`
}

// CostBasis is quantity × purchase price.
func (a *Asset) CostBasis() decimal.Decimal {
	return a.Quantity.Mul(a.Price)
}
