package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddAssetRequest представляет запрос на добавление актива.
// Числа принимаются и строкой, и JSON number.
type AddAssetRequest struct {
	PurchaseDate *time.Time      `json:"purchase_date,omitempty"` // по умолчанию текущее время
	AssetType    string          `json:"asset_type"`              // STOCK, BOND, MUTUAL_FUND
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"` // цена покупки за единицу
}

// UpdateAssetRequest представляет запрос на изменение актива.
// Отсутствующее поле сохраняет текущее значение, quantity = 0 удаляет актив.
type UpdateAssetRequest struct {
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// AssetResponse is an asset with its derived values.
type AssetResponse struct {
	PurchaseDate       time.Time        `json:"purchase_date"`
	UpdatedAt          time.Time        `json:"updated_at"`
	SoldDate           *time.Time       `json:"sold_date,omitempty"`
	SoldPrice          *decimal.Decimal `json:"sold_price,omitempty"`
	ID                 string           `json:"id"`
	PortfolioID        string           `json:"portfolio_id"`
	AssetType          string           `json:"asset_type"`
	Code               string           `json:"code"`
	Name               string           `json:"name"`
	Quantity           decimal.Decimal  `json:"quantity"`
	Price              decimal.Decimal  `json:"price"`
	CurrentPrice       decimal.Decimal  `json:"current_price"`
	CurrentValue       decimal.Decimal  `json:"current_value"`
	GainLossAmount     decimal.Decimal  `json:"gain_loss_amount"`
	GainLossPercentage decimal.Decimal  `json:"gain_loss_percentage"`
}

// SummaryResponse содержит итоги портфеля
type SummaryResponse struct {
	LastUpdated           time.Time       `json:"last_updated"`
	PortfolioID           string          `json:"portfolio_id"`
	TotalValue            decimal.Decimal `json:"total_value"`
	TotalCost             decimal.Decimal `json:"total_cost"`
	TotalGainLoss         decimal.Decimal `json:"total_gain_loss"`
	TotalReturnPercentage decimal.Decimal `json:"total_return_percentage"`
}

// TransactionResponse is one entry of the transaction log.
type TransactionResponse struct {
	CreatedAt       time.Time       `json:"created_at"`
	ID              string          `json:"id"`
	TransactionType string          `json:"transaction_type"` // BUY, SELL, DELETE
	AssetCode       string          `json:"asset_code"`
	AssetName       string          `json:"asset_name"`
	AssetType       string          `json:"asset_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// TransactionsResponse содержит историю транзакций и итоги по ней
type TransactionsResponse struct {
	Records         []TransactionResponse `json:"records"` // новые сверху
	TotalCount      int                   `json:"total_count"`
	TotalBuyAmount  decimal.Decimal       `json:"total_buy_amount"`
	TotalSellAmount decimal.Decimal       `json:"total_sell_amount"`
	NetFlow         decimal.Decimal       `json:"net_flow"`
}

// DashboardResponse represents GET /api/v1/portfolio/dashboard.
type DashboardResponse struct {
	Assets       []AssetResponse      `json:"assets"`
	Transactions TransactionsResponse `json:"transactions"`
	Summary      SummaryResponse      `json:"summary"`
}
