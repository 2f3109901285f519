package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/portfolio-tracker/internal/models"
	"github.com/iudanet/portfolio-tracker/internal/server/portfolio"
	"github.com/iudanet/portfolio-tracker/internal/validation"
	"github.com/iudanet/portfolio-tracker/pkg/api"
)

// PortfolioService определяет операции с портфелем, которые нужны handler-у
type PortfolioService interface {
	AddAsset(ctx context.Context, userID, portfolioID string, in portfolio.AssetInput) (*models.Asset, error)
	UpdateAsset(ctx context.Context, userID, portfolioID, assetID string, in portfolio.UpdateAssetInput) (*models.Asset, error)
	RemoveAsset(ctx context.Context, userID, portfolioID, assetID string) error
	Dashboard(ctx context.Context, userID string) (*portfolio.Dashboard, error)
}

// PortfolioHandler handles portfolio and asset requests.
// All routes require AuthMiddleware.
type PortfolioHandler struct {
	logger  *slog.Logger
	service PortfolioService
}

// NewPortfolioHandler создает новый handler для портфеля
func NewPortfolioHandler(logger *slog.Logger, service PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		logger:  logger,
		service: service,
	}
}

// Dashboard обрабатывает GET /api/v1/portfolio/dashboard
// Пересчитывает цены и возвращает итоги, активы и историю транзакций
func (h *PortfolioHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(ctx, userID)
	if err != nil {
		sendAppError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, dashboardResponse(dashboard), http.StatusOK)
}

// AddAsset обрабатывает POST /api/v1/portfolio/{portfolioId}/assets
func (h *PortfolioHandler) AddAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	portfolioID := r.PathValue("portfolioId")
	if portfolioID == "" {
		sendError(h.logger, w, "portfolioId is required", http.StatusBadRequest)
		return
	}

	var req api.AddAssetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode add asset request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	for _, check := range []error{
		validation.ValidateAssetType(req.AssetType),
		validation.ValidateAssetCode(req.Code),
		validation.ValidateName("name", req.Name),
		validation.ValidateQuantity(req.Quantity),
		validation.ValidatePrice(req.Price),
	} {
		if check != nil {
			h.logger.WarnContext(ctx, "invalid add asset request", slog.Any("error", check))
			sendError(h.logger, w, check.Error(), http.StatusBadRequest)
			return
		}
	}

	asset, err := h.service.AddAsset(ctx, userID, portfolioID, portfolio.AssetInput{
		AssetType:    models.AssetType(req.AssetType),
		Code:         req.Code,
		Name:         req.Name,
		Quantity:     req.Quantity,
		Price:        req.Price,
		PurchaseDate: req.PurchaseDate,
	})
	if err != nil {
		sendAppError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, assetResponse(asset), http.StatusCreated)
}

// UpdateAsset обрабатывает PUT /api/v1/portfolio/{portfolioId}/assets/{assetId}
func (h *PortfolioHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	portfolioID, assetID := r.PathValue("portfolioId"), r.PathValue("assetId")
	if portfolioID == "" || assetID == "" {
		sendError(h.logger, w, "portfolioId and assetId are required", http.StatusBadRequest)
		return
	}

	var req api.UpdateAssetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode update asset request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Quantity != nil {
		if err := validation.ValidateUpdateQuantity(*req.Quantity); err != nil {
			sendError(h.logger, w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.Price != nil {
		if err := validation.ValidatePrice(*req.Price); err != nil {
			sendError(h.logger, w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	asset, err := h.service.UpdateAsset(ctx, userID, portfolioID, assetID, portfolio.UpdateAssetInput{
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		sendAppError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, assetResponse(asset), http.StatusOK)
}

// RemoveAsset обрабатывает DELETE /api/v1/portfolio/{portfolioId}/assets/{assetId}
func (h *PortfolioHandler) RemoveAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	portfolioID, assetID := r.PathValue("portfolioId"), r.PathValue("assetId")
	if portfolioID == "" || assetID == "" {
		sendError(h.logger, w, "portfolioId and assetId are required", http.StatusBadRequest)
		return
	}

	if err := h.service.RemoveAsset(ctx, userID, portfolioID, assetID); err != nil {
		sendAppError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PortfolioHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "user ID not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
	}
	return userID, ok
}

func assetResponse(a *models.Asset) api.AssetResponse {
	return api.AssetResponse{
		ID:                 a.ID,
		PortfolioID:        a.PortfolioID,
		AssetType:          string(a.AssetType),
		Code:               a.Code,
		Name:               a.Name,
		Quantity:           a.Quantity,
		Price:              a.Price,
		PurchaseDate:       a.PurchaseDate,
		CurrentPrice:       a.CurrentPrice,
		CurrentValue:       a.CurrentValue,
		GainLossAmount:     a.GainLossAmount,
		GainLossPercentage: a.GainLossPercentage,
		SoldPrice:          a.SoldPrice,
		SoldDate:           a.SoldDate,
		UpdatedAt:          a.UpdatedAt,
	}
}

func dashboardResponse(d *portfolio.Dashboard) api.DashboardResponse {
	assets := make([]api.AssetResponse, 0, len(d.Assets))
	for _, a := range d.Assets {
		assets = append(assets, assetResponse(a))
	}

	records := make([]api.TransactionResponse, 0, len(d.Transactions.Records))
	for _, t := range d.Transactions.Records {
		records = append(records, api.TransactionResponse{
			ID:              t.ID,
			TransactionType: string(t.TransactionType),
			AssetCode:       t.AssetCode,
			AssetName:       t.AssetName,
			AssetType:       string(t.AssetType),
			Quantity:        t.Quantity,
			Price:           t.Price,
			TotalAmount:     t.TotalAmount,
			CreatedAt:       t.CreatedAt,
		})
	}

	return api.DashboardResponse{
		Summary: api.SummaryResponse{
			PortfolioID:           d.Summary.PortfolioID,
			TotalValue:            d.Summary.TotalValue,
			TotalCost:             d.Summary.TotalCost,
			TotalGainLoss:         d.Summary.TotalGainLoss,
			TotalReturnPercentage: d.Summary.TotalReturnPercentage,
			LastUpdated:           d.Summary.LastUpdated,
		},
		Assets: assets,
		Transactions: api.TransactionsResponse{
			TotalCount:      d.Transactions.Count,
			TotalBuyAmount:  d.Transactions.TotalBuyAmount,
			TotalSellAmount: d.Transactions.TotalSellAmount,
			NetFlow:         d.Transactions.NetFlow,
			Records:         records,
		},
	}
}
