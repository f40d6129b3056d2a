package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/stockfolio/src/database"
	"github.com/username/stockfolio/src/logger"
	"github.com/username/stockfolio/src/model"
	"github.com/username/stockfolio/src/services"
	"github.com/username/stockfolio/src/utils"
)

type PriceHandler struct {
	priceService     services.PriceService
	portfolioService services.PortfolioService
}

func NewPriceHandler(priceService services.PriceService, portfolioService services.PortfolioService) *PriceHandler {
	return &PriceHandler{
		priceService:     priceService,
		portfolioService: portfolioService,
	}
}

// HandleGetPrices returns a quote for every symbol in the transaction log.
func (h *PriceHandler) HandleGetPrices(w http.ResponseWriter, r *http.Request) {
	symbols, err := model.DistinctSymbols(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list symbols", "error", err)
		utils.SendJSONError(w, "Failed to load symbols", http.StatusInternalServerError)
		return
	}

	prices := h.priceService.GetPrices(symbols)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prices)
}

// HandleRefreshPrices re-fetches every quote, bypassing the cache.
func (h *PriceHandler) HandleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	symbols, err := model.DistinctSymbols(database.DB)
	if err != nil {
		ctxLogger.Error("Failed to list symbols", "error", err)
		utils.SendJSONError(w, "Failed to load symbols", http.StatusInternalServerError)
		return
	}

	prices, err := h.priceService.RefreshAll(r.Context(), symbols)
	if err != nil {
		ctxLogger.Warn("Price refresh interrupted", "error", err)
		utils.SendJSONError(w, "Price refresh interrupted", http.StatusServiceUnavailable)
		return
	}

	h.portfolioService.InvalidateCache()
	ctxLogger.Info("Prices refreshed", "symbols", len(symbols))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prices)
}
