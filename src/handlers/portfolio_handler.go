package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/stockfolio/src/logger"
	"github.com/username/stockfolio/src/models"
	"github.com/username/stockfolio/src/processors"
	"github.com/username/stockfolio/src/services"
	"github.com/username/stockfolio/src/utils"
)

type PortfolioHandler struct {
	portfolioService services.PortfolioService
}

func NewPortfolioHandler(portfolioService services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

func (h *PortfolioHandler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.portfolioService.GetHoldings()
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to compute holdings", "error", err)
		utils.SendJSONError(w, "Failed to compute holdings", http.StatusInternalServerError)
		return
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(holdings)
}

func (h *PortfolioHandler) HandleGetSaleRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.portfolioService.GetSaleRecords()
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to compute sale records", "error", err)
		utils.SendJSONError(w, "Failed to compute sale records", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.SaleRecord{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// HandleGetSummary composes the portfolio summary, optionally scoped to one
// portfolio via the ?portfolio= query parameter.
func (h *PortfolioHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	portfolio := r.URL.Query().Get("portfolio")
	if portfolio == "" {
		portfolio = processors.FilterTotal
	}

	summary, err := h.portfolioService.GetSummary(portfolio)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to compute summary", "portfolio", portfolio, "error", err)
		utils.SendJSONError(w, "Failed to compute summary", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
