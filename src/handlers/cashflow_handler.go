package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/username/stockfolio/src/database"
	"github.com/username/stockfolio/src/logger"
	"github.com/username/stockfolio/src/model"
	"github.com/username/stockfolio/src/models"
	"github.com/username/stockfolio/src/services"
	"github.com/username/stockfolio/src/utils"
)

type CashFlowHandler struct {
	portfolioService services.PortfolioService
}

func NewCashFlowHandler(portfolioService services.PortfolioService) *CashFlowHandler {
	return &CashFlowHandler{portfolioService: portfolioService}
}

type addCashFlowRequest struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

func (h *CashFlowHandler) HandleListCashFlows(w http.ResponseWriter, r *http.Request) {
	flows, err := model.ListCashFlows(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list cash flows", "error", err)
		utils.SendJSONError(w, "Failed to load cash flows", http.StatusInternalServerError)
		return
	}
	if flows == nil {
		flows = []models.CashFlow{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(flows)
}

func (h *CashFlowHandler) HandleAddCashFlow(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	var req addCashFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cfType := models.CashFlowType(strings.ToLower(req.Type))
	if cfType != models.CashFlowDeposit && cfType != models.CashFlowWithdrawal {
		utils.SendJSONError(w, "Cash flow type must be 'deposit' or 'withdrawal'", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		utils.SendJSONError(w, "Amount must be positive", http.StatusBadRequest)
		return
	}
	date, err := parseDateField(req.Date)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	cf := models.CashFlow{
		ID:     uuid.New().String(),
		Type:   cfType,
		Amount: req.Amount,
		Date:   date,
	}
	if err := model.InsertCashFlow(database.DB, cf); err != nil {
		ctxLogger.Error("Failed to insert cash flow", "type", cf.Type, "error", err)
		utils.SendJSONError(w, "Failed to save cash flow", http.StatusInternalServerError)
		return
	}

	h.portfolioService.InvalidateCache()
	ctxLogger.Info("Cash flow added", "id", cf.ID, "type", cf.Type, "amount", cf.Amount)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(cf)
}

func (h *CashFlowHandler) HandleDeleteCashFlow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.SendJSONError(w, "Cash flow id required", http.StatusBadRequest)
		return
	}

	err := model.DeleteCashFlow(database.DB, id)
	if errors.Is(err, sql.ErrNoRows) {
		utils.SendJSONError(w, "Cash flow not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to delete cash flow", "id", id, "error", err)
		utils.SendJSONError(w, "Failed to delete cash flow", http.StatusInternalServerError)
		return
	}

	h.portfolioService.InvalidateCache()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CashFlowHandler) HandleGetCashFlowSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.portfolioService.GetCashFlowSummary()
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to compute cash flow summary", "error", err)
		utils.SendJSONError(w, "Failed to compute cash flow summary", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
