package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/username/stockfolio/src/config"
	"github.com/username/stockfolio/src/database"
	"github.com/username/stockfolio/src/logger"
	"github.com/username/stockfolio/src/model"
	"github.com/username/stockfolio/src/models"
	"github.com/username/stockfolio/src/processors"
	"github.com/username/stockfolio/src/services"
	"github.com/username/stockfolio/src/utils"
)

type TransactionHandler struct {
	portfolioService services.PortfolioService
	csvService       services.CSVService
}

func NewTransactionHandler(portfolioService services.PortfolioService, csvService services.CSVService) *TransactionHandler {
	return &TransactionHandler{
		portfolioService: portfolioService,
		csvService:       csvService,
	}
}

// parseDateField accepts the formats clients send: plain dates and RFC3339.
func parseDateField(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", "02/01/2006", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return processors.MidnightUTC(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", raw)
}

type addTransactionRequest struct {
	Type        string  `json:"type"`
	PremiumType string  `json:"premium_type"`
	Portfolio   string  `json:"portfolio"`
	Symbol      string  `json:"symbol"`
	Shares      float64 `json:"shares"`
	Price       float64 `json:"price"`
	Date        string  `json:"date"`
}

func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := model.ListTransactions(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list transactions", "error", err)
		utils.SendJSONError(w, "Failed to load transactions", http.StatusInternalServerError)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(txs)
}

func (h *TransactionHandler) HandleAddTransaction(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	var req addTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	date, err := parseDateField(req.Date)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	t := models.Transaction{
		ID:          uuid.New().String(),
		Type:        models.TransactionType(strings.ToLower(req.Type)),
		PremiumType: models.PremiumType(strings.ToLower(req.PremiumType)),
		Portfolio:   req.Portfolio,
		Symbol:      strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Shares:      req.Shares,
		Price:       req.Price,
		Date:        date,
	}
	if !t.IsValid() {
		utils.SendJSONError(w, "Invalid transaction", http.StatusBadRequest)
		return
	}

	if err := model.InsertTransaction(database.DB, t); err != nil {
		ctxLogger.Error("Failed to insert transaction", "symbol", t.Symbol, "error", err)
		utils.SendJSONError(w, "Failed to save transaction", http.StatusInternalServerError)
		return
	}

	h.portfolioService.InvalidateCache()
	ctxLogger.Info("Transaction added", "id", t.ID, "type", t.Type, "symbol", t.Symbol)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(t)
}

func (h *TransactionHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.SendJSONError(w, "Transaction id required", http.StatusBadRequest)
		return
	}

	err := model.DeleteTransaction(database.DB, id)
	if errors.Is(err, sql.ErrNoRows) {
		utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to delete transaction", "id", id, "error", err)
		utils.SendJSONError(w, "Failed to delete transaction", http.StatusInternalServerError)
		return
	}

	h.portfolioService.InvalidateCache()
	w.WriteHeader(http.StatusNoContent)
}

// HandleClearAllData wipes every stored transaction, cash flow and cached
// price.
func (h *TransactionHandler) HandleClearAllData(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	if err := model.DeleteAllData(database.DB); err != nil {
		ctxLogger.Error("Failed to clear data", "error", err)
		utils.SendJSONError(w, "Failed to clear data", http.StatusInternalServerError)
		return
	}

	h.portfolioService.InvalidateCache()
	ctxLogger.Info("All data cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (h *TransactionHandler) HandleImportCSV(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, config.Cfg.MaxImportSizeBytes)
	if err := r.ParseMultipartForm(config.Cfg.MaxImportSizeBytes); err != nil {
		utils.SendJSONError(w, services.ErrFileTooLarge.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		utils.SendJSONError(w, "Missing 'file' form field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.csvService.ImportTransactions(file)
	if err != nil {
		ctxLogger.Error("CSV import failed", "error", err)
		if errors.Is(err, services.ErrImportFailed) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		} else {
			utils.SendJSONError(w, "Import failed", http.StatusInternalServerError)
		}
		return
	}

	h.portfolioService.InvalidateCache()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *TransactionHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=transactions_%s.csv", time.Now().Format("2006-01-02")))

	if err := h.csvService.ExportTransactions(w); err != nil {
		logger.FromContext(r.Context()).Error("CSV export failed", "error", err)
	}
}
