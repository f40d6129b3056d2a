package services

import (
	"context"
	"errors"
	"io"

	"github.com/username/stockfolio/src/models"
)

// Define common service errors
var (
	ErrImportFailed = errors.New("csv import failed")
	ErrFileTooLarge = errors.New("uploaded file exceeds the size limit")
)

// ImportResult summarises one CSV import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// PortfolioService exposes the computed views over the transaction log.
// All results are cached until InvalidateCache is called.
type PortfolioService interface {
	GetHoldings() ([]models.Holding, error)
	GetSaleRecords() ([]models.SaleRecord, error)
	GetSummary(portfolio string) (models.PortfolioSummary, error)
	GetCashFlowSummary() (models.CashFlowSummary, error)
	InvalidateCache()
}

// PriceService fetches current market quotes. Lookups never fail hard: a
// symbol whose quote cannot be resolved maps to price 0.
type PriceService interface {
	// GetPrices returns a quote for every requested symbol, serving fresh
	// cached values where available and fetching the rest.
	GetPrices(symbols []string) map[string]float64
	// RefreshAll bypasses the cache and re-fetches every symbol.
	RefreshAll(ctx context.Context, symbols []string) (map[string]float64, error)
}

// CSVService imports and exports the transaction log as CSV.
type CSVService interface {
	ImportTransactions(fileReader io.Reader) (*ImportResult, error)
	ExportTransactions(w io.Writer) error
}
