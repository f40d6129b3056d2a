package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/username/stockfolio/src/database"
	"github.com/username/stockfolio/src/logger"
	"github.com/username/stockfolio/src/model"
	"github.com/username/stockfolio/src/models"
	"github.com/username/stockfolio/src/processors"
)

var csvExportHeader = []string{"type", "premium_type", "portfolio", "symbol", "shares", "price", "date"}

type csvServiceImpl struct{}

func NewCSVService() CSVService {
	return &csvServiceImpl{}
}

// parseCSVDate accepts dd/mm/yyyy and ISO dates.
func parseCSVDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"02/01/2006", "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return processors.MidnightUTC(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", raw)
}

// ParseTransactionsCSV reads a header-driven CSV of transactions. Rows that
// fail validation are counted and skipped, never aborting the whole import.
func ParseTransactionsCSV(fileReader io.Reader) ([]models.Transaction, int, error) {
	reader := csv.NewReader(fileReader)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: missing header row", ErrImportFailed)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"type", "symbol", "shares", "price", "date"} {
		if _, ok := colIndex[required]; !ok {
			return nil, 0, fmt.Errorf("%w: missing required column %q", ErrImportFailed, required)
		}
	}

	field := func(record []string, name string) string {
		idx, ok := colIndex[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var txs []models.Transaction
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		shares, sharesErr := strconv.ParseFloat(field(record, "shares"), 64)
		price, priceErr := strconv.ParseFloat(field(record, "price"), 64)
		date, dateErr := parseCSVDate(field(record, "date"))
		if sharesErr != nil || priceErr != nil || dateErr != nil {
			skipped++
			continue
		}

		t := models.Transaction{
			Type:        models.TransactionType(strings.ToLower(field(record, "type"))),
			PremiumType: models.PremiumType(strings.ToLower(field(record, "premium_type"))),
			Portfolio:   field(record, "portfolio"),
			Symbol:      strings.ToUpper(field(record, "symbol")),
			Shares:      shares,
			Price:       price,
			Date:        date,
		}
		if !t.IsValid() {
			skipped++
			continue
		}
		txs = append(txs, t)
	}
	return txs, skipped, nil
}

func (s *csvServiceImpl) ImportTransactions(fileReader io.Reader) (*ImportResult, error) {
	txs, skipped, err := ParseTransactionsCSV(fileReader)
	if err != nil {
		return nil, err
	}

	for i := range txs {
		txs[i].ID = uuid.New().String()
	}

	inserted, err := model.InsertTransactions(database.DB, txs)
	if err != nil {
		logger.L.Error("Failed to persist imported transactions", "inserted", inserted, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	logger.L.Info("CSV import completed", "imported", inserted, "skipped", skipped)
	return &ImportResult{Imported: inserted, Skipped: skipped}, nil
}

func (s *csvServiceImpl) ExportTransactions(w io.Writer) error {
	txs, err := model.ListTransactions(database.DB)
	if err != nil {
		return fmt.Errorf("failed to load transactions for export: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvExportHeader); err != nil {
		return err
	}
	for _, t := range txs {
		record := []string{
			string(t.Type),
			string(t.PremiumType),
			t.Portfolio,
			t.Symbol,
			strconv.FormatFloat(t.Shares, 'f', -1, 64),
			strconv.FormatFloat(t.Price, 'f', -1, 64),
			t.Date.Format("2006-01-02"),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
