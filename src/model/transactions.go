package model

import (
	"database/sql"
	"time"

	"github.com/username/stockfolio/src/logger"
	"github.com/username/stockfolio/src/models"
)

// Dates are stored as RFC3339 text, always at midnight UTC.
const dateLayout = time.RFC3339

// InsertTransaction saves a single transaction.
func InsertTransaction(db *sql.DB, t models.Transaction) error {
	query := `
		INSERT INTO transactions (id, type, premium_type, portfolio, symbol, shares, price, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query, t.ID, string(t.Type), string(t.PremiumType), t.Portfolio, t.Symbol, t.Shares, t.Price, t.Date.Format(dateLayout))
	return err
}

// InsertTransactions saves a batch inside one database transaction.
// Returns the number of rows actually inserted.
func InsertTransactions(db *sql.DB, txs []models.Transaction) (int, error) {
	dbTx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`
		INSERT INTO transactions (id, type, premium_type, portfolio, symbol, shares, price, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, t := range txs {
		if _, err := stmt.Exec(t.ID, string(t.Type), string(t.PremiumType), t.Portfolio, t.Symbol, t.Shares, t.Price, t.Date.Format(dateLayout)); err != nil {
			return inserted, err
		}
		inserted++
	}
	if err := dbTx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// ListTransactions returns every stored transaction ordered by date then
// insertion order, which is the order the processors consume them in.
func ListTransactions(db *sql.DB) ([]models.Transaction, error) {
	rows, err := db.Query(`
		SELECT id, type, premium_type, portfolio, symbol, shares, price, date
		FROM transactions
		ORDER BY date ASC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var txType, premiumType, dateStr string
		if err := rows.Scan(&t.ID, &txType, &premiumType, &t.Portfolio, &t.Symbol, &t.Shares, &t.Price, &dateStr); err != nil {
			return nil, err
		}
		t.Type = models.TransactionType(txType)
		t.PremiumType = models.PremiumType(premiumType)
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			logger.L.Warn("Skipping transaction with unparseable date", "id", t.ID, "date", dateStr)
			continue
		}
		t.Date = date
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// DeleteTransaction removes one transaction by id. Returns sql.ErrNoRows
// when nothing matched.
func DeleteTransaction(db *sql.DB, id string) error {
	res, err := db.Exec(`DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteAllData wipes transactions, cash flows and cached prices in a
// single database transaction.
func DeleteAllData(db *sql.DB) error {
	dbTx, err := db.Begin()
	if err != nil {
		return err
	}
	defer dbTx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM transactions`,
		`DELETE FROM cash_flows`,
		`DELETE FROM price_cache`,
	} {
		if _, err := dbTx.Exec(stmt); err != nil {
			return err
		}
	}
	return dbTx.Commit()
}

// DistinctSymbols lists every symbol that appears in the transaction log.
func DistinctSymbols(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT DISTINCT symbol FROM transactions ORDER BY symbol ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}
