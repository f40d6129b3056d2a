package model

import (
	"database/sql"
	"time"

	"github.com/username/stockfolio/src/logger"
	"github.com/username/stockfolio/src/models"
)

// InsertCashFlow saves a single deposit or withdrawal.
func InsertCashFlow(db *sql.DB, cf models.CashFlow) error {
	query := `INSERT INTO cash_flows (id, type, amount, date) VALUES (?, ?, ?, ?)`
	_, err := db.Exec(query, cf.ID, string(cf.Type), cf.Amount, cf.Date.Format(dateLayout))
	return err
}

// ListCashFlows returns all cash flows ordered by date then insertion order.
func ListCashFlows(db *sql.DB) ([]models.CashFlow, error) {
	rows, err := db.Query(`
		SELECT id, type, amount, date
		FROM cash_flows
		ORDER BY date ASC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flows []models.CashFlow
	for rows.Next() {
		var cf models.CashFlow
		var cfType, dateStr string
		if err := rows.Scan(&cf.ID, &cfType, &cf.Amount, &dateStr); err != nil {
			return nil, err
		}
		cf.Type = models.CashFlowType(cfType)
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			logger.L.Warn("Skipping cash flow with unparseable date", "id", cf.ID, "date", dateStr)
			continue
		}
		cf.Date = date
		flows = append(flows, cf)
	}
	return flows, rows.Err()
}

// DeleteCashFlow removes one cash flow by id. Returns sql.ErrNoRows when
// nothing matched.
func DeleteCashFlow(db *sql.DB, id string) error {
	res, err := db.Exec(`DELETE FROM cash_flows WHERE id = ?`, id)
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
