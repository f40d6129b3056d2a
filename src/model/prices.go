package model

import (
	"database/sql"
	"time"
)

// CachedPrice is one row of the on-disk quote cache.
type CachedPrice struct {
	Symbol    string
	Price     float64
	UpdatedAt time.Time
}

// GetCachedPrice returns the stored quote for a symbol, or sql.ErrNoRows.
func GetCachedPrice(db *sql.DB, symbol string) (CachedPrice, error) {
	var cp CachedPrice
	var updatedAt string
	err := db.QueryRow(`SELECT symbol, price, updated_at FROM price_cache WHERE symbol = ?`, symbol).
		Scan(&cp.Symbol, &cp.Price, &updatedAt)
	if err != nil {
		return CachedPrice{}, err
	}
	cp.UpdatedAt, err = time.Parse(dateLayout, updatedAt)
	if err != nil {
		return CachedPrice{}, err
	}
	return cp, nil
}

// ListCachedPrices returns the whole quote cache keyed by symbol.
func ListCachedPrices(db *sql.DB) (map[string]CachedPrice, error) {
	rows, err := db.Query(`SELECT symbol, price, updated_at FROM price_cache`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make(map[string]CachedPrice)
	for rows.Next() {
		var cp CachedPrice
		var updatedAt string
		if err := rows.Scan(&cp.Symbol, &cp.Price, &updatedAt); err != nil {
			return nil, err
		}
		cp.UpdatedAt, err = time.Parse(dateLayout, updatedAt)
		if err != nil {
			continue
		}
		prices[cp.Symbol] = cp
	}
	return prices, rows.Err()
}

// UpsertPrice stores or refreshes a quote for a symbol.
func UpsertPrice(db *sql.DB, symbol string, price float64, updatedAt time.Time) error {
	query := `
		INSERT INTO price_cache (symbol, price, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET price = excluded.price, updated_at = excluded.updated_at`
	_, err := db.Exec(query, symbol, price, updatedAt.Format(dateLayout))
	return err
}
