package model

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/stockfolio/src/logger"
	"github.com/username/stockfolio/src/models"
	_ "modernc.org/sqlite"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

const testSchema = `
CREATE TABLE transactions (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    premium_type TEXT NOT NULL DEFAULT '',
    portfolio TEXT NOT NULL DEFAULT '',
    symbol TEXT NOT NULL,
    shares REAL NOT NULL,
    price REAL NOT NULL,
    date TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE cash_flows (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    amount REAL NOT NULL,
    date TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE price_cache (
    symbol TEXT PRIMARY KEY,
    price REAL NOT NULL,
    updated_at TIMESTAMP NOT NULL
);`

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db
}

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInsertAndListTransactions(t *testing.T) {
	db := newTestDB(t)

	later := models.Transaction{
		ID: "tx-2", Type: models.TransactionSell, Symbol: "AAPL",
		Shares: 5, Price: 150, Date: testDate(2023, 6, 1),
	}
	earlier := models.Transaction{
		ID: "tx-1", Type: models.TransactionBuy, Portfolio: "main", Symbol: "AAPL",
		Shares: 10, Price: 100, Date: testDate(2023, 1, 1),
	}
	require.NoError(t, InsertTransaction(db, later))
	require.NoError(t, InsertTransaction(db, earlier))

	txs, err := ListTransactions(db)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	// Date order, not insertion order.
	assert.Equal(t, "tx-1", txs[0].ID)
	assert.Equal(t, models.TransactionBuy, txs[0].Type)
	assert.Equal(t, "main", txs[0].Portfolio)
	assert.True(t, txs[0].Date.Equal(testDate(2023, 1, 1)))
	assert.Equal(t, "tx-2", txs[1].ID)
}

func TestInsertTransactionsBatch(t *testing.T) {
	db := newTestDB(t)

	batch := []models.Transaction{
		{ID: "a", Type: models.TransactionBuy, Symbol: "AAPL", Shares: 10, Price: 100, Date: testDate(2023, 1, 1)},
		{ID: "b", Type: models.TransactionBuy, Symbol: "MSFT", Shares: 5, Price: 200, Date: testDate(2023, 2, 1)},
	}
	inserted, err := InsertTransactions(db, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	symbols, err := DistinctSymbols(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)
}

func TestDeleteTransaction(t *testing.T) {
	db := newTestDB(t)

	tx := models.Transaction{ID: "tx-1", Type: models.TransactionBuy, Symbol: "AAPL", Shares: 10, Price: 100, Date: testDate(2023, 1, 1)}
	require.NoError(t, InsertTransaction(db, tx))

	require.NoError(t, DeleteTransaction(db, "tx-1"))
	assert.ErrorIs(t, DeleteTransaction(db, "tx-1"), sql.ErrNoRows)
}

func TestDeleteAllData(t *testing.T) {
	db := newTestDB(t)

	tx := models.Transaction{ID: "tx-1", Type: models.TransactionBuy, Symbol: "AAPL", Shares: 10, Price: 100, Date: testDate(2023, 1, 1)}
	require.NoError(t, InsertTransaction(db, tx))
	require.NoError(t, InsertCashFlow(db, models.CashFlow{ID: "cf-1", Type: models.CashFlowDeposit, Amount: 1000, Date: testDate(2023, 1, 1)}))
	require.NoError(t, UpsertPrice(db, "AAPL", 150, time.Now()))

	require.NoError(t, DeleteAllData(db))

	txs, err := ListTransactions(db)
	require.NoError(t, err)
	assert.Empty(t, txs)

	flows, err := ListCashFlows(db)
	require.NoError(t, err)
	assert.Empty(t, flows)

	prices, err := ListCachedPrices(db)
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestCashFlowRoundTrip(t *testing.T) {
	db := newTestDB(t)

	cf := models.CashFlow{ID: "cf-1", Type: models.CashFlowWithdrawal, Amount: 400, Date: testDate(2023, 7, 1)}
	require.NoError(t, InsertCashFlow(db, cf))

	flows, err := ListCashFlows(db)
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, models.CashFlowWithdrawal, flows[0].Type)
	assert.Equal(t, 400.0, flows[0].Amount)

	require.NoError(t, DeleteCashFlow(db, "cf-1"))
	assert.ErrorIs(t, DeleteCashFlow(db, "cf-1"), sql.ErrNoRows)
}

func TestUpsertPrice(t *testing.T) {
	db := newTestDB(t)

	first := testDate(2023, 6, 1)
	require.NoError(t, UpsertPrice(db, "AAPL", 150, first))

	cp, err := GetCachedPrice(db, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 150.0, cp.Price)
	assert.True(t, cp.UpdatedAt.Equal(first))

	second := testDate(2023, 6, 2)
	require.NoError(t, UpsertPrice(db, "AAPL", 155, second))

	cp, err = GetCachedPrice(db, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 155.0, cp.Price)
	assert.True(t, cp.UpdatedAt.Equal(second))

	_, err = GetCachedPrice(db, "MSFT")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
