package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/username/stockfolio/src/models"
)

func TestSummarizeTotals(t *testing.T) {
	p := NewSummaryProcessor()
	asOf := date(2024, 1, 1)

	holdings := map[string]models.Holding{
		"AAPL": {Symbol: "AAPL", Portfolio: "main", CurrentValue: 1200, TotalCost: 1000, WeightedDays: 100},
		"MSFT": {Symbol: "MSFT", Portfolio: "ira", CurrentValue: 600, TotalCost: 500, WeightedDays: 200},
	}
	sales := []models.SaleRecord{
		{Symbol: "AAPL", Portfolio: "main", RealizedGain: 250, TotalCost: 500},
	}

	s := p.Summarize(nil, holdings, sales, FilterTotal, asOf)

	assert.Equal(t, FilterTotal, s.Portfolio)
	assert.Equal(t, 1800.0, s.TotalValue)
	assert.Equal(t, 1500.0, s.TotalCost)
	assert.Equal(t, 300.0, s.UnrealizedGain)
	assert.InDelta(t, 20.0, s.UnrealizedGainPercent, 1e-9)
	assert.Equal(t, 250.0, s.RealizedGain)
	assert.InDelta(t, 50.0, s.RealizedGainPercent, 1e-9)
	assert.Equal(t, 2, s.HoldingCount)
	assert.Equal(t, map[string]int{"main": 1, "ira": 1}, s.HoldingsByPortfolio)
	// Value-weighted: (1200*100 + 600*200) / 1800
	assert.InDelta(t, 400.0/3, s.WeightedAvgDaysHeld, 1e-9)
}

func TestSummarizePortfolioFilter(t *testing.T) {
	p := NewSummaryProcessor()
	asOf := date(2024, 1, 1)

	holdings := map[string]models.Holding{
		"AAPL": {Symbol: "AAPL", Portfolio: "main", CurrentValue: 1200, TotalCost: 1000},
		"MSFT": {Symbol: "MSFT", Portfolio: "ira", CurrentValue: 600, TotalCost: 500},
	}
	sales := []models.SaleRecord{
		{Symbol: "AAPL", Portfolio: "main", RealizedGain: 250, TotalCost: 500},
		{Symbol: "MSFT", Portfolio: "ira", RealizedGain: 100, TotalCost: 400},
	}

	s := p.Summarize(nil, holdings, sales, "ira", asOf)

	assert.Equal(t, 600.0, s.TotalValue)
	assert.Equal(t, 1, s.HoldingCount)
	assert.Equal(t, 100.0, s.RealizedGain)
	// The per-portfolio count map always covers every holding.
	assert.Equal(t, map[string]int{"main": 1, "ira": 1}, s.HoldingsByPortfolio)
}

func TestSummarizeEmptyFilterMeansTotal(t *testing.T) {
	p := NewSummaryProcessor()
	s := p.Summarize(nil, nil, nil, "", date(2024, 1, 1))
	assert.Equal(t, FilterTotal, s.Portfolio)
}

func TestSummarizePortfolioXIRR(t *testing.T) {
	p := NewSummaryProcessor()
	asOf := date(2024, 1, 1)

	txs := []models.Transaction{buy("AAPL", 100, 10, date(2023, 1, 1))}
	holdings := map[string]models.Holding{
		"AAPL": {Symbol: "AAPL", Portfolio: "main", CurrentValue: 1100, TotalCost: 1000},
	}

	s := p.Summarize(txs, holdings, nil, FilterTotal, asOf)
	assert.InDelta(t, 0.10, s.XIRR, 1e-4)
}

func TestSummarizeCashFlows(t *testing.T) {
	p := NewSummaryProcessor()
	asOf := date(2024, 1, 1)

	flows := []models.CashFlow{
		{Type: models.CashFlowDeposit, Amount: 1000, Date: date(2023, 1, 1)},
	}

	s := p.SummarizeCashFlows(flows, 1100, asOf)

	assert.Equal(t, 1000.0, s.TotalCashIn)
	assert.Equal(t, 1100.0, s.CurrentValue)
	assert.Equal(t, 100.0, s.GainLoss)
	assert.InDelta(t, 10.0, s.GainPercent, 1e-9)
	assert.Equal(t, 365, s.WeightedDays)
	assert.InDelta(t, 0.10, s.XIRR, 1e-4)
}

func TestSummarizeCashFlowsWithWithdrawal(t *testing.T) {
	p := NewSummaryProcessor()
	asOf := date(2024, 1, 1)

	flows := []models.CashFlow{
		{Type: models.CashFlowDeposit, Amount: 1000, Date: date(2023, 1, 1)},
		{Type: models.CashFlowWithdrawal, Amount: 400, Date: date(2023, 7, 1)},
	}

	s := p.SummarizeCashFlows(flows, 700, asOf)

	// Net contributions: 1000 in, 400 back out.
	assert.Equal(t, 600.0, s.TotalCashIn)
	assert.Equal(t, 100.0, s.GainLoss)
	assert.Greater(t, s.XIRR, 0.0)
}

func TestSummarizeCashFlowsZeroValue(t *testing.T) {
	p := NewSummaryProcessor()
	asOf := date(2024, 1, 1)

	flows := []models.CashFlow{
		{Type: models.CashFlowDeposit, Amount: 1000, Date: date(2023, 1, 1)},
	}

	// No terminal value and a single one-sided flow: the rate stays at the
	// undetermined sentinel.
	s := p.SummarizeCashFlows(flows, 0, asOf)
	assert.Equal(t, 0.0, s.XIRR)
	assert.Equal(t, -1000.0, s.GainLoss)
}

func TestSummarizeCashFlowsEmpty(t *testing.T) {
	p := NewSummaryProcessor()
	s := p.SummarizeCashFlows(nil, 500, date(2024, 1, 1))

	assert.Equal(t, 0.0, s.TotalCashIn)
	assert.Equal(t, 500.0, s.GainLoss)
	assert.Equal(t, 0.0, s.XIRR)
	assert.Equal(t, 0.0, s.GainPercent)
	assert.Equal(t, 0, s.WeightedDays)
}
