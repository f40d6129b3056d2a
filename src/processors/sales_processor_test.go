package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/stockfolio/src/models"
)

func TestProcessPartialSale(t *testing.T) {
	p := NewSalesProcessor()

	txs := []models.Transaction{
		buy("AAPL", 10, 100, date(2023, 1, 1)),
		sell("AAPL", 5, 150, date(2023, 6, 1)),
	}
	records := p.Process(txs, nil)

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "AAPL", r.Symbol)
	assert.Equal(t, 5.0, r.SharesSold)
	assert.Equal(t, 100.0, r.AvgBuyPrice)
	assert.Equal(t, 150.0, r.AvgSellPrice)
	assert.Equal(t, 500.0, r.TotalCost)
	assert.Equal(t, 750.0, r.TotalProceeds)
	assert.Equal(t, 250.0, r.RealizedGain)
	assert.Equal(t, "50.00", r.GainPercent)
	assert.Equal(t, date(2023, 1, 1), r.FirstBuy)
	assert.Equal(t, date(2023, 6, 1), r.LastSell)
	assert.Equal(t, 151, r.DaysHeld)
	assert.Greater(t, r.XIRR, 0.0)
}

func TestProcessLaterBuyDoesNotAffectEarlierSale(t *testing.T) {
	p := NewSalesProcessor()

	txs := []models.Transaction{
		buy("AAPL", 10, 100, date(2023, 1, 1)),
		sell("AAPL", 5, 150, date(2023, 6, 1)),
		buy("AAPL", 10, 500, date(2023, 7, 1)),
	}
	records := p.Process(txs, nil)

	require.Len(t, records, 1)
	assert.Equal(t, 100.0, records[0].AvgBuyPrice)
}

func TestProcessSaleWithNoPriorBuys(t *testing.T) {
	p := NewSalesProcessor()

	records := p.Process([]models.Transaction{sell("AAPL", 5, 150, date(2023, 6, 1))}, nil)

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, 0.0, r.AvgBuyPrice)
	assert.Equal(t, 0.0, r.TotalCost)
	assert.Equal(t, 750.0, r.RealizedGain)
	assert.Equal(t, "0.00", r.GainPercent)
	assert.Equal(t, date(2023, 6, 1), r.FirstBuy)
	assert.Equal(t, 0, r.DaysHeld)
	assert.Equal(t, 0.0, r.XIRR)
}

func TestProcessCoveredCallPremiumDateBounded(t *testing.T) {
	p := NewSalesProcessor()

	txs := []models.Transaction{
		buy("AAPL", 10, 100, date(2023, 1, 1)),
		premium("AAPL", models.PremiumCoveredCall, 1, 50, date(2023, 3, 1)),
		sell("AAPL", 5, 150, date(2023, 6, 1)),
		// After the sale, must not count toward its proceeds.
		premium("AAPL", models.PremiumCoveredCall, 1, 80, date(2023, 7, 1)),
	}
	records := p.Process(txs, nil)

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, 800.0, r.TotalProceeds)
	assert.Equal(t, 300.0, r.RealizedGain)
	assert.Equal(t, "60.00", r.GainPercent)
}

func TestProcessExpiredShortPut(t *testing.T) {
	p := NewSalesProcessor()

	txs := []models.Transaction{
		premium("AAPL", models.PremiumCSPExpired, 1, 500, date(2023, 6, 1)),
	}
	records := p.Process(txs, nil)

	require.Len(t, records, 1)
	r := records[0]
	assert.True(t, r.IsPremium)
	assert.Equal(t, "CSP Expired", r.PremiumLabel)
	assert.Equal(t, 500.0, r.RealizedGain)
	assert.Equal(t, "100.00", r.GainPercent)
	assert.Equal(t, 0.0, r.TotalCost)
	assert.Equal(t, 0, r.DaysHeld)
}

func TestProcessExpiredShortPutNegativePremium(t *testing.T) {
	p := NewSalesProcessor()

	txs := []models.Transaction{
		premium("AAPL", models.PremiumCSPExpired, 1, -500, date(2023, 6, 1)),
	}
	records := p.Process(txs, nil)

	require.Len(t, records, 1)
	assert.Equal(t, -500.0, records[0].RealizedGain)
	assert.Equal(t, "-100.00", records[0].GainPercent)
}

func TestProcessSameDaySalesCollapse(t *testing.T) {
	p := NewSalesProcessor()

	// Two sells of one symbol on the same calendar day share a record key;
	// the later one in the list wins.
	txs := []models.Transaction{
		buy("AAPL", 10, 100, date(2023, 1, 1)),
		sell("AAPL", 5, 150, date(2023, 6, 1)),
		sell("AAPL", 3, 160, date(2023, 6, 1)),
	}
	records := p.Process(txs, nil)

	require.Len(t, records, 1)
	assert.Equal(t, 3.0, records[0].SharesSold)
	assert.Equal(t, 160.0, records[0].AvgSellPrice)
}

func TestProcessUnrealizedGainAgainstLivePrice(t *testing.T) {
	p := NewSalesProcessor()

	txs := []models.Transaction{
		buy("AAPL", 10, 100, date(2023, 1, 1)),
		sell("AAPL", 5, 150, date(2023, 6, 1)),
	}

	// (200 - 100) * 5 - 250 = 250 left on the table by selling.
	records := p.Process(txs, map[string]float64{"AAPL": 200})
	require.Len(t, records, 1)
	assert.Equal(t, 250.0, records[0].UnrealizedGain)

	// No live price: the comparison is skipped.
	records = p.Process(txs, nil)
	require.Len(t, records, 1)
	assert.Equal(t, 0.0, records[0].UnrealizedGain)
}

func TestProcessRecordsSortedByKey(t *testing.T) {
	p := NewSalesProcessor()

	txs := []models.Transaction{
		buy("MSFT", 10, 100, date(2023, 1, 1)),
		buy("AAPL", 10, 100, date(2023, 1, 1)),
		sell("MSFT", 5, 150, date(2023, 6, 1)),
		sell("AAPL", 5, 150, date(2023, 6, 1)),
	}
	records := p.Process(txs, nil)

	require.Len(t, records, 2)
	assert.Equal(t, "AAPL", records[0].Symbol)
	assert.Equal(t, "MSFT", records[1].Symbol)
}
