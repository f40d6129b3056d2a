package processors

import (
	"fmt"
	"sort"
	"time"

	"github.com/username/stockfolio/src/models"
)

// SalesProcessor derives realized-gain records: one per sell transaction,
// matched by weighted-average cost of prior buys, plus one per expired
// short put whose premium is pure gain.
type SalesProcessor struct{}

func NewSalesProcessor() *SalesProcessor { return &SalesProcessor{} }

// Process builds sale records from a transaction snapshot. Records are
// keyed by symbol and sale date, so two sales of the same symbol on the
// same calendar day collapse into one record and the later transaction in
// the list wins. Known limitation, kept intact.
func (p *SalesProcessor) Process(transactions []models.Transaction, livePrices map[string]float64) []models.SaleRecord {
	records := make(map[string]models.SaleRecord)

	for _, t := range transactions {
		if !t.IsValid() || t.Type != models.TransactionSell {
			continue
		}

		var totalBought, totalCost float64
		for _, tx := range transactions {
			if tx.Symbol != t.Symbol || !tx.IsValid() || tx.Date.After(t.Date) {
				continue
			}
			if tx.Type == models.TransactionBuy {
				totalBought += tx.Shares
				totalCost += tx.Shares * tx.Price
			}
		}

		// Zero prior buys is legitimate (short positions, messy data):
		// the whole proceeds become realized gain against a zero basis.
		avgCostBasis := 0.0
		if totalBought > 0 {
			avgCostBasis = totalCost / totalBought
		}
		costBasisForSale := t.Shares * avgCostBasis
		proceeds := t.Shares * t.Price

		var coveredCallPremiums float64
		for _, tx := range transactions {
			if tx.Symbol != t.Symbol || !tx.IsValid() || tx.Date.After(t.Date) {
				continue
			}
			if tx.Type == models.TransactionPremium && tx.PremiumType == models.PremiumCoveredCall {
				coveredCallPremiums += tx.Shares * tx.Price
			}
		}

		totalProceeds := proceeds + coveredCallPremiums
		realizedGain := totalProceeds - costBasisForSale
		gainPercent := "0.00"
		if costBasisForSale > 0 {
			gainPercent = fmt.Sprintf("%.2f", realizedGain/costBasisForSale*100)
		}

		firstBuy := t.Date
		for _, tx := range transactions {
			if tx.Symbol == t.Symbol && tx.Type == models.TransactionBuy && tx.IsValid() {
				firstBuy = tx.Date
				break
			}
		}

		rec := models.SaleRecord{
			Symbol:        t.Symbol,
			Portfolio:     t.Portfolio,
			SharesSold:    t.Shares,
			AvgBuyPrice:   avgCostBasis,
			AvgSellPrice:  t.Price,
			TotalCost:     costBasisForSale,
			TotalProceeds: totalProceeds,
			RealizedGain:  realizedGain,
			GainPercent:   gainPercent,
			FirstBuy:      firstBuy,
			LastSell:      t.Date,
		}
		enrichSaleRecord(&rec, livePrices)
		records[saleKey(t.Symbol, "sale", t.Date)] = rec
	}

	for _, t := range transactions {
		if !t.IsValid() || t.Type != models.TransactionPremium || t.PremiumType != models.PremiumCSPExpired {
			continue
		}
		premium := t.Shares * t.Price
		gainPercent := "0.00"
		if t.Price > 0 {
			gainPercent = "100.00"
		} else if t.Price < 0 {
			gainPercent = "-100.00"
		}
		rec := models.SaleRecord{
			Symbol:        t.Symbol,
			Portfolio:     t.Portfolio,
			SharesSold:    t.Shares,
			AvgBuyPrice:   0,
			AvgSellPrice:  t.Price,
			TotalCost:     0,
			TotalProceeds: premium,
			RealizedGain:  premium,
			GainPercent:   gainPercent,
			FirstBuy:      t.Date,
			LastSell:      t.Date,
			IsPremium:     true,
			PremiumLabel:  "CSP Expired",
		}
		enrichSaleRecord(&rec, livePrices)
		records[saleKey(t.Symbol, "premium", t.Date)] = rec
	}

	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]models.SaleRecord, 0, len(records))
	for _, k := range keys {
		out = append(out, records[k])
	}
	return out
}

func saleKey(symbol, kind string, date time.Time) string {
	return symbol + "_" + kind + "_" + dayKey(date)
}

// enrichSaleRecord fills in the holding-period figures and the
// what-if-held comparison against the live price.
func enrichSaleRecord(rec *models.SaleRecord, livePrices map[string]float64) {
	rec.DaysHeld = DaysBetween(rec.FirstBuy, rec.LastSell)
	rec.XIRR = XIRR(
		[]time.Time{rec.FirstBuy, rec.LastSell},
		[]float64{-rec.TotalCost, rec.TotalProceeds},
	)
	if currentPrice := livePrices[rec.Symbol]; currentPrice > 0 {
		rec.UnrealizedGain = (currentPrice-rec.AvgBuyPrice)*rec.SharesSold - rec.RealizedGain
	}
}
