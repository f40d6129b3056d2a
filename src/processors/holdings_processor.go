package processors

import (
	"time"

	"github.com/username/stockfolio/src/models"
)

// Positions with fewer net shares than this are treated as fully closed;
// the margin absorbs floating-point residue from buy/sell subtraction.
const sharesEpsilon = 0.001

// HoldingsProcessor folds a transaction snapshot into per-symbol holdings
// with premium-adjusted cost basis.
type HoldingsProcessor struct{}

func NewHoldingsProcessor() *HoldingsProcessor { return &HoldingsProcessor{} }

// symbolTotals is the per-symbol accumulator for the first pass.
type symbolTotals struct {
	buys      float64 // buy + dividend shares
	sells     float64
	totalCost float64 // buy shares x price
	portfolio string
	firstDate time.Time
	lastDate  time.Time
}

// Process aggregates all valid transactions into holdings keyed by symbol.
// Symbols whose net shares fall at or below the closed-position epsilon are
// omitted; their story is told by the sale records instead.
//
// Premium income attribution here deliberately ignores transaction dates
// (every covered-call and assigned-put premium reduces cost basis, whenever
// it occurred), unlike the sale matcher which date-bounds premiums. Keep
// the two in their current, asymmetric form.
func (p *HoldingsProcessor) Process(transactions []models.Transaction, livePrices map[string]float64, asOf time.Time) map[string]models.Holding {
	totals := make(map[string]*symbolTotals)
	coveredCallPremiums := make(map[string]float64)
	cspAssignedPremiums := make(map[string]float64)

	for _, t := range transactions {
		if !t.IsValid() {
			continue
		}
		st, ok := totals[t.Symbol]
		if !ok {
			st = &symbolTotals{firstDate: t.Date, lastDate: t.Date, portfolio: t.Portfolio}
			totals[t.Symbol] = st
		}

		switch t.Type {
		case models.TransactionBuy:
			st.buys += t.Shares
			st.totalCost += t.Shares * t.Price
			st.portfolio = t.Portfolio
		case models.TransactionDividend:
			st.buys += t.Shares
			st.portfolio = t.Portfolio
		case models.TransactionSell:
			st.sells += t.Shares
		case models.TransactionPremium:
			st.portfolio = t.Portfolio
			switch t.PremiumType {
			case models.PremiumCoveredCall:
				coveredCallPremiums[t.Symbol] += t.Shares * t.Price
			case models.PremiumCSPAssigned:
				cspAssignedPremiums[t.Symbol] += t.Shares * t.Price
			}
		}

		if t.Date.Before(st.firstDate) {
			st.firstDate = t.Date
		}
		if t.Date.After(st.lastDate) {
			st.lastDate = t.Date
		}
	}

	holdings := make(map[string]models.Holding)
	for symbol, st := range totals {
		netShares := st.buys - st.sells
		if netShares <= sharesEpsilon {
			continue
		}

		adjustedCost := st.totalCost - coveredCallPremiums[symbol] - cspAssignedPremiums[symbol]
		avgCost := 0.0
		if st.buys > 0 {
			avgCost = adjustedCost / st.buys
		}
		currentPrice := livePrices[symbol]
		currentValue := netShares * currentPrice
		totalCost := netShares * avgCost
		gainLoss := currentValue - totalCost
		gainLossPercent := 0.0
		if totalCost != 0 {
			gainLossPercent = gainLoss / totalCost * 100
		}

		holdings[symbol] = models.Holding{
			Symbol:          symbol,
			Portfolio:       st.portfolio,
			NetShares:       netShares,
			AvgCost:         avgCost,
			CurrentPrice:    currentPrice,
			TotalCost:       totalCost,
			CurrentValue:    currentValue,
			GainLoss:        gainLoss,
			GainLossPercent: gainLossPercent,
			XIRR:            symbolXIRR(symbol, transactions, livePrices, asOf),
			WeightedDays:    weightedDaysHeld(symbol, transactions, asOf),
			FirstDate:       st.firstDate,
			LastDate:        st.lastDate,
		}
	}
	return holdings
}

// symbolXIRR computes the money-weighted return of a single symbol's
// transactions, valuing any remaining shares at the live price as a
// terminal inflow dated asOf.
func symbolXIRR(symbol string, transactions []models.Transaction, livePrices map[string]float64, asOf time.Time) float64 {
	var dates []time.Time
	var values []float64
	var remainingShares float64

	for _, t := range transactions {
		if t.Symbol != symbol || !t.IsValid() {
			continue
		}
		dates = append(dates, t.Date)
		values = append(values, t.SignedAmount())
		switch t.Type {
		case models.TransactionBuy:
			remainingShares += t.Shares
		case models.TransactionSell:
			remainingShares -= t.Shares
		}
	}

	if currentPrice := livePrices[symbol]; remainingShares > 0 && currentPrice > 0 {
		dates = append(dates, asOf)
		values = append(values, remainingShares*currentPrice)
	}
	return XIRR(dates, values)
}

// weightedDaysHeld is the share-weighted average age of a symbol's buy and
// dividend transactions, in days as of asOf.
func weightedDaysHeld(symbol string, transactions []models.Transaction, asOf time.Time) float64 {
	var totalShares, weighted float64
	for _, t := range transactions {
		if t.Symbol != symbol || !t.IsValid() {
			continue
		}
		if t.Type != models.TransactionBuy && t.Type != models.TransactionDividend {
			continue
		}
		totalShares += t.Shares
		weighted += t.Shares * float64(DaysBetween(t.Date, asOf))
	}
	if totalShares <= 0 {
		return 0
	}
	return weighted / totalShares
}
