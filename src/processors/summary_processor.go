package processors

import (
	"math"
	"time"

	"github.com/username/stockfolio/src/models"
)

// FilterTotal selects every sub-portfolio in summary queries.
const FilterTotal = "total"

// SummaryProcessor combines holdings, sale records and cash flows into the
// aggregate figures shown at portfolio level.
type SummaryProcessor struct{}

func NewSummaryProcessor() *SummaryProcessor { return &SummaryProcessor{} }

// Summarize aggregates the derived state for one sub-portfolio, or for the
// whole account when the filter is FilterTotal. The transaction snapshot
// is needed alongside the derived inputs because the portfolio-level XIRR
// is built from every valid transaction's signed cash flow.
func (p *SummaryProcessor) Summarize(
	transactions []models.Transaction,
	holdings map[string]models.Holding,
	sales []models.SaleRecord,
	portfolioFilter string,
	asOf time.Time,
) models.PortfolioSummary {
	if portfolioFilter == "" {
		portfolioFilter = FilterTotal
	}
	all := portfolioFilter == FilterTotal

	summary := models.PortfolioSummary{
		Portfolio:           portfolioFilter,
		HoldingsByPortfolio: make(map[string]int),
	}

	var totalWeightedDays float64
	for _, h := range holdings {
		summary.HoldingsByPortfolio[h.Portfolio]++
		if !all && h.Portfolio != portfolioFilter {
			continue
		}
		summary.TotalValue += h.CurrentValue
		summary.TotalCost += h.TotalCost
		summary.HoldingCount++
		totalWeightedDays += h.CurrentValue * h.WeightedDays
	}

	summary.UnrealizedGain = summary.TotalValue - summary.TotalCost
	if summary.TotalCost != 0 {
		summary.UnrealizedGainPercent = summary.UnrealizedGain / summary.TotalCost * 100
	}
	if summary.TotalValue > 0 {
		summary.WeightedAvgDaysHeld = totalWeightedDays / summary.TotalValue
	}

	var realizedCost float64
	for _, s := range sales {
		if !all && s.Portfolio != portfolioFilter {
			continue
		}
		summary.RealizedGain += s.RealizedGain
		realizedCost += s.TotalCost
	}
	if realizedCost > 0 {
		summary.RealizedGainPercent = summary.RealizedGain / realizedCost * 100
	}

	summary.XIRR = portfolioXIRR(transactions, portfolioFilter, summary.TotalValue, asOf)
	return summary
}

// portfolioXIRR builds the cash-flow series of every valid transaction in
// the filtered scope (buys out, everything else in) and closes it with the
// current holdings value as a terminal inflow when there is one.
func portfolioXIRR(transactions []models.Transaction, portfolioFilter string, totalCurrentValue float64, asOf time.Time) float64 {
	all := portfolioFilter == FilterTotal

	var dates []time.Time
	var values []float64
	for _, t := range transactions {
		if !t.IsValid() {
			continue
		}
		if !all && t.Portfolio != portfolioFilter {
			continue
		}
		dates = append(dates, t.Date)
		values = append(values, t.SignedAmount())
	}
	if totalCurrentValue > 0 {
		dates = append(dates, asOf)
		values = append(values, totalCurrentValue)
	}
	return XIRR(dates, values)
}

// SummarizeCashFlows answers how the money contributed to the account has
// done, from deposits and withdrawals alone, valuing the account at
// currentValue as of asOf.
func (p *SummaryProcessor) SummarizeCashFlows(cashFlows []models.CashFlow, currentValue float64, asOf time.Time) models.CashFlowSummary {
	summary := models.CashFlowSummary{CurrentValue: currentValue}

	var dates []time.Time
	var values []float64
	var totalWeightedDays float64

	for _, cf := range cashFlows {
		amount := cf.Amount
		if cf.Type == models.CashFlowDeposit {
			summary.TotalCashIn += cf.Amount
			totalWeightedDays += cf.Amount * float64(DaysBetween(cf.Date, asOf))
			amount = -cf.Amount
		} else {
			summary.TotalCashIn -= cf.Amount
		}
		dates = append(dates, cf.Date)
		values = append(values, amount)
	}

	if len(cashFlows) > 0 {
		if currentValue > 0 {
			dates = append(dates, asOf)
			values = append(values, currentValue)
		}
		summary.XIRR = XIRR(dates, values)
	}

	summary.GainLoss = currentValue - summary.TotalCashIn
	if summary.TotalCashIn > 0 {
		summary.GainPercent = summary.GainLoss / summary.TotalCashIn * 100
		summary.WeightedDays = int(math.Round(totalWeightedDays / summary.TotalCashIn))
	}
	return summary
}
