package models

import "time"

// Holding is the derived per-symbol position. It is recomputed from
// scratch on every pass and never persisted.
type Holding struct {
	Symbol          string    `json:"symbol"`
	Portfolio       string    `json:"portfolio"`
	NetShares       float64   `json:"net_shares"`
	AvgCost         float64   `json:"avg_cost"`
	CurrentPrice    float64   `json:"current_price"`
	TotalCost       float64   `json:"total_cost"` // net shares at average cost
	CurrentValue    float64   `json:"current_value"`
	GainLoss        float64   `json:"gain_loss"`
	GainLossPercent float64   `json:"gain_loss_percent"`
	XIRR            float64   `json:"xirr"`
	WeightedDays    float64   `json:"weighted_days"`
	FirstDate       time.Time `json:"first_date"`
	LastDate        time.Time `json:"last_date"`
}

// SaleRecord captures one realized disposal: a sell transaction matched
// against the weighted-average cost of prior buys, or an expired short put
// whose premium is pure gain.
type SaleRecord struct {
	Symbol         string    `json:"symbol"`
	Portfolio      string    `json:"portfolio"`
	SharesSold     float64   `json:"shares_sold"`
	AvgBuyPrice    float64   `json:"avg_buy_price"`
	AvgSellPrice   float64   `json:"avg_sell_price"`
	TotalCost      float64   `json:"total_cost"`
	TotalProceeds  float64   `json:"total_proceeds"`
	RealizedGain   float64   `json:"realized_gain"`
	GainPercent    string    `json:"gain_percent"` // "0.00" when cost basis is zero
	FirstBuy       time.Time `json:"first_buy"`
	LastSell       time.Time `json:"last_sell"`
	DaysHeld       int       `json:"days_held"`
	XIRR           float64   `json:"xirr"`
	UnrealizedGain float64   `json:"unrealized_gain"`
	IsPremium      bool      `json:"is_premium,omitempty"`
	PremiumLabel   string    `json:"premium_label,omitempty"`
}

// PortfolioSummary aggregates holdings and sale records for one
// sub-portfolio, or for everything when the filter is "total".
type PortfolioSummary struct {
	Portfolio             string         `json:"portfolio"`
	TotalValue            float64        `json:"total_value"`
	TotalCost             float64        `json:"total_cost"`
	UnrealizedGain        float64        `json:"unrealized_gain"`
	UnrealizedGainPercent float64        `json:"unrealized_gain_percent"`
	RealizedGain          float64        `json:"realized_gain"`
	RealizedGainPercent   float64        `json:"realized_gain_percent"`
	HoldingCount          int            `json:"holding_count"`
	HoldingsByPortfolio   map[string]int `json:"holdings_by_portfolio"`
	XIRR                  float64        `json:"xirr"`
	WeightedAvgDaysHeld   float64        `json:"weighted_avg_days_held"`
}

// CashFlowSummary is the deposit/withdrawal view of return: how the money
// contributed to the account has performed, independent of per-position
// figures.
type CashFlowSummary struct {
	TotalCashIn  float64 `json:"total_cash_in"`
	CurrentValue float64 `json:"current_value"`
	GainLoss     float64 `json:"gain_loss"`
	GainPercent  float64 `json:"gain_percent"`
	XIRR         float64 `json:"xirr"`
	WeightedDays int     `json:"weighted_days"`
}
