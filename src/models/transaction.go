package models

import "time"

// TransactionType enumerates the closed set of economic events the engine
// understands. Adding a new kind means touching every switch over this type.
type TransactionType string

const (
	TransactionBuy      TransactionType = "buy"
	TransactionSell     TransactionType = "sell"
	TransactionDividend TransactionType = "dividend"
	TransactionPremium  TransactionType = "premium"
)

// PremiumType qualifies option-premium transactions. Only the three kinds
// below participate in cost-basis and realized-gain math.
type PremiumType string

const (
	PremiumCoveredCall PremiumType = "covered_call"
	PremiumCSPAssigned PremiumType = "csp_assigned"
	PremiumCSPExpired  PremiumType = "csp_expired"
)

// Transaction is one recorded economic event. For premium transactions the
// Price field holds the total premium amount, not a per-share price.
type Transaction struct {
	ID          string          `json:"id,omitempty"`
	Type        TransactionType `json:"type"`
	PremiumType PremiumType     `json:"premium_type,omitempty"`
	Portfolio   string          `json:"portfolio"`
	Symbol      string          `json:"symbol"`
	Shares      float64         `json:"shares"`
	Price       float64         `json:"price"`
	Date        time.Time       `json:"date"`
}

// IsValid reports whether the transaction participates in any calculation.
// Dividends may carry a zero price and premiums any price (a negative
// premium is a cost); buys and sells need a positive one. Unknown types are
// rejected.
func (t Transaction) IsValid() bool {
	if t.Symbol == "" || t.Shares == 0 || t.Date.IsZero() {
		return false
	}
	switch t.Type {
	case TransactionBuy, TransactionSell:
		return t.Price > 0
	case TransactionDividend:
		return t.Price >= 0
	case TransactionPremium:
		return true
	default:
		return false
	}
}

// SignedAmount is the transaction's contribution to a cash-flow series:
// money out (buys) is negative, money in (sells, dividends, premiums)
// positive.
func (t Transaction) SignedAmount() float64 {
	if t.Type == TransactionBuy {
		return -t.Shares * t.Price
	}
	return t.Shares * t.Price
}

// CashFlowType distinguishes money moved into the account from money
// taken out of it.
type CashFlowType string

const (
	CashFlowDeposit    CashFlowType = "deposit"
	CashFlowWithdrawal CashFlowType = "withdrawal"
)

// CashFlow is a deposit into or withdrawal from the account. It is
// independent of any instrument and only feeds the money-weighted-return
// view.
type CashFlow struct {
	ID     string       `json:"id,omitempty"`
	Type   CashFlowType `json:"type"`
	Amount float64      `json:"amount"`
	Date   time.Time    `json:"date"`
}
