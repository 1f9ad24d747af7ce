package models

import (
	"sort"
	"time"
)

// SaleRecord is a partial or full disposal of a lot. Records are append-only:
// the sale history store retains them even after the lot itself is deleted so
// historical charts stay continuous.
type SaleRecord struct {
	ID            string  `json:"id"`
	LotID         string  `json:"lot_id"`
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Shares        float64 `json:"shares"`
	Timestamp     int64   `json:"timestamp"` // epoch seconds
	Value         float64 `json:"value"`     // price x shares at sale time
	PurchasePrice float64 `json:"purchase_price"`
	PurchaseTime  int64   `json:"purchase_time"`
}

// Lot is a single purchase of one instrument. A portfolio may hold several
// lots for the same symbol with different purchase dates and prices; they
// are never merged. Shares is the original purchased quantity; the remaining
// position at any time is derived from Sales.
type Lot struct {
	ID            string       `json:"id"`
	Symbol        string       `json:"symbol"`
	PurchasePrice float64      `json:"purchase_price"`
	Shares        float64      `json:"shares"` // original share count
	PurchaseTime  int64        `json:"purchase_time"`
	Sales         []SaleRecord `json:"sales,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// RemainingShares returns the share count still held at ts: original shares
// minus all sales with saleTimestamp <= ts, floored at zero. Non-increasing
// in ts.
func (l *Lot) RemainingShares(ts int64) float64 {
	remaining := l.Shares
	for _, s := range l.Sales {
		if s.Timestamp <= ts {
			remaining -= s.Shares
		}
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CurrentShares returns the share count held now (all sales applied).
func (l *Lot) CurrentShares() float64 {
	total := l.Shares
	for _, s := range l.Sales {
		total -= s.Shares
	}
	if total < 0 {
		return 0
	}
	return total
}

// SoldShares returns the total share count disposed across all sales.
func (l *Lot) SoldShares() float64 {
	var total float64
	for _, s := range l.Sales {
		total += s.Shares
	}
	return total
}

// IsClosed reports whether the lot has been fully sold.
func (l *Lot) IsClosed() bool {
	return l.CurrentShares() <= 0
}

// Investment returns the cost basis of the currently-held shares
// (purchase price x remaining shares).
func (l *Lot) Investment() float64 {
	return l.PurchasePrice * l.CurrentShares()
}

// EarliestPurchase returns the earliest purchase timestamp across lots, or 0
// when the slice is empty.
func EarliestPurchase(lots []Lot) int64 {
	var earliest int64
	for _, l := range lots {
		if earliest == 0 || l.PurchaseTime < earliest {
			earliest = l.PurchaseTime
		}
	}
	return earliest
}

// Symbols returns the distinct instrument symbols across lots, sorted.
func Symbols(lots []Lot) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lots {
		if !seen[l.Symbol] {
			seen[l.Symbol] = true
			out = append(out, l.Symbol)
		}
	}
	sort.Strings(out)
	return out
}

// LotSummary is a lot enriched with its portfolio weight and live pricing.
type LotSummary struct {
	Lot
	CurrentSharesHeld float64 `json:"current_shares"`
	InvestmentValue   float64 `json:"investment_value"`
	WeightPct         float64 `json:"weight_pct"`
}

// PortfolioSummary is the lot list plus portfolio-level totals. Weights are
// computed over open lots only; closed lots carry zero weight but remain in
// the list for chart history.
type PortfolioSummary struct {
	Lots            []LotSummary `json:"lots"`
	TotalInvestment float64      `json:"total_investment"`
	OpenLots        int          `json:"open_lots"`
	ClosedLots      int          `json:"closed_lots"`
	GeneratedAt     time.Time    `json:"generated_at"`
}
