// Package analytics computes portfolio performance series, risk metrics, and
// trade-event annotations from stored lots and fetched price history. All
// computation here is pure: inputs in, values out, no stored state.
package analytics

import (
	"github.com/foliolab/folio/internal/models"
)

// RemainingShares returns the share count of lot still held at ts: the
// original purchased quantity minus all sales dated at or before ts, floored
// at zero. Non-increasing in ts.
func RemainingShares(lot *models.Lot, ts int64) float64 {
	return lot.RemainingShares(ts)
}

// BuildLotSeries computes the per-lot return series over the price series
// timeline. Points before the lot's purchase are excluded. At the purchase
// tick the value is pinned to cost basis (purchase price x original shares)
// so every lot enters at exactly 0%. After the lot is fully sold its value
// and basis are both zero; it stops moving the portfolio.
func BuildLotSeries(series *models.PriceSeries, lot *models.Lot) []models.ReturnPoint {
	if series == nil || len(series.Points) == 0 {
		return nil
	}

	out := make([]models.ReturnPoint, 0, len(series.Points))
	var lastValue float64
	var havePrev bool

	for _, p := range series.Points {
		if p.Timestamp < lot.PurchaseTime {
			continue
		}

		remaining := lot.RemainingShares(p.Timestamp)
		base := lot.PurchasePrice * remaining

		var value float64
		switch {
		case p.Timestamp == lot.PurchaseTime:
			// Entry tick: valued at cost so the series starts at 0%.
			value = lot.PurchasePrice * lot.Shares
			base = lot.PurchasePrice * lot.Shares
		case p.Close > 0:
			value = p.Close * remaining
		case havePrev:
			// Gap in the provider data: carry the last computed value.
			value = lastValue
		default:
			value = base
		}

		pct := 0.0
		if base > 0 {
			pct = (value - base) / base * 100
		}

		out = append(out, models.ReturnPoint{
			Timestamp: p.Timestamp,
			PctChange: pct,
			Value:     value,
		})
		lastValue = value
		havePrev = true
	}

	return out
}
