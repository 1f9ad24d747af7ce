package analytics

import (
	"time"

	"github.com/foliolab/folio/internal/models"
)

// spikeThreshold is the percentage-point jump on both sides of a point that
// marks it as a data glitch eligible for smoothing.
const spikeThreshold = 30.0

// UnifiedAxis builds the shared timestamp axis for aggregation: the longest
// fetched series clipped to the display window. Fixed ranges clip to
// now - N years; max starts at the earliest purchase.
func UnifiedAxis(seriesBySymbol map[string]*models.PriceSeries, rng models.Range, now time.Time, earliestPurchase int64) []int64 {
	var reference *models.PriceSeries
	for _, s := range seriesBySymbol {
		if s == nil {
			continue
		}
		if reference == nil || len(s.Points) > len(reference.Points) {
			reference = s
		}
	}
	if reference == nil {
		return nil
	}

	start := rng.StartTimestamp(now, earliestPurchase)
	out := make([]int64, 0, len(reference.Points))
	for _, p := range reference.Points {
		if start > 0 && p.Timestamp < start {
			continue
		}
		out = append(out, p.Timestamp)
	}
	return out
}

// lotValueAt returns one lot's market value and cost basis at ts. At the
// purchase tick both equal the full cost so the lot enters at 0%. lastClose
// carries the most recent close for the lot's symbol, covering provider gaps.
func lotValueAt(lot *models.Lot, ts int64, close float64, haveClose bool, lastClose float64, haveLast bool) (value, base float64) {
	remaining := lot.RemainingShares(ts)
	base = lot.PurchasePrice * remaining

	switch {
	case ts == lot.PurchaseTime:
		value = lot.PurchasePrice * lot.Shares
		base = lot.PurchasePrice * lot.Shares
	case haveClose:
		value = close * remaining
	case haveLast:
		value = lastClose * remaining
	default:
		value = base
	}
	return value, base
}

// Aggregate combines all lots into one percentage-return series over the
// unified axis. Per tick: basis is the cost of shares still held, value is
// their market worth, and the emitted point is (value - basis)/basis x 100.
// A tick where no capital is deployed emits 0%.
func Aggregate(lots []models.Lot, seriesBySymbol map[string]*models.PriceSeries, axis []int64, smoothing bool) []models.ReturnPoint {
	points := aggregate(lots, seriesBySymbol, axis)
	if smoothing {
		SmoothSpikes(points)
	}
	return points
}

// AggregateAbsolute combines all lots into an absolute dollar-value series
// over the unified axis, using the same remaining-shares replay and
// purchase-tick conventions as Aggregate. PctChange is still populated so
// consumers can switch display modes without a refetch.
func AggregateAbsolute(lots []models.Lot, seriesBySymbol map[string]*models.PriceSeries, axis []int64) []models.ReturnPoint {
	return aggregate(lots, seriesBySymbol, axis)
}

func aggregate(lots []models.Lot, seriesBySymbol map[string]*models.PriceSeries, axis []int64) []models.ReturnPoint {
	if len(axis) == 0 {
		return nil
	}

	lastClose := make(map[string]float64, len(seriesBySymbol))
	out := make([]models.ReturnPoint, 0, len(axis))

	for _, ts := range axis {
		// Refresh the per-symbol carry-forward closes first so every lot on
		// the same symbol sees the same price.
		for symbol, series := range seriesBySymbol {
			if series == nil {
				continue
			}
			if close, ok := series.CloseAt(ts); ok {
				lastClose[symbol] = close
			}
		}

		var totalValue, totalBase float64
		for i := range lots {
			lot := &lots[i]
			if lot.PurchaseTime > ts {
				continue
			}
			var close float64
			var haveClose bool
			if series := seriesBySymbol[lot.Symbol]; series != nil {
				close, haveClose = series.CloseAt(ts)
			}
			last, haveLast := lastClose[lot.Symbol]
			value, base := lotValueAt(lot, ts, close, haveClose, last, haveLast)
			totalValue += value
			totalBase += base
		}

		pct := 0.0
		if totalBase > 0 {
			pct = (totalValue - totalBase) / totalBase * 100
		}
		out = append(out, models.ReturnPoint{
			Timestamp: ts,
			PctChange: pct,
			Value:     totalValue,
		})
	}

	return out
}

// SmoothSpikes replaces isolated one-tick glitches in place: an interior
// point that jumps more than the threshold against both neighbors, in
// opposite directions, is replaced with the neighbor average. This is a
// display heuristic for bad provider ticks; genuine V-shaped moves wider
// than one tick are untouched.
func SmoothSpikes(points []models.ReturnPoint) {
	for i := 1; i < len(points)-1; i++ {
		deltaPrev := points[i].PctChange - points[i-1].PctChange
		deltaNext := points[i+1].PctChange - points[i].PctChange
		if deltaPrev > spikeThreshold && deltaNext < -spikeThreshold ||
			deltaPrev < -spikeThreshold && deltaNext > spikeThreshold {
			points[i].PctChange = (points[i-1].PctChange + points[i+1].PctChange) / 2
			points[i].Value = (points[i-1].Value + points[i+1].Value) / 2
		}
	}
}
