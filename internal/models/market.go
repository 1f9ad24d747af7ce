// Package models defines data structures for Folio
package models

import (
	"time"
)

// Interval is the bar spacing of a price series.
type Interval string

const (
	IntervalDaily  Interval = "1d"
	IntervalWeekly Interval = "1wk"
)

// Range identifies a chart lookback window. The values match the chart-API
// range parameter.
type Range string

const (
	Range1d  Range = "1d"
	Range5d  Range = "5d"
	Range1mo Range = "1mo"
	Range3mo Range = "3mo"
	Range1y  Range = "1y"
	Range2y  Range = "2y"
	Range5y  Range = "5y"
	Range10y Range = "10y"
	RangeMax Range = "max"
)

// ParseRange validates a range string, defaulting to 1y for unknown values.
func ParseRange(s string) Range {
	switch Range(s) {
	case Range1d, Range5d, Range1mo, Range3mo, Range1y, Range2y, Range5y, Range10y, RangeMax:
		return Range(s)
	default:
		return Range1y
	}
}

// Interval returns the bar spacing used for this range. Long lookbacks use
// weekly bars for resolution; everything else is daily.
func (r Range) Interval() Interval {
	switch r {
	case Range10y, RangeMax:
		return IntervalWeekly
	default:
		return IntervalDaily
	}
}

// Years returns the fixed lookback length in years, or 0 for ranges that are
// not fixed lookback windows (max and the intraday/short ranges).
func (r Range) Years() float64 {
	switch r {
	case Range1y:
		return 1
	case Range2y:
		return 2
	case Range5y:
		return 5
	case Range10y:
		return 10
	default:
		return 0
	}
}

// StartTimestamp returns the first unified-axis timestamp for this range:
// now - N years for fixed windows, the earliest purchase for max, and zero
// (no clipping) otherwise. earliestPurchase may be zero when the portfolio
// is empty.
func (r Range) StartTimestamp(now time.Time, earliestPurchase int64) int64 {
	if years := r.Years(); years > 0 {
		return now.Unix() - int64(years*365.25*24*3600)
	}
	if r == RangeMax && earliestPurchase > 0 {
		return earliestPurchase
	}
	return earliestPurchase
}

// WidenForEarliest returns the API range wide enough to cover the earliest
// purchase date. Used when a fixed display window still needs full history
// behind it (absolute-mode recomputation).
func WidenForEarliest(now time.Time, earliestPurchase int64) Range {
	if earliestPurchase <= 0 {
		return Range1y
	}
	years := now.Sub(time.Unix(earliestPurchase, 0)).Hours() / (24 * 365.25)
	switch {
	case years > 10:
		return RangeMax
	case years > 5:
		return Range10y
	case years > 2:
		return Range5y
	case years > 1:
		return Range2y
	default:
		return Range1y
	}
}

// PricePoint is a single close observation on the unified timeline.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"` // epoch seconds
	Close     float64 `json:"close"`
}

// PriceSeries is an ascending-by-timestamp sequence of close prices for one
// instrument. Immutable once fetched.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// CloseAt returns the close at the exact timestamp, or false when the series
// has no bar there (gap, holiday).
func (s *PriceSeries) CloseAt(ts int64) (float64, bool) {
	// Series are small (<= a few thousand points); binary search over the
	// sorted timestamps.
	lo, hi := 0, len(s.Points)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case s.Points[mid].Timestamp == ts:
			return s.Points[mid].Close, true
		case s.Points[mid].Timestamp < ts:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return 0, false
}

// Timestamps returns the raw timestamp axis of the series.
func (s *PriceSeries) Timestamps() []int64 {
	out := make([]int64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Timestamp
	}
	return out
}

// Closes returns the close values in series order.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Quote is a normalized real-time quote.
type Quote struct {
	Symbol             string    `json:"symbol"`
	RegularMarketPrice float64   `json:"regular_market_price"`
	FetchedAt          time.Time `json:"fetched_at"`
}
