package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliolab/folio/internal/models"
)

func axisOf(series *models.PriceSeries) []int64 {
	return series.Timestamps()
}

func TestAggregateSingleLot(t *testing.T) {
	series := dailySeries("AAPL", []float64{100, 110, 120})
	lots := []models.Lot{
		{ID: "a", Symbol: "AAPL", PurchasePrice: 100, Shares: 1, PurchaseTime: dayTS(0)},
	}
	bySymbol := map[string]*models.PriceSeries{"AAPL": series}

	points := Aggregate(lots, bySymbol, axisOf(series), false)
	require.Len(t, points, 3)
	assert.InDelta(t, 0.0, points[0].PctChange, 1e-9)
	assert.InDelta(t, 10.0, points[1].PctChange, 1e-9)
	assert.InDelta(t, 20.0, points[2].PctChange, 1e-9)
}

func TestAggregateStaggeredEntryNoDiscontinuity(t *testing.T) {
	// Lot A holds flat at 0%. Lot B enters mid-axis at its own cost; the
	// aggregate must stay at 0% through the entry tick.
	seriesA := dailySeries("AAPL", []float64{100, 100, 100, 100, 100})
	seriesB := dailySeries("MSFT", []float64{200, 200, 200, 200, 200})
	lots := []models.Lot{
		{ID: "a", Symbol: "AAPL", PurchasePrice: 100, Shares: 5, PurchaseTime: dayTS(0)},
		{ID: "b", Symbol: "MSFT", PurchasePrice: 200, Shares: 2, PurchaseTime: dayTS(2)},
	}
	bySymbol := map[string]*models.PriceSeries{"AAPL": seriesA, "MSFT": seriesB}

	points := Aggregate(lots, bySymbol, axisOf(seriesA), false)
	require.Len(t, points, 5)
	for i, p := range points {
		assert.InDelta(t, 0.0, p.PctChange, 1e-9, "tick %d", i)
	}
	// Value steps up by B's cost basis at its entry, never the pct.
	assert.InDelta(t, 500.0, points[1].Value, 1e-9)
	assert.InDelta(t, 900.0, points[2].Value, 1e-9)
}

func TestAggregatePartialSaleScenario(t *testing.T) {
	// 10 shares at $50, sell 4: basis drops to $300 for the remaining 6.
	series := dailySeries("AAPL", []float64{50, 50, 55, 55})
	lots := []models.Lot{
		{
			ID: "a", Symbol: "AAPL", PurchasePrice: 50, Shares: 10, PurchaseTime: dayTS(0),
			Sales: []models.SaleRecord{
				{ID: "s1", LotID: "a", Symbol: "AAPL", Price: 55, Shares: 4, Timestamp: dayTS(2)},
			},
		},
	}
	bySymbol := map[string]*models.PriceSeries{"AAPL": series}

	points := Aggregate(lots, bySymbol, axisOf(series), false)
	require.Len(t, points, 4)
	assert.InDelta(t, 330.0, points[2].Value, 1e-9)
	assert.InDelta(t, 10.0, points[2].PctChange, 1e-9)
}

func TestAggregateFullExitDoesNotDisturbOthers(t *testing.T) {
	seriesA := dailySeries("AAPL", []float64{100, 100, 100, 100})
	seriesB := dailySeries("MSFT", []float64{10, 20, 20, 20})
	lots := []models.Lot{
		{ID: "a", Symbol: "AAPL", PurchasePrice: 100, Shares: 1, PurchaseTime: dayTS(0)},
		{
			ID: "b", Symbol: "MSFT", PurchasePrice: 10, Shares: 10, PurchaseTime: dayTS(0),
			Sales: []models.SaleRecord{
				{ID: "s1", LotID: "b", Symbol: "MSFT", Price: 20, Shares: 10, Timestamp: dayTS(1)},
			},
		},
	}
	bySymbol := map[string]*models.PriceSeries{"AAPL": seriesA, "MSFT": seriesB}

	points := Aggregate(lots, bySymbol, axisOf(seriesA), false)
	require.Len(t, points, 4)
	// After B exits, only A's flat position remains: 0% on a $100 basis.
	for _, p := range points[1:] {
		assert.InDelta(t, 0.0, p.PctChange, 1e-9)
		assert.InDelta(t, 100.0, p.Value, 1e-9)
	}
}

func TestAggregateAbsoluteEmitsValues(t *testing.T) {
	series := dailySeries("AAPL", []float64{100, 110, 120})
	lots := []models.Lot{
		{ID: "a", Symbol: "AAPL", PurchasePrice: 100, Shares: 2, PurchaseTime: dayTS(0)},
	}
	bySymbol := map[string]*models.PriceSeries{"AAPL": series}

	points := AggregateAbsolute(lots, bySymbol, axisOf(series))
	require.Len(t, points, 3)
	assert.InDelta(t, 200.0, points[0].Value, 1e-9)
	assert.InDelta(t, 220.0, points[1].Value, 1e-9)
	assert.InDelta(t, 240.0, points[2].Value, 1e-9)
}

func TestAggregateEmptyBasisEmitsZero(t *testing.T) {
	series := dailySeries("AAPL", []float64{100, 100, 100})
	lots := []models.Lot{
		{ID: "a", Symbol: "AAPL", PurchasePrice: 100, Shares: 1, PurchaseTime: dayTS(2)},
	}
	bySymbol := map[string]*models.PriceSeries{"AAPL": series}

	points := Aggregate(lots, bySymbol, axisOf(series), false)
	require.Len(t, points, 3)
	assert.InDelta(t, 0.0, points[0].PctChange, 1e-9)
	assert.InDelta(t, 0.0, points[0].Value, 1e-9)
}

func TestSmoothSpikes(t *testing.T) {
	// A one-tick V glitch gets replaced with the neighbor average; the
	// endpoints are never touched.
	points := []models.ReturnPoint{
		{PctChange: 0, Value: 100},
		{PctChange: 40, Value: 140},
		{PctChange: 2, Value: 102},
		{PctChange: 4, Value: 104},
	}
	SmoothSpikes(points)
	assert.InDelta(t, 1.0, points[1].PctChange, 1e-9)
	assert.InDelta(t, 101.0, points[1].Value, 1e-9)
	assert.InDelta(t, 2.0, points[2].PctChange, 1e-9)
}

func TestSmoothSpikesLeavesGenuineMoves(t *testing.T) {
	// A sustained jump only moves in one direction; no point qualifies.
	points := []models.ReturnPoint{
		{PctChange: 0}, {PctChange: 40}, {PctChange: 42}, {PctChange: 41},
	}
	SmoothSpikes(points)
	assert.InDelta(t, 40.0, points[1].PctChange, 1e-9)
}

func TestAggregateSmoothingToggle(t *testing.T) {
	// closes 100, 140, 100, 100 produce a +40/-40 spike at tick 1.
	series := dailySeries("AAPL", []float64{100, 140, 100, 100})
	lots := []models.Lot{
		{ID: "a", Symbol: "AAPL", PurchasePrice: 100, Shares: 1, PurchaseTime: dayTS(0)},
	}
	bySymbol := map[string]*models.PriceSeries{"AAPL": series}

	raw := Aggregate(lots, bySymbol, axisOf(series), false)
	assert.InDelta(t, 40.0, raw[1].PctChange, 1e-9)

	smoothed := Aggregate(lots, bySymbol, axisOf(series), true)
	assert.InDelta(t, 0.0, smoothed[1].PctChange, 1e-9)
}

func TestUnifiedAxisClipsFixedRange(t *testing.T) {
	now := testStart.AddDate(0, 0, 9)
	old := testStart.AddDate(-2, 0, 0)

	points := []models.PricePoint{
		{Timestamp: old.Unix(), Close: 90},
	}
	for i := 0; i < 10; i++ {
		points = append(points, models.PricePoint{Timestamp: dayTS(i), Close: 100})
	}
	series := &models.PriceSeries{Symbol: "AAPL", Points: points}

	axis := UnifiedAxis(map[string]*models.PriceSeries{"AAPL": series}, models.Range1y, now, old.Unix())
	require.Len(t, axis, 10, "two-year-old bar should be clipped from a 1y axis")
	assert.Equal(t, dayTS(0), axis[0])
}

func TestUnifiedAxisMaxStartsAtEarliestPurchase(t *testing.T) {
	series := dailySeries("AAPL", []float64{100, 100, 100, 100, 100})
	now := testStart.AddDate(0, 0, 4)

	axis := UnifiedAxis(map[string]*models.PriceSeries{"AAPL": series}, models.RangeMax, now, dayTS(2))
	require.Len(t, axis, 3)
	assert.Equal(t, dayTS(2), axis[0])
}

func TestUnifiedAxisPicksLongestSeries(t *testing.T) {
	long := dailySeries("AAPL", []float64{1, 1, 1, 1, 1})
	short := dailySeries("MSFT", []float64{2, 2})
	axis := UnifiedAxis(map[string]*models.PriceSeries{"AAPL": long, "MSFT": short}, models.RangeMax, time.Now(), dayTS(0))
	assert.Len(t, axis, 5)
}
