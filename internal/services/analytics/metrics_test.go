package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliolab/folio/internal/models"
)

func seriesFromValues(values []float64) []models.ReturnPoint {
	out := make([]models.ReturnPoint, len(values))
	for i, v := range values {
		out[i] = models.ReturnPoint{Timestamp: dayTS(i), Value: v}
	}
	return out
}

func TestComputePortfolioMetricsInsufficientData(t *testing.T) {
	m := ComputePortfolioMetrics(PortfolioMetricsInput{
		Series:          seriesFromValues([]float64{1000, 1100}),
		TotalInvestment: 1000,
		Positions:       1,
	})
	assert.True(t, m.InsufficientData)
	assert.InDelta(t, 1100.0, m.CurrentValue, 1e-9)
	assert.InDelta(t, 10.0, m.TotalReturnPct, 1e-9, "headline return survives the sentinel")
	assert.Equal(t, 1, m.Positions)
}

func TestComputePortfolioMetricsRisingSeries(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 1000 + float64(i)*5
	}
	m := ComputePortfolioMetrics(PortfolioMetricsInput{
		Series:          seriesFromValues(values),
		TotalInvestment: 1000,
		Positions:       2,
	})
	require.False(t, m.InsufficientData)

	assert.InDelta(t, 100.0, m.WinRatePct, 1e-9, "every day is up")
	assert.Zero(t, m.MaxDrawdownPct)
	assert.Greater(t, m.SharpeRatio, 0.0)
	assert.Zero(t, m.SortinoRatio, "no down days means no downside deviation")
	assert.InDelta(t, 29.5, m.TotalReturnPct, 1e-9)
	assert.Equal(t, 59, m.DataPoints)
}

func TestComputePortfolioMetricsDrawdown(t *testing.T) {
	// Run up to 1200, fall to 900, recover partway: worst drawdown 25%.
	values := syntheticCloses(40)
	values = append(values, []float64{1200, 1000, 900, 1100}...)
	for len(values) < 80 {
		values = append(values, 1100)
	}
	m := ComputePortfolioMetrics(PortfolioMetricsInput{
		Series:          seriesFromValues(values),
		TotalInvestment: 1000,
	})
	require.False(t, m.InsufficientData)
	assert.InDelta(t, 25.0, m.MaxDrawdownPct, 1e-9)
}

func TestComputePortfolioMetricsBeta(t *testing.T) {
	values := syntheticCloses(90)
	m := ComputePortfolioMetrics(PortfolioMetricsInput{
		Series:          seriesFromValues(values),
		BenchmarkCloses: values,
		TotalInvestment: 100,
	})
	require.NotNil(t, m.Beta)
	assert.InDelta(t, 1.0, *m.Beta, 1e-9)

	m = ComputePortfolioMetrics(PortfolioMetricsInput{
		Series:          seriesFromValues(values),
		TotalInvestment: 100,
	})
	assert.Nil(t, m.Beta, "no benchmark degrades beta to nil")
}

func TestComputePortfolioMetricsFlatWithMidWindowTrades(t *testing.T) {
	// Flat prices with a purchase doubling the value at tick 40 and a sale
	// halving it at tick 55. Riskless either way: the jumps are cash flows,
	// not market moves.
	values := make([]float64, 70)
	flows := make([]bool, 70)
	for i := range values {
		switch {
		case i < 40:
			values[i] = 1000
		case i < 55:
			values[i] = 2000
		default:
			values[i] = 1000
		}
	}
	flows[40] = true
	flows[55] = true

	m := ComputePortfolioMetrics(PortfolioMetricsInput{
		Series:          seriesFromValues(values),
		Flows:           flows,
		TotalInvestment: 1000,
	})
	require.False(t, m.InsufficientData)
	assert.Zero(t, m.Volatility, "a purchase is not a gain")
	assert.Zero(t, m.ValueAtRisk95)
	assert.Zero(t, m.WinRatePct)
	assert.Zero(t, m.MaxDrawdownPct, "a sale is not a crash")
	assert.Equal(t, 67, m.DataPoints, "flow ticks are excluded from the return count")
}

func TestFlowTicks(t *testing.T) {
	axis := []int64{dayTS(0), dayTS(1), dayTS(2), dayTS(3)}
	lots := []models.Lot{
		{
			ID: "a", Symbol: "AAPL", PurchasePrice: 100, Shares: 10, PurchaseTime: dayTS(0) - 3600,
			Sales: []models.SaleRecord{{ID: "s1", LotID: "a", Shares: 4, Timestamp: dayTS(2)}},
		},
		{ID: "b", Symbol: "MSFT", PurchasePrice: 50, Shares: 2, PurchaseTime: dayTS(1)},
	}
	flows := flowTicks(lots, axis)
	assert.Equal(t, []bool{false, true, true, false}, flows)
}

func TestChainReturnsSkipFlowTicks(t *testing.T) {
	values := []float64{1000, 1010, 2020, 2040.2}
	flows := []bool{false, false, true, false}

	returns := chainReturns(values, flows)
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.01, returns[0], 1e-9)
	assert.InDelta(t, 0.01, returns[1], 1e-9)

	index := growthIndex(values, flows)
	assert.InDelta(t, 101.0, index[2], 1e-9, "index stays flat across the flow tick")
	assert.InDelta(t, 102.01, index[3], 1e-9)
}

func TestMaxDrawdown(t *testing.T) {
	assert.InDelta(t, 25.0, maxDrawdown([]float64{100, 120, 90, 110}), 1e-9)
	assert.Zero(t, maxDrawdown([]float64{100, 110, 120}))
	assert.Zero(t, maxDrawdown(nil))
}

func TestWinRate(t *testing.T) {
	assert.InDelta(t, 50.0, winRate([]float64{0.01, -0.01, 0.02, -0.02}), 1e-9)
	assert.Zero(t, winRate(nil))
	// Flat days are not wins.
	assert.InDelta(t, 25.0, winRate([]float64{0.01, 0, 0, -0.01}), 1e-9)
}

func TestDownsideDeviation(t *testing.T) {
	assert.Zero(t, downsideDeviation([]float64{0.01, 0.02}))
	assert.Greater(t, downsideDeviation([]float64{0.01, -0.02, -0.01}), 0.0)
}
