package analytics

import (
	"math"

	"github.com/foliolab/folio/internal/models"
)

// riskFreeRate is the annual risk-free rate used by Sharpe and Sortino.
const riskFreeRate = 0.02

// PortfolioMetricsInput bundles the aggregated series and the portfolio
// state the metric suite is computed over. Flows is aligned with Series:
// Flows[i] marks a tick whose interval since the prior tick saw a purchase
// or sale, so the value jump there is a cash flow and not a market return.
type PortfolioMetricsInput struct {
	Series          []models.ReturnPoint
	Flows           []bool
	BenchmarkCloses []float64
	TotalInvestment float64
	Positions       int
}

// ComputePortfolioMetrics derives the full metric suite from the aggregated
// absolute-value series. Returns are chain-linked across flow ticks so a
// deposit never reads as a gain nor a sale as a crash. Fewer than the minimum
// observations yields the sentinel result with whatever headline figures are
// still meaningful.
func ComputePortfolioMetrics(in PortfolioMetricsInput) *models.PortfolioMetrics {
	m := &models.PortfolioMetrics{
		TotalInvestment: in.TotalInvestment,
		Positions:       in.Positions,
	}

	values := make([]float64, 0, len(in.Series))
	for _, p := range in.Series {
		values = append(values, p.Value)
	}
	if len(values) > 0 {
		m.CurrentValue = values[len(values)-1]
		if in.TotalInvestment > 0 {
			m.TotalReturnPct = (m.CurrentValue - in.TotalInvestment) / in.TotalInvestment * 100
		}
	}

	returns := chainReturns(values, in.Flows)
	m.DataPoints = len(returns)
	if len(returns) < minObservations {
		m.InsufficientData = true
		return m
	}

	index := growthIndex(values, in.Flows)

	m.Volatility = annualizedVolatility(returns)
	m.ValueAtRisk95 = valueAtRisk95(returns)
	m.Beta = computeBeta(returns, DailyReturns(in.BenchmarkCloses))
	m.MaxDrawdownPct = maxDrawdown(index)
	m.WinRatePct = winRate(returns)

	// Annualized time-weighted return over the window, for the ratio
	// numerators.
	annualReturn := annualizedReturn(index, len(returns))
	if m.Volatility > 0 {
		m.SharpeRatio = (annualReturn - riskFreeRate) / (m.Volatility / 100)
	}
	if dd := downsideDeviation(returns); dd > 0 {
		m.SortinoRatio = (annualReturn - riskFreeRate) / dd
	}

	return m
}

// flowTicks marks the axis indexes whose interval since the prior tick
// contains a purchase or sale, i.e. the ticks where the portfolio value moved
// because money did. An event landing exactly on a tick repriced the value at
// that tick, so the half-open interval (prev, ts] is the contaminated one.
func flowTicks(lots []models.Lot, axis []int64) []bool {
	flows := make([]bool, len(axis))
	for i := 1; i < len(axis); i++ {
		prev, ts := axis[i-1], axis[i]
		for j := range lots {
			lot := &lots[j]
			if lot.PurchaseTime > prev && lot.PurchaseTime <= ts {
				flows[i] = true
				break
			}
			for _, sale := range lot.Sales {
				if sale.Timestamp > prev && sale.Timestamp <= ts {
					flows[i] = true
					break
				}
			}
			if flows[i] {
				break
			}
		}
	}
	return flows
}

// chainReturns computes tick-over-tick returns of the value series, dropping
// the ticks marked as flows. What remains is the market-driven return stream
// of whatever was held between trades.
func chainReturns(values []float64, flows []bool) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if i < len(flows) && flows[i] {
			continue
		}
		if values[i-1] <= 0 {
			continue
		}
		out = append(out, (values[i]-values[i-1])/values[i-1])
	}
	return out
}

// growthIndex chains the flow-free returns into a normalized index starting
// at 100, flat across flow ticks. Drawdown and annualized return are read
// from this index rather than the raw value series, which jumps on trades.
func growthIndex(values []float64, flows []bool) []float64 {
	if len(values) == 0 {
		return nil
	}
	index := make([]float64, len(values))
	index[0] = 100
	for i := 1; i < len(values); i++ {
		index[i] = index[i-1]
		if i < len(flows) && flows[i] {
			continue
		}
		if values[i-1] <= 0 {
			continue
		}
		index[i] = index[i-1] * (values[i] / values[i-1])
	}
	return index
}

// annualizedReturn converts the index's total growth into a per-year rate.
func annualizedReturn(index []float64, observations int) float64 {
	first, last := index[0], index[len(index)-1]
	if first <= 0 || observations == 0 {
		return 0
	}
	years := float64(observations) / tradingDaysPerYear
	if years <= 0 {
		return 0
	}
	return math.Pow(last/first, 1/years) - 1
}

// downsideDeviation is the annualized deviation of negative daily returns
// only. Zero when the window has no down days.
func downsideDeviation(returns []float64) float64 {
	var sum float64
	var n int
	for _, r := range returns {
		if r < 0 {
			sum += r * r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum/float64(n)) * math.Sqrt(tradingDaysPerYear)
}

// maxDrawdown is the deepest peak-to-trough decline of the value series, as
// a positive percentage.
func maxDrawdown(values []float64) float64 {
	var peak, worst float64
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak * 100
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// winRate is the fraction of strictly-positive daily returns, as a
// percentage.
func winRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var wins int
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns)) * 100
}
