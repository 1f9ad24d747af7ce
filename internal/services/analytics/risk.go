package analytics

import (
	"math"
	"sort"

	"github.com/foliolab/folio/internal/models"
)

// minObservations is the fewest daily returns the risk calculators will work
// with. Below this the result is a sentinel, not an error: thin history is an
// expected state for a young portfolio.
const minObservations = 30

// tradingDaysPerYear annualizes daily statistics.
const tradingDaysPerYear = 252

// DailyReturns converts a close series into simple daily returns. Bars with a
// non-positive previous close are skipped rather than emitting infinities.
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 {
			continue
		}
		out = append(out, (closes[i]-closes[i-1])/closes[i-1])
	}
	return out
}

// ComputeRiskMetrics calculates the risk profile of one instrument (or an
// aggregated portfolio) from its close series. benchmark may be nil or short;
// beta then degrades to nil rather than failing the whole computation.
func ComputeRiskMetrics(closes []float64, benchmark []float64) *models.RiskMetrics {
	returns := DailyReturns(closes)
	if len(returns) < minObservations {
		return &models.RiskMetrics{
			DataPoints:       len(returns),
			InsufficientData: true,
		}
	}

	var95 := valueAtRisk95(returns)
	vol := annualizedVolatility(returns)
	beta := computeBeta(returns, DailyReturns(benchmark))

	score, factors := riskScore(vol, var95, beta)

	return &models.RiskMetrics{
		ValueAtRisk95:        var95,
		AnnualizedVolatility: vol,
		Beta:                 beta,
		RiskScore:            score,
		RiskFactors:          factors,
		DataPoints:           len(returns),
	}
}

// valueAtRisk95 is the magnitude of the 5th-percentile daily return, as a
// percentage. Historical method: sort and index, no distribution assumed.
func valueAtRisk95(returns []float64) float64 {
	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)
	idx := int(math.Floor(float64(len(sorted)) * 0.05))
	return math.Abs(sorted[idx]) * 100
}

// annualizedVolatility is the stddev of daily returns scaled by sqrt(252),
// as a percentage.
func annualizedVolatility(returns []float64) float64 {
	return stddev(returns) * math.Sqrt(tradingDaysPerYear) * 100
}

// computeBeta regresses the instrument's returns against the benchmark over
// their aligned overlap. Returns nil when the benchmark is missing, too
// short, or flat (zero variance).
func computeBeta(returns, benchReturns []float64) *float64 {
	n := len(returns)
	if len(benchReturns) < n {
		n = len(benchReturns)
	}
	if n < minObservations {
		return nil
	}

	// Align from the tail: both series end at the most recent bar.
	r := returns[len(returns)-n:]
	b := benchReturns[len(benchReturns)-n:]

	meanR := mean(r)
	meanB := mean(b)
	var cov, varB float64
	for i := 0; i < n; i++ {
		cov += (r[i] - meanR) * (b[i] - meanB)
		varB += (b[i] - meanB) * (b[i] - meanB)
	}
	if varB == 0 {
		return nil
	}
	beta := cov / varB
	return &beta
}

// riskScore folds volatility, VaR, and beta into a single 0..100 composite
// with the per-factor breakdown.
func riskScore(vol, var95 float64, beta *float64) (float64, []models.RiskFactor) {
	volScore := math.Min(40, vol/50*40)
	varScore := math.Min(30, var95/5*30)

	var betaScore float64
	betaNote := "benchmark unavailable"
	if beta != nil {
		b := *beta
		if b > 1 {
			betaScore = math.Min(30, (b-1)*30)
		} else {
			betaScore = math.Max(0, (b-0.5)*20)
		}
		betaNote = ""
	}

	total := volScore + varScore + betaScore
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	factors := []models.RiskFactor{
		{Name: "volatility", Score: volScore, Max: 40},
		{Name: "value_at_risk", Score: varScore, Max: 30},
		{Name: "beta", Score: betaScore, Max: 30, Note: betaNote},
	}
	return total, factors
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		sum += (x - m) * (x - m)
	}
	return math.Sqrt(sum / float64(len(xs)))
}
