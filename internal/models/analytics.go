package models

// ReturnPoint is one point of a performance series, for the whole portfolio
// or one lot. PctChange is relative to the cost basis deployed at that
// timestamp; Value is the absolute market value.
type ReturnPoint struct {
	Timestamp int64   `json:"timestamp"`
	PctChange float64 `json:"pct_change"`
	Value     float64 `json:"value"`
}

// RiskFactor is one component of the composite risk score.
type RiskFactor struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Max   float64 `json:"max"`
	Note  string  `json:"note,omitempty"`
}

// RiskMetrics is the single-instrument (or portfolio) risk profile.
// InsufficientData marks the sentinel result returned for fewer than the
// minimum observations. That is an expected state, not an error.
type RiskMetrics struct {
	ValueAtRisk95        float64      `json:"value_at_risk_95"`       // % daily loss at 95% confidence
	AnnualizedVolatility float64      `json:"annualized_volatility"`  // %
	Beta                 *float64     `json:"beta"`                   // nil when benchmark unavailable
	RiskScore            float64      `json:"risk_score"`             // 0..100
	RiskFactors          []RiskFactor `json:"risk_factors"`
	DataPoints           int          `json:"data_points"`
	InsufficientData     bool         `json:"insufficient_data,omitempty"`
}

// RiskLevel buckets a risk score for display. Thresholds are presentation
// policy; consumers needing different cutoffs should use the raw score.
func RiskLevel(score float64) string {
	switch {
	case score < 33:
		return "low"
	case score < 66:
		return "medium"
	default:
		return "high"
	}
}

// PortfolioMetrics is the full performance/risk suite computed on the
// aggregated portfolio series.
type PortfolioMetrics struct {
	TotalReturnPct   float64  `json:"total_return_pct"`
	TotalInvestment  float64  `json:"total_investment"`
	CurrentValue     float64  `json:"current_value"`
	Volatility       float64  `json:"volatility"` // annualized, %
	Beta             *float64 `json:"beta"`
	SharpeRatio      float64  `json:"sharpe_ratio"`
	SortinoRatio     float64  `json:"sortino_ratio"`
	MaxDrawdownPct   float64  `json:"max_drawdown_pct"`
	ValueAtRisk95    float64  `json:"value_at_risk_95"`
	WinRatePct       float64  `json:"win_rate_pct"`
	Positions        int      `json:"positions"`
	DataPoints       int      `json:"data_points"`
	InsufficientData bool     `json:"insufficient_data,omitempty"`
}

// TradeEventType distinguishes purchase and sale markers.
type TradeEventType string

const (
	TradeEventPurchase TradeEventType = "purchase"
	TradeEventSale     TradeEventType = "sale"
)

// TradeEvent is one discrete purchase/sale used for chart markers.
type TradeEvent struct {
	Type      TradeEventType `json:"type"`
	Symbol    string         `json:"symbol"`
	LotID     string         `json:"lot_id"`
	Price     float64        `json:"price"`
	Shares    float64        `json:"shares"`
	Value     float64        `json:"value"` // price x shares
	Timestamp int64          `json:"timestamp"`
}

// EventPoint is one or more trade events snapped to an index on the unified
// series axis. Value is the series value at that index so markers sit on
// the plotted line.
type EventPoint struct {
	Index     int          `json:"index"`
	Timestamp int64        `json:"timestamp"`
	Value     float64      `json:"value"`
	Events    []TradeEvent `json:"events"`
}

// EventAnnotations holds the snapped purchase and sale markers for a series.
type EventAnnotations struct {
	Purchases []EventPoint `json:"purchases"`
	Sales     []EventPoint `json:"sales"`
}

// PerformanceMode selects percentage or absolute output for the aggregated
// series.
type PerformanceMode string

const (
	ModePercent  PerformanceMode = "pct"
	ModeAbsolute PerformanceMode = "absolute"
)

// ParseMode validates a mode string, defaulting to percentage.
func ParseMode(s string) PerformanceMode {
	if PerformanceMode(s) == ModeAbsolute {
		return ModeAbsolute
	}
	return ModePercent
}

// PerformanceReport is the payload served to the rendering layer: the
// aggregated series plus event annotations and the inputs that shaped it.
type PerformanceReport struct {
	Range    Range             `json:"range"`
	Mode     PerformanceMode   `json:"mode"`
	Interval Interval          `json:"interval"`
	Series   []ReturnPoint     `json:"series"`
	Events   *EventAnnotations `json:"events,omitempty"`
	Excluded []string          `json:"excluded_symbols,omitempty"` // symbols dropped by fetch failures
}
