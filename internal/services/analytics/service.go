package analytics

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foliolab/folio/internal/common"
	"github.com/foliolab/folio/internal/interfaces"
	"github.com/foliolab/folio/internal/models"
)

// ErrSuperseded is returned when a newer performance request arrived while
// this one was still fetching. Latest wins; the stale result is discarded
// instead of being served.
var ErrSuperseded = errors.New("computation superseded by a newer request")

// Service implements interfaces.AnalyticsService. Results are rebuilt from
// the store snapshot and fresh price data on every call; the only mutable
// state is the request counter used to discard superseded computations.
type Service struct {
	storage interfaces.StorageManager
	market  interfaces.MarketDataClient
	logger  *common.Logger

	smoothing  bool
	requestSeq atomic.Uint64

	// now is injectable for tests.
	now func() time.Time
}

// NewService creates a new analytics service. smoothing enables the one-tick
// spike filter on percentage series.
func NewService(storage interfaces.StorageManager, market interfaces.MarketDataClient, smoothing bool, logger *common.Logger) *Service {
	return &Service{
		storage:   storage,
		market:    market,
		logger:    logger,
		smoothing: smoothing,
		now:       time.Now,
	}
}

// fetchResult is one symbol's outcome from the fan-out fetch.
type fetchResult struct {
	series map[string]*models.PriceSeries
	failed []string
}

// fetchSeries fetches price history for every symbol concurrently. A failed
// symbol is excluded from aggregation with a warning rather than failing the
// whole computation.
func (s *Service) fetchSeries(ctx context.Context, symbols []string, interval models.Interval, rng models.Range) *fetchResult {
	result := &fetchResult{series: make(map[string]*models.PriceSeries, len(symbols))}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			series, err := s.market.GetPriceSeries(ctx, symbol, interval, rng)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Price fetch failed, excluding symbol")
				result.failed = append(result.failed, symbol)
				return
			}
			result.series[symbol] = series
		}(symbol)
	}
	wg.Wait()

	sort.Strings(result.failed)
	return result
}

// fetchBenchmark returns the benchmark series, or nil when it is
// unavailable. Beta degrades to nil downstream; nothing else is affected.
func (s *Service) fetchBenchmark(ctx context.Context, rng models.Range) *models.PriceSeries {
	series, err := s.market.GetBenchmarkSeries(ctx, rng)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Benchmark fetch failed, beta unavailable")
		return nil
	}
	return series
}

// fetchRange picks the API range for a computation: the display range itself,
// widened to cover the earliest purchase when the display needs full history
// behind it (absolute mode and max).
func fetchRange(display models.Range, mode models.PerformanceMode, now time.Time, earliestPurchase int64) models.Range {
	if mode != models.ModeAbsolute && display != models.RangeMax {
		return display
	}
	widened := models.WidenForEarliest(now, earliestPurchase)
	if widened.Years() == 0 || display.Years() == 0 {
		// One of them is max; max always covers the other.
		return models.RangeMax
	}
	if widened.Years() > display.Years() {
		return widened
	}
	return display
}

// deletedLotSales loads the sale history and keeps the records whose lot has
// been deleted, so their chart markers survive the deletion. A history read
// failure drops the markers with a warning rather than failing the series.
func (s *Service) deletedLotSales(ctx context.Context, lots []models.Lot) []models.SaleRecord {
	history, err := s.storage.SaleHistoryStore().List(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Sale history read failed, historical markers omitted")
		return nil
	}
	return OrphanSales(history, lots)
}

// Performance computes the aggregated portfolio series for the requested
// range and mode, with optional trade-event annotations. When a newer
// request starts before this one finishes, ErrSuperseded is returned and the
// stale result is dropped.
func (s *Service) Performance(ctx context.Context, opts interfaces.PerformanceOptions) (*models.PerformanceReport, error) {
	token := s.requestSeq.Add(1)

	lots, err := s.storage.PortfolioStore().ListLots(ctx)
	if err != nil {
		return nil, err
	}

	report := &models.PerformanceReport{
		Range:    opts.Range,
		Mode:     opts.Mode,
		Interval: opts.Range.Interval(),
	}
	if len(lots) == 0 {
		return report, nil
	}

	now := s.now()
	earliest := models.EarliestPurchase(lots)
	apiRange := fetchRange(opts.Range, opts.Mode, now, earliest)

	fetched := s.fetchSeries(ctx, models.Symbols(lots), report.Interval, apiRange)
	report.Excluded = fetched.failed
	if len(fetched.series) == 0 {
		return report, nil
	}

	// Drop lots whose symbol failed to fetch; they would otherwise sit flat
	// at cost basis and skew the aggregate.
	included := make([]models.Lot, 0, len(lots))
	for _, lot := range lots {
		if _, ok := fetched.series[lot.Symbol]; ok {
			included = append(included, lot)
		}
	}

	axis := UnifiedAxis(fetched.series, opts.Range, now, earliest)
	if opts.Mode == models.ModeAbsolute {
		report.Series = AggregateAbsolute(included, fetched.series, axis)
	} else {
		report.Series = Aggregate(included, fetched.series, axis, s.smoothing)
	}

	if opts.Events {
		values := make([]float64, len(report.Series))
		for i, p := range report.Series {
			values[i] = p.Value
		}
		report.Events = AnnotateEvents(included, s.deletedLotSales(ctx, lots), axis, values)
	}

	if s.requestSeq.Load() != token {
		s.logger.Debug().Uint64("token", token).Msg("Performance result superseded")
		return nil, ErrSuperseded
	}

	s.logger.Info().
		Str("range", string(opts.Range)).
		Str("mode", string(opts.Mode)).
		Int("points", len(report.Series)).
		Int("excluded", len(report.Excluded)).
		Msg("Performance series computed")

	return report, nil
}

// PortfolioMetrics computes the Sharpe/Sortino/VaR/volatility/drawdown suite
// over the aggregated absolute-value series for the range.
func (s *Service) PortfolioMetrics(ctx context.Context, rng models.Range) (*models.PortfolioMetrics, error) {
	lots, err := s.storage.PortfolioStore().ListLots(ctx)
	if err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return &models.PortfolioMetrics{InsufficientData: true}, nil
	}

	now := s.now()
	earliest := models.EarliestPurchase(lots)
	apiRange := fetchRange(rng, models.ModeAbsolute, now, earliest)
	interval := rng.Interval()

	fetched := s.fetchSeries(ctx, models.Symbols(lots), interval, apiRange)
	if len(fetched.series) == 0 {
		return &models.PortfolioMetrics{InsufficientData: true}, nil
	}

	included := make([]models.Lot, 0, len(lots))
	var totalInvestment float64
	var positions int
	for _, lot := range lots {
		if _, ok := fetched.series[lot.Symbol]; !ok {
			continue
		}
		included = append(included, lot)
		totalInvestment += lot.Investment()
		if !lot.IsClosed() {
			positions++
		}
	}

	axis := UnifiedAxis(fetched.series, rng, now, earliest)
	series := AggregateAbsolute(included, fetched.series, axis)

	var benchCloses []float64
	if bench := s.fetchBenchmark(ctx, apiRange); bench != nil {
		benchCloses = bench.Closes()
	}

	metrics := ComputePortfolioMetrics(PortfolioMetricsInput{
		Series:          series,
		Flows:           flowTicks(included, axis),
		BenchmarkCloses: benchCloses,
		TotalInvestment: totalInvestment,
		Positions:       positions,
	})

	s.logger.Info().
		Str("range", string(rng)).
		Int("data_points", metrics.DataPoints).
		Bool("insufficient", metrics.InsufficientData).
		Msg("Portfolio metrics computed")

	return metrics, nil
}

// InstrumentRisk computes the single-instrument risk profile against the
// benchmark over one year of daily bars.
func (s *Service) InstrumentRisk(ctx context.Context, symbol string) (*models.RiskMetrics, error) {
	series, err := s.market.GetPriceSeries(ctx, symbol, models.IntervalDaily, models.Range1y)
	if err != nil {
		return nil, err
	}

	var benchCloses []float64
	if bench := s.fetchBenchmark(ctx, models.Range1y); bench != nil {
		benchCloses = bench.Closes()
	}

	metrics := ComputeRiskMetrics(series.Closes(), benchCloses)

	s.logger.Info().
		Str("symbol", symbol).
		Float64("score", metrics.RiskScore).
		Bool("insufficient", metrics.InsufficientData).
		Msg("Instrument risk computed")

	return metrics, nil
}

// RenderChart renders the performance series for the options as a PNG.
func (s *Service) RenderChart(ctx context.Context, opts interfaces.PerformanceOptions) ([]byte, error) {
	report, err := s.Performance(ctx, opts)
	if err != nil {
		return nil, err
	}
	return RenderPerformanceChart(report)
}

// Ensure Service implements AnalyticsService
var _ interfaces.AnalyticsService = (*Service)(nil)
