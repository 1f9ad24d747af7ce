package interfaces

import (
	"context"

	"github.com/foliolab/folio/internal/models"
)

// AddLotRequest carries the validated inputs for a new purchase lot.
type AddLotRequest struct {
	Symbol        string
	PurchasePrice float64
	Shares        float64
	PurchaseTime  int64 // epoch seconds
}

// RecordSaleRequest carries the inputs for a partial or full disposal.
type RecordSaleRequest struct {
	Price    float64
	Shares   float64
	SaleTime int64 // epoch seconds
}

// PortfolioService is the mutation boundary for the caller-owned portfolio
// store. All lot-state validation happens here; the analytics engine only
// ever reads immutable snapshots.
type PortfolioService interface {
	AddLot(ctx context.Context, req AddLotRequest) (*models.Lot, error)
	RecordSale(ctx context.Context, lotID string, req RecordSaleRequest) (*models.Lot, error)
	// RecordSaleAtMarket sells at the current quoted price for the lot's
	// full remaining position.
	RecordSaleAtMarket(ctx context.Context, lotID string) (*models.Lot, error)
	DeleteLot(ctx context.Context, lotID string) error
	ListLots(ctx context.Context) ([]models.Lot, error)
	// SaleHistory returns every recorded disposal, including those whose
	// lot has since been deleted.
	SaleHistory(ctx context.Context) ([]models.SaleRecord, error)
	Summary(ctx context.Context) (*models.PortfolioSummary, error)
}

// PerformanceOptions shapes one analytics computation.
type PerformanceOptions struct {
	Range  models.Range
	Mode   models.PerformanceMode
	Events bool // include trade-event annotations
}

// AnalyticsService computes portfolio performance series, metric suites, and
// single-instrument risk profiles. All computations are pure per invocation:
// results are rebuilt from the store snapshot and fresh price data each call.
type AnalyticsService interface {
	Performance(ctx context.Context, opts PerformanceOptions) (*models.PerformanceReport, error)
	PortfolioMetrics(ctx context.Context, rng models.Range) (*models.PortfolioMetrics, error)
	InstrumentRisk(ctx context.Context, symbol string) (*models.RiskMetrics, error)
	RenderChart(ctx context.Context, opts PerformanceOptions) ([]byte, error)
}
