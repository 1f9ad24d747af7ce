// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/foliolab/folio/internal/models"
)

// MarketDataClient fetches price history and live quotes from the chart-API
// collaborator. Implementations own retry/timeout policy; callers treat the
// responses as immutable.
type MarketDataClient interface {
	// GetPriceSeries retrieves close prices for a symbol at the given
	// interval over the given range, ascending by timestamp.
	GetPriceSeries(ctx context.Context, symbol string, interval models.Interval, rng models.Range) (*models.PriceSeries, error)

	// GetQuote retrieves the current normalized quote for a symbol.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// GetBenchmarkSeries retrieves the benchmark index series used for beta.
	GetBenchmarkSeries(ctx context.Context, rng models.Range) (*models.PriceSeries, error)
}
