// Package yahoo provides a client for the Yahoo Finance chart/quote API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/foliolab/folio/internal/common"
	"github.com/foliolab/folio/internal/interfaces"
	"github.com/foliolab/folio/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	benchmark  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithBenchmark sets the benchmark index symbol used by GetBenchmarkSeries
func WithBenchmark(symbol string) ClientOption {
	return func(c *Client) {
		c.benchmark = symbol
	}
}

// NewClient creates a new chart-API client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		benchmark: "^GSPC",
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chart API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "folio/"+common.GetVersion())

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Chart API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetPriceSeries retrieves close prices for a symbol, ascending by timestamp.
// Bars with null closes (halts, partial sessions) are dropped.
func (c *Client) GetPriceSeries(ctx context.Context, symbol string, interval models.Interval, rng models.Range) (*models.PriceSeries, error) {
	params := url.Values{}
	params.Set("interval", string(interval))
	params.Set("range", string(rng))

	var raw chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), params, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch price series for %s: %w", symbol, err)
	}

	series, err := raw.toSeries(symbol)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("symbol", symbol).
		Str("range", string(rng)).
		Int("points", len(series.Points)).
		Msg("Price series fetched")

	return series, nil
}

// GetQuote retrieves the current quote, normalizing whichever response shape
// the provider returns.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("symbols", symbol)

	var raw json.RawMessage
	if err := c.get(ctx, "/v7/finance/quote", params, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}

	price, err := ExtractRegularMarketPrice(raw)
	if err != nil {
		return nil, fmt.Errorf("quote for %s: %w", symbol, err)
	}

	return &models.Quote{
		Symbol:             symbol,
		RegularMarketPrice: price,
		FetchedAt:          time.Now(),
	}, nil
}

// GetBenchmarkSeries retrieves the benchmark index series at daily interval.
func (c *Client) GetBenchmarkSeries(ctx context.Context, rng models.Range) (*models.PriceSeries, error) {
	return c.GetPriceSeries(ctx, c.benchmark, models.IntervalDaily, rng)
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
