package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliolab/folio/internal/models"
)

func chartPayload(timestamps []int64, closes []interface{}) string {
	payload := map[string]interface{}{
		"chart": map[string]interface{}{
			"result": []interface{}{
				map[string]interface{}{
					"timestamp": timestamps,
					"indicators": map[string]interface{}{
						"quote": []interface{}{
							map[string]interface{}{"close": closes},
						},
					},
				},
			},
		},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func newServerClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(
		WithBaseURL(srv.URL),
		WithRateLimit(100),
		WithBenchmark("^GSPC"),
	)
	return client, srv
}

func TestGetPriceSeries(t *testing.T) {
	client, _ := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		w.Write([]byte(chartPayload([]int64{100, 200, 300}, []interface{}{10.0, 11.0, 12.0})))
	})

	series, err := client.GetPriceSeries(context.Background(), "AAPL", models.IntervalDaily, models.Range1y)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", series.Symbol)
	require.Len(t, series.Points, 3)
	assert.Equal(t, int64(200), series.Points[1].Timestamp)
	assert.Equal(t, 11.0, series.Points[1].Close)
}

func TestGetPriceSeriesDropsNullCloses(t *testing.T) {
	client, _ := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartPayload([]int64{100, 200, 300}, []interface{}{10.0, nil, 12.0})))
	})

	series, err := client.GetPriceSeries(context.Background(), "AAPL", models.IntervalDaily, models.Range1y)
	require.NoError(t, err)
	require.Len(t, series.Points, 2)
	assert.Equal(t, int64(300), series.Points[1].Timestamp)
}

func TestGetPriceSeriesAPIError(t *testing.T) {
	client, _ := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := client.GetPriceSeries(context.Background(), "NOPE", models.IntervalDaily, models.Range1y)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestGetPriceSeriesChartError(t *testing.T) {
	client, _ := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	})

	_, err := client.GetPriceSeries(context.Background(), "NOPE", models.IntervalDaily, models.Range1y)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestGetQuote(t *testing.T) {
	client, _ := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbols"))
		w.Write([]byte(`{"quoteResponse":{"result":[{"regularMarketPrice":189.5}]}}`))
	})

	quote, err := client.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 189.5, quote.RegularMarketPrice)
	assert.False(t, quote.FetchedAt.IsZero())
}

func TestGetBenchmarkSeries(t *testing.T) {
	var requestedPath string
	client, _ := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Write([]byte(chartPayload([]int64{100}, []interface{}{10.0})))
	})

	series, err := client.GetBenchmarkSeries(context.Background(), models.Range1y)
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/^GSPC", requestedPath)
	assert.Equal(t, "^GSPC", series.Symbol)
}

func TestGetContextCancellation(t *testing.T) {
	client, _ := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartPayload([]int64{100}, []interface{}{10.0})))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetPriceSeries(ctx, "AAPL", models.IntervalDaily, models.Range1y)
	assert.Error(t, err)
}
