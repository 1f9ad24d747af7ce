package yahoo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRegularMarketPriceShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want float64
	}{
		{
			name: "quoteResponse envelope",
			raw:  `{"quoteResponse":{"result":[{"regularMarketPrice":101.25}]}}`,
			want: 101.25,
		},
		{
			name: "finance envelope",
			raw:  `{"finance":{"result":[{"regularMarketPrice":95.5}]}}`,
			want: 95.5,
		},
		{
			name: "chart meta envelope",
			raw:  `{"chart":{"result":[{"meta":{"regularMarketPrice":88.0}}]}}`,
			want: 88.0,
		},
		{
			name: "bare result",
			raw:  `{"result":[{"regularMarketPrice":42.0}]}`,
			want: 42.0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			price, err := ExtractRegularMarketPrice(json.RawMessage(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, price)
		})
	}
}

func TestExtractRegularMarketPricePreference(t *testing.T) {
	// When multiple shapes are present the richest envelope wins.
	raw := `{"quoteResponse":{"result":[{"regularMarketPrice":1.0}]},"result":[{"regularMarketPrice":2.0}]}`
	price, err := ExtractRegularMarketPrice(json.RawMessage(raw))
	require.NoError(t, err)
	assert.Equal(t, 1.0, price)
}

func TestExtractRegularMarketPriceNoData(t *testing.T) {
	cases := []string{
		`{}`,
		`{"quoteResponse":{"result":[]}}`,
		`{"quoteResponse":{"result":[{"regularMarketPrice":0}]}}`,
		`{"result":[{}]}`,
	}
	for _, raw := range cases {
		_, err := ExtractRegularMarketPrice(json.RawMessage(raw))
		assert.ErrorIs(t, err, ErrNoQuoteData, raw)
	}
}

func TestExtractRegularMarketPriceMalformed(t *testing.T) {
	_, err := ExtractRegularMarketPrice(json.RawMessage(`not json`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoQuoteData)
}

func TestChartResponseToSeries(t *testing.T) {
	var resp chartResponse
	raw := chartPayload([]int64{10, 20, 30, 40}, []interface{}{1.0, nil, -5.0, 4.0})
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	series, err := resp.toSeries("AAPL")
	require.NoError(t, err)
	require.Len(t, series.Points, 2, "null and non-positive closes are dropped")
	assert.Equal(t, int64(10), series.Points[0].Timestamp)
	assert.Equal(t, int64(40), series.Points[1].Timestamp)
}

func TestChartResponseAllNull(t *testing.T) {
	var resp chartResponse
	raw := chartPayload([]int64{10, 20}, []interface{}{nil, nil})
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	_, err := resp.toSeries("AAPL")
	assert.Error(t, err)
}
