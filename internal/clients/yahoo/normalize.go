package yahoo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/foliolab/folio/internal/models"
)

// ErrNoQuoteData is returned when no known response shape yields a price.
var ErrNoQuoteData = errors.New("no quote data in response")

// chartResponse mirrors the chart API payload. Closes may contain nulls for
// halted or partial sessions.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// toSeries converts the raw chart payload to a PriceSeries, dropping bars
// with null closes.
func (r *chartResponse) toSeries(symbol string) (*models.PriceSeries, error) {
	if r.Chart.Error != nil {
		return nil, fmt.Errorf("chart API rejected %s: %s", symbol, r.Chart.Error.Description)
	}
	if len(r.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart result for %s", symbol)
	}

	result := r.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote indicators for %s", symbol)
	}

	closes := result.Indicators.Quote[0].Close
	points := make([]models.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		points = append(points, models.PricePoint{Timestamp: ts, Close: *closes[i]})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("empty price series for %s", symbol)
	}

	return &models.PriceSeries{Symbol: symbol, Points: points}, nil
}

// quoteEnvelope covers the known quote response shapes. Providers (and proxy
// fallbacks in front of them) answer with one of four layouts; this adapter
// is the single place that knows about all of them so the engine never sees
// a raw payload.
type quoteEnvelope struct {
	QuoteResponse *resultList `json:"quoteResponse"`
	Finance       *resultList `json:"finance"`
	Chart         *struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
	Result []quoteItem `json:"result"`
}

type resultList struct {
	Result []quoteItem `json:"result"`
}

type quoteItem struct {
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
}

// ExtractRegularMarketPrice normalizes the four known quote response shapes
// (quoteResponse.result, finance.result, chart.result meta, bare result)
// down to a single price.
func ExtractRegularMarketPrice(raw json.RawMessage) (float64, error) {
	var env quoteEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return 0, fmt.Errorf("failed to parse quote response: %w", err)
	}

	if env.QuoteResponse != nil {
		if p, ok := firstPrice(env.QuoteResponse.Result); ok {
			return p, nil
		}
	}
	if env.Finance != nil {
		if p, ok := firstPrice(env.Finance.Result); ok {
			return p, nil
		}
	}
	if env.Chart != nil && len(env.Chart.Result) > 0 {
		if p := env.Chart.Result[0].Meta.RegularMarketPrice; p != nil && *p > 0 {
			return *p, nil
		}
	}
	if p, ok := firstPrice(env.Result); ok {
		return p, nil
	}

	return 0, ErrNoQuoteData
}

func firstPrice(items []quoteItem) (float64, bool) {
	if len(items) == 0 {
		return 0, false
	}
	p := items[0].RegularMarketPrice
	if p == nil || *p <= 0 {
		return 0, false
	}
	return *p, true
}
