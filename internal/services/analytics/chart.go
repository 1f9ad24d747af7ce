package analytics

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/foliolab/folio/internal/models"
)

// RenderPerformanceChart renders a PNG line chart of the aggregated
// performance series with purchase/sale markers. Percentage mode plots
// PctChange against a zero baseline; absolute mode plots portfolio value.
// Returns raw PNG bytes.
func RenderPerformanceChart(report *models.PerformanceReport) ([]byte, error) {
	if report == nil || len(report.Series) < 2 {
		n := 0
		if report != nil {
			n = len(report.Series)
		}
		return nil, fmt.Errorf("need at least 2 data points, got %d", n)
	}

	xValues := make([]time.Time, len(report.Series))
	yValues := make([]float64, len(report.Series))
	for i, p := range report.Series {
		xValues[i] = time.Unix(p.Timestamp, 0)
		if report.Mode == models.ModeAbsolute {
			yValues[i] = p.Value
		} else {
			yValues[i] = p.PctChange
		}
	}

	mainSeries := chart.TimeSeries{
		Name: "Portfolio",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: yValues,
	}

	series := []chart.Series{mainSeries}
	if report.Events != nil {
		if s := markerSeries("Purchases", report.Events.Purchases, xValues, yValues, "16a34a"); s != nil {
			series = append(series, s)
		}
		if s := markerSeries("Sales", report.Events.Sales, xValues, yValues, "dc2626"); s != nil {
			series = append(series, s)
		}
	}

	graph := chart.Chart{
		Title:  chartTitle(report),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: yFormatter(report.Mode),
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// markerSeries turns snapped event points into a dot-only overlay series.
func markerSeries(name string, points []models.EventPoint, xValues []time.Time, yValues []float64, hexColor string) chart.Series {
	if len(points) == 0 {
		return nil
	}
	xs := make([]time.Time, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Index < 0 || p.Index >= len(xValues) {
			continue
		}
		xs = append(xs, xValues[p.Index])
		ys = append(ys, yValues[p.Index])
	}
	if len(xs) == 0 {
		return nil
	}
	return chart.TimeSeries{
		Name: name,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    5,
			DotColor:    drawing.ColorFromHex(hexColor),
		},
		XValues: xs,
		YValues: ys,
	}
}

func chartTitle(report *models.PerformanceReport) string {
	if report.Mode == models.ModeAbsolute {
		return fmt.Sprintf("Portfolio Value (%s)", report.Range)
	}
	return fmt.Sprintf("Portfolio Performance (%s)", report.Range)
}

func yFormatter(mode models.PerformanceMode) chart.ValueFormatter {
	if mode == models.ModeAbsolute {
		return func(v interface{}) string {
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("$%.0f", f)
			}
			return ""
		}
	}
	return func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return fmt.Sprintf("%.1f%%", f)
		}
		return ""
	}
}
