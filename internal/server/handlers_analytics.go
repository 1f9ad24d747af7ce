package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/foliolab/folio/internal/interfaces"
	"github.com/foliolab/folio/internal/models"
	"github.com/foliolab/folio/internal/services/analytics"
)

// performanceOptions parses the shared range/mode/events query parameters.
func performanceOptions(r *http.Request) interfaces.PerformanceOptions {
	q := r.URL.Query()
	return interfaces.PerformanceOptions{
		Range:  models.ParseRange(q.Get("range")),
		Mode:   models.ParseMode(q.Get("mode")),
		Events: q.Get("events") != "false",
	}
}

// handlePerformance handles GET /api/portfolio/performance.
func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	report, err := s.app.AnalyticsService.Performance(r.Context(), performanceOptions(r))
	if err != nil {
		if errors.Is(err, analytics.ErrSuperseded) {
			WriteErrorWithCode(w, http.StatusConflict, err.Error(), "superseded")
			return
		}
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handleMetrics handles GET /api/portfolio/metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	rng := models.ParseRange(r.URL.Query().Get("range"))
	metrics, err := s.app.AnalyticsService.PortfolioMetrics(r.Context(), rng)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, metrics)
}

// handleChart handles GET /api/portfolio/chart.png.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	data, err := s.app.AnalyticsService.RenderChart(r.Context(), performanceOptions(r))
	if err != nil {
		if errors.Is(err, analytics.ErrSuperseded) {
			WriteErrorWithCode(w, http.StatusConflict, err.Error(), "superseded")
			return
		}
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleRisk handles GET /api/risk/{symbol}.
func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.ToUpper(pathSegment(r.URL.Path, "/api/risk/"))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	metrics, err := s.app.AnalyticsService.InstrumentRisk(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":     symbol,
		"metrics":    metrics,
		"risk_level": models.RiskLevel(metrics.RiskScore),
	})
}
