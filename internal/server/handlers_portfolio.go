package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/foliolab/folio/internal/interfaces"
	"github.com/foliolab/folio/internal/models"
)

// addLotRequest is the POST /api/portfolio/lots payload.
type addLotRequest struct {
	Symbol        string  `json:"symbol"`
	PurchasePrice float64 `json:"purchase_price"`
	Shares        float64 `json:"shares"`
	PurchaseTime  int64   `json:"purchase_time"`
}

// recordSaleRequest is the POST /api/portfolio/lots/{id}/sales payload.
type recordSaleRequest struct {
	Price    float64 `json:"price"`
	Shares   float64 `json:"shares"`
	SaleTime int64   `json:"sale_time"`
}

// handlePortfolio handles GET /api/portfolio.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	summary, err := s.app.PortfolioService.Summary(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// handleLots handles POST /api/portfolio/lots.
func (s *Server) handleLots(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req addLotRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	lot, err := s.app.PortfolioService.AddLot(r.Context(), interfaces.AddLotRequest{
		Symbol:        req.Symbol,
		PurchasePrice: req.PurchasePrice,
		Shares:        req.Shares,
		PurchaseTime:  req.PurchaseTime,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, lot)
}

// handleSaleHistory handles GET /api/portfolio/sales. The history includes
// sales whose lot has since been deleted.
func (s *Server) handleSaleHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	sales, err := s.app.PortfolioService.SaleHistory(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sales": sales,
		"count": len(sales),
	})
}

// routeLot dispatches /api/portfolio/lots/{id} and its sub-resources.
func (s *Server) routeLot(w http.ResponseWriter, r *http.Request) {
	lotID := pathSegment(r.URL.Path, "/api/portfolio/lots/")
	if lotID == "" {
		WriteError(w, http.StatusBadRequest, "Lot ID is required")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/portfolio/lots/"+lotID)
	rest = strings.Trim(rest, "/")

	switch rest {
	case "":
		s.handleLot(w, r, lotID)
	case "sales":
		s.handleRecordSale(w, r, lotID)
	case "sales/market":
		s.handleRecordSaleAtMarket(w, r, lotID)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// handleLot handles DELETE /api/portfolio/lots/{id}.
func (s *Server) handleLot(w http.ResponseWriter, r *http.Request, lotID string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if err := s.app.PortfolioService.DeleteLot(r.Context(), lotID); err != nil {
		writePortfolioError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"deleted": lotID})
}

// handleRecordSale handles POST /api/portfolio/lots/{id}/sales.
func (s *Server) handleRecordSale(w http.ResponseWriter, r *http.Request, lotID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req recordSaleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	lot, err := s.app.PortfolioService.RecordSale(r.Context(), lotID, interfaces.RecordSaleRequest{
		Price:    req.Price,
		Shares:   req.Shares,
		SaleTime: req.SaleTime,
	})
	if err != nil {
		writePortfolioError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, lot)
}

// handleRecordSaleAtMarket handles POST /api/portfolio/lots/{id}/sales/market.
func (s *Server) handleRecordSaleAtMarket(w http.ResponseWriter, r *http.Request, lotID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	lot, err := s.app.PortfolioService.RecordSaleAtMarket(r.Context(), lotID)
	if err != nil {
		writePortfolioError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, lot)
}

// writePortfolioError maps mutation-boundary errors to HTTP status codes.
func writePortfolioError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrLotNotFound):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "lot_not_found")
	case errors.Is(err, models.ErrInvalidLotState):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_lot_state")
	case errors.Is(err, models.ErrValidation):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "validation_failed")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
