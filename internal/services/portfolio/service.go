// Package portfolio is the mutation boundary for the lot store. All lot-state
// validation lives here; readers elsewhere treat stored lots as immutable
// snapshots.
package portfolio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foliolab/folio/internal/common"
	"github.com/foliolab/folio/internal/interfaces"
	"github.com/foliolab/folio/internal/models"
)

// Service implements interfaces.PortfolioService.
type Service struct {
	storage interfaces.StorageManager
	market  interfaces.MarketDataClient
	logger  *common.Logger
}

// NewService creates a new portfolio service.
func NewService(storage interfaces.StorageManager, market interfaces.MarketDataClient, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		market:  market,
		logger:  logger,
	}
}

// AddLot validates and stores a new purchase lot. Lots for the same symbol
// are never merged; each purchase stands alone with its own price and date.
func (s *Service) AddLot(ctx context.Context, req interfaces.AddLotRequest) (*models.Lot, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required: %w", models.ErrValidation)
	}
	if req.PurchasePrice <= 0 {
		return nil, fmt.Errorf("purchase price must be positive, got %.4f: %w", req.PurchasePrice, models.ErrValidation)
	}
	if req.Shares <= 0 {
		return nil, fmt.Errorf("share count must be positive, got %.4f: %w", req.Shares, models.ErrValidation)
	}
	if req.PurchaseTime <= 0 {
		return nil, fmt.Errorf("purchase time is required: %w", models.ErrValidation)
	}
	if req.PurchaseTime > time.Now().Unix() {
		return nil, fmt.Errorf("purchase time cannot be in the future: %w", models.ErrValidation)
	}

	lot := &models.Lot{
		ID:            uuid.New().String(),
		Symbol:        symbol,
		PurchasePrice: req.PurchasePrice,
		Shares:        req.Shares,
		PurchaseTime:  req.PurchaseTime,
	}

	if err := s.storage.PortfolioStore().SaveLot(ctx, lot); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("id", lot.ID).
		Str("symbol", lot.Symbol).
		Float64("shares", lot.Shares).
		Float64("price", lot.PurchasePrice).
		Msg("Lot added")

	return lot, nil
}

// RecordSale records a partial or full disposal against a lot. The sale is
// written both onto the lot and into the append-only history store. A lot
// sold down to zero shares stays in the portfolio for chart continuity until
// explicitly deleted.
func (s *Service) RecordSale(ctx context.Context, lotID string, req interfaces.RecordSaleRequest) (*models.Lot, error) {
	lot, err := s.storage.PortfolioStore().GetLot(ctx, lotID)
	if err != nil {
		return nil, err
	}

	if req.Price <= 0 {
		return nil, fmt.Errorf("sale price must be positive, got %.4f: %w", req.Price, models.ErrValidation)
	}
	if req.Shares <= 0 {
		return nil, fmt.Errorf("sale share count must be positive, got %.4f: %w", req.Shares, models.ErrValidation)
	}
	if req.SaleTime <= 0 {
		return nil, fmt.Errorf("sale time is required: %w", models.ErrValidation)
	}
	if req.SaleTime < lot.PurchaseTime {
		return nil, fmt.Errorf("sale predates purchase: %w", models.ErrInvalidLotState)
	}

	remaining := lot.CurrentShares()
	if req.Shares > remaining {
		return nil, fmt.Errorf("cannot sell %.4f shares, only %.4f remain: %w",
			req.Shares, remaining, models.ErrInvalidLotState)
	}

	sale := models.SaleRecord{
		ID:            uuid.New().String(),
		LotID:         lot.ID,
		Symbol:        lot.Symbol,
		Price:         req.Price,
		Shares:        req.Shares,
		Timestamp:     req.SaleTime,
		Value:         req.Price * req.Shares,
		PurchasePrice: lot.PurchasePrice,
		PurchaseTime:  lot.PurchaseTime,
	}

	lot.Sales = append(lot.Sales, sale)
	if err := s.storage.PortfolioStore().SaveLot(ctx, lot); err != nil {
		return nil, err
	}
	if err := s.storage.SaleHistoryStore().Append(ctx, &sale); err != nil {
		// The lot already carries the sale; history is best-effort secondary.
		s.logger.Warn().Err(err).Str("lot_id", lot.ID).Msg("Failed to append sale to history store")
	}

	s.logger.Info().
		Str("lot_id", lot.ID).
		Str("symbol", lot.Symbol).
		Float64("shares", sale.Shares).
		Float64("price", sale.Price).
		Float64("remaining", lot.CurrentShares()).
		Msg("Sale recorded")

	return lot, nil
}

// RecordSaleAtMarket sells the lot's full remaining position at the current
// quoted price.
func (s *Service) RecordSaleAtMarket(ctx context.Context, lotID string) (*models.Lot, error) {
	lot, err := s.storage.PortfolioStore().GetLot(ctx, lotID)
	if err != nil {
		return nil, err
	}

	remaining := lot.CurrentShares()
	if remaining <= 0 {
		return nil, fmt.Errorf("lot '%s' has no remaining shares: %w", lotID, models.ErrInvalidLotState)
	}

	quote, err := s.market.GetQuote(ctx, lot.Symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", lot.Symbol, err)
	}
	if quote.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("no usable market price for %s", lot.Symbol)
	}

	return s.RecordSale(ctx, lotID, interfaces.RecordSaleRequest{
		Price:    quote.RegularMarketPrice,
		Shares:   remaining,
		SaleTime: time.Now().Unix(),
	})
}

// DeleteLot removes a lot from the store. Its sale records remain in the
// history store.
func (s *Service) DeleteLot(ctx context.Context, lotID string) error {
	if _, err := s.storage.PortfolioStore().GetLot(ctx, lotID); err != nil {
		return err
	}
	if err := s.storage.PortfolioStore().DeleteLot(ctx, lotID); err != nil {
		return err
	}
	s.logger.Info().Str("id", lotID).Msg("Lot deleted")
	return nil
}

// ListLots returns all stored lots, ordered by purchase time.
func (s *Service) ListLots(ctx context.Context) ([]models.Lot, error) {
	return s.storage.PortfolioStore().ListLots(ctx)
}

// SaleHistory returns all recorded disposals, oldest first. Records outlive
// their lot, so the history is complete even after deletions.
func (s *Service) SaleHistory(ctx context.Context) ([]models.SaleRecord, error) {
	return s.storage.SaleHistoryStore().List(ctx)
}

// Summary returns the lot list with portfolio-level totals and per-lot
// weights. Weights are computed over the cost basis of currently-held shares,
// so closed lots carry zero weight but stay listed.
func (s *Service) Summary(ctx context.Context) (*models.PortfolioSummary, error) {
	lots, err := s.storage.PortfolioStore().ListLots(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.PortfolioSummary{
		Lots:        make([]models.LotSummary, 0, len(lots)),
		GeneratedAt: time.Now(),
	}

	var total float64
	for _, lot := range lots {
		total += lot.Investment()
	}
	summary.TotalInvestment = total

	for _, lot := range lots {
		ls := models.LotSummary{
			Lot:               lot,
			CurrentSharesHeld: lot.CurrentShares(),
			InvestmentValue:   lot.Investment(),
		}
		if total > 0 {
			ls.WeightPct = ls.InvestmentValue / total * 100
		}
		if lot.IsClosed() {
			summary.ClosedLots++
		} else {
			summary.OpenLots++
		}
		summary.Lots = append(summary.Lots, ls)
	}

	return summary, nil
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
