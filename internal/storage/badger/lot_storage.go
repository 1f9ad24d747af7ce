package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/foliolab/folio/internal/common"
	"github.com/foliolab/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type lotStorage struct {
	store  *Store
	logger *common.Logger
}

// NewLotStorage creates a new PortfolioStore backed by BadgerHold.
func NewLotStorage(store *Store, logger *common.Logger) *lotStorage {
	return &lotStorage{store: store, logger: logger}
}

func (s *lotStorage) GetLot(_ context.Context, id string) (*models.Lot, error) {
	var lot models.Lot
	err := s.store.db.Get(id, &lot)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("lot '%s': %w", id, models.ErrLotNotFound)
		}
		return nil, fmt.Errorf("failed to get lot '%s': %w", id, err)
	}
	return &lot, nil
}

func (s *lotStorage) SaveLot(_ context.Context, lot *models.Lot) error {
	lot.UpdatedAt = time.Now()
	if lot.CreatedAt.IsZero() {
		lot.CreatedAt = time.Now()
	}

	if err := s.store.db.Upsert(lot.ID, lot); err != nil {
		return fmt.Errorf("failed to save lot: %w", err)
	}
	s.logger.Debug().Str("id", lot.ID).Str("symbol", lot.Symbol).Msg("Lot saved")
	return nil
}

func (s *lotStorage) DeleteLot(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Lot{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete lot '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Msg("Lot deleted")
	return nil
}

func (s *lotStorage) ListLots(_ context.Context) ([]models.Lot, error) {
	var lots []models.Lot
	if err := s.store.db.Find(&lots, nil); err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	// Stable order: purchase time ascending, then ID for same-day lots.
	sort.Slice(lots, func(i, j int) bool {
		if lots[i].PurchaseTime != lots[j].PurchaseTime {
			return lots[i].PurchaseTime < lots[j].PurchaseTime
		}
		return lots[i].ID < lots[j].ID
	})
	return lots, nil
}
