package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/foliolab/folio/internal/common"
	"github.com/foliolab/folio/internal/models"
)

type saleHistoryStorage struct {
	store  *Store
	logger *common.Logger
}

// NewSaleHistoryStorage creates a new SaleHistoryStore backed by BadgerHold.
// Records are append-only: sales must survive deletion of their owning lot
// so historical charts stay continuous.
func NewSaleHistoryStorage(store *Store, logger *common.Logger) *saleHistoryStorage {
	return &saleHistoryStorage{store: store, logger: logger}
}

func (s *saleHistoryStorage) Append(_ context.Context, sale *models.SaleRecord) error {
	if sale.ID == "" {
		return fmt.Errorf("sale record requires an ID")
	}
	if err := s.store.db.Insert(sale.ID, sale); err != nil {
		return fmt.Errorf("failed to append sale record: %w", err)
	}
	s.logger.Debug().
		Str("id", sale.ID).
		Str("symbol", sale.Symbol).
		Float64("shares", sale.Shares).
		Msg("Sale recorded to history")
	return nil
}

func (s *saleHistoryStorage) List(_ context.Context) ([]models.SaleRecord, error) {
	var sales []models.SaleRecord
	if err := s.store.db.Find(&sales, nil); err != nil {
		return nil, fmt.Errorf("failed to list sale history: %w", err)
	}
	sort.Slice(sales, func(i, j int) bool {
		return sales[i].Timestamp < sales[j].Timestamp
	})
	return sales, nil
}
