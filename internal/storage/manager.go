// Package storage wires the concrete storage backends behind the
// StorageManager interface.
package storage

import (
	"fmt"

	"github.com/foliolab/folio/internal/common"
	"github.com/foliolab/folio/internal/interfaces"
	"github.com/foliolab/folio/internal/storage/badger"
)

// Manager coordinates the storage backends. Lots and sale history share one
// BadgerHold database; they are separate types with separate contracts.
type Manager struct {
	store       *badger.Store
	portfolio   interfaces.PortfolioStore
	saleHistory interfaces.SaleHistoryStore
	logger      *common.Logger
}

// NewManager opens the storage backends from config.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Portfolio.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open portfolio storage: %w", err)
	}

	return &Manager{
		store:       store,
		portfolio:   badger.NewLotStorage(store, logger),
		saleHistory: badger.NewSaleHistoryStorage(store, logger),
		logger:      logger,
	}, nil
}

// PortfolioStore returns the lot store.
func (m *Manager) PortfolioStore() interfaces.PortfolioStore {
	return m.portfolio
}

// SaleHistoryStore returns the append-only sale history store.
func (m *Manager) SaleHistoryStore() interfaces.SaleHistoryStore {
	return m.saleHistory
}

// Close closes all storage backends.
func (m *Manager) Close() error {
	return m.store.Close()
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
