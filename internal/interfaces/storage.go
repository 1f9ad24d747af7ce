package interfaces

import (
	"context"

	"github.com/foliolab/folio/internal/models"
)

// StorageManager coordinates the storage backends.
type StorageManager interface {
	PortfolioStore() PortfolioStore
	SaleHistoryStore() SaleHistoryStore
	Close() error
}

// PortfolioStore persists purchase lots. Lots carry their own sale records;
// the separate history store exists so sales survive lot deletion.
type PortfolioStore interface {
	GetLot(ctx context.Context, id string) (*models.Lot, error)
	SaveLot(ctx context.Context, lot *models.Lot) error
	DeleteLot(ctx context.Context, id string) error
	ListLots(ctx context.Context) ([]models.Lot, error)
}

// SaleHistoryStore is the append-only record of all disposals, retained even
// after the owning lot is deleted so historical charts stay continuous.
type SaleHistoryStore interface {
	Append(ctx context.Context, sale *models.SaleRecord) error
	List(ctx context.Context) ([]models.SaleRecord, error)
}
