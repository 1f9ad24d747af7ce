package analytics

import (
	"sort"

	"github.com/foliolab/folio/internal/models"
)

// snapToleranceSeconds is the widest gap allowed between a trade event and
// its nearest series timestamp. Events further out than this (e.g. a weekly
// axis that ends before a recent sale) are dropped rather than pinned to a
// misleading bar.
const snapToleranceSeconds int64 = 90 * 24 * 3600

// AnnotateEvents snaps every purchase and sale across the lots onto the
// aggregated series axis for chart markers. historical carries sale records
// whose lot no longer exists; they keep their markers so deleting a lot does
// not erase its trades from the chart. Events landing on the same index merge
// into one marker; the marker's y-value is the series value at that index so
// it sits on the plotted line.
func AnnotateEvents(lots []models.Lot, historical []models.SaleRecord, timestamps []int64, values []float64) *models.EventAnnotations {
	ann := &models.EventAnnotations{}
	if len(timestamps) == 0 {
		return ann
	}

	purchases := make(map[int]*models.EventPoint)
	sales := make(map[int]*models.EventPoint)

	for i := range lots {
		lot := &lots[i]
		snapEvent(purchases, timestamps, values, models.TradeEvent{
			Type:      models.TradeEventPurchase,
			Symbol:    lot.Symbol,
			LotID:     lot.ID,
			Price:     lot.PurchasePrice,
			Shares:    lot.Shares,
			Value:     lot.PurchasePrice * lot.Shares,
			Timestamp: lot.PurchaseTime,
		})
		for _, sale := range lot.Sales {
			snapEvent(sales, timestamps, values, saleEvent(sale))
		}
	}
	for _, sale := range historical {
		snapEvent(sales, timestamps, values, saleEvent(sale))
	}

	ann.Purchases = collectEventPoints(purchases)
	ann.Sales = collectEventPoints(sales)
	return ann
}

func saleEvent(sale models.SaleRecord) models.TradeEvent {
	return models.TradeEvent{
		Type:      models.TradeEventSale,
		Symbol:    sale.Symbol,
		LotID:     sale.LotID,
		Price:     sale.Price,
		Shares:    sale.Shares,
		Value:     sale.Value,
		Timestamp: sale.Timestamp,
	}
}

// OrphanSales filters the history to records whose owning lot has been
// deleted. Sales still attached to a live lot are annotated from the lot
// itself; counting them twice would double the markers.
func OrphanSales(history []models.SaleRecord, lots []models.Lot) []models.SaleRecord {
	live := make(map[string]bool, len(lots))
	for i := range lots {
		live[lots[i].ID] = true
	}
	var out []models.SaleRecord
	for _, sale := range history {
		if !live[sale.LotID] {
			out = append(out, sale)
		}
	}
	return out
}

// snapEvent finds the nearest axis timestamp for the event and merges it into
// the per-index bucket. Events outside the tolerance window are discarded.
func snapEvent(bucket map[int]*models.EventPoint, timestamps []int64, values []float64, ev models.TradeEvent) {
	idx := nearestIndex(timestamps, ev.Timestamp)
	if idx < 0 {
		return
	}
	gap := timestamps[idx] - ev.Timestamp
	if gap < 0 {
		gap = -gap
	}
	if gap > snapToleranceSeconds {
		return
	}

	point, ok := bucket[idx]
	if !ok {
		value := ev.Value
		if idx < len(values) {
			value = values[idx]
		}
		point = &models.EventPoint{
			Index:     idx,
			Timestamp: timestamps[idx],
			Value:     value,
		}
		bucket[idx] = point
	}
	point.Events = append(point.Events, ev)
}

// nearestIndex returns the index of the axis timestamp closest to ts by
// absolute difference, or -1 for an empty axis.
func nearestIndex(timestamps []int64, ts int64) int {
	if len(timestamps) == 0 {
		return -1
	}
	// First index with timestamp >= ts; the nearest is that or its left
	// neighbor.
	i := sort.Search(len(timestamps), func(i int) bool { return timestamps[i] >= ts })
	if i == 0 {
		return 0
	}
	if i == len(timestamps) {
		return len(timestamps) - 1
	}
	if timestamps[i]-ts < ts-timestamps[i-1] {
		return i
	}
	return i - 1
}

func collectEventPoints(bucket map[int]*models.EventPoint) []models.EventPoint {
	out := make([]models.EventPoint, 0, len(bucket))
	for _, p := range bucket {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
