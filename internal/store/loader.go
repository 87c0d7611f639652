package store

import (
	"context"
	"log/slog"

	"github.com/legisdesk/bill-registry/internal/models"
	"github.com/legisdesk/bill-registry/internal/processing"
)

// BillLoader fetches the bill set once at startup.
type BillLoader interface {
	LoadBills(ctx context.Context) ([]models.Bill, error)
}

// RowSource returns unvalidated bill rows; the sync job publishes them as-is.
type RowSource interface {
	FetchRows(ctx context.Context) ([]models.BillRow, error)
}

// LoadBills runs loader and substitutes FallbackBills when it fails or
// returns nothing, so the registry is never empty.
func LoadBills(ctx context.Context, loader BillLoader, log *slog.Logger) []models.Bill {
	bills, err := loader.LoadBills(ctx)
	if err != nil {
		log.Warn("bill source unavailable, serving fallback set", slog.Any("err", err))
		return FallbackBills()
	}
	if len(bills) == 0 {
		log.Warn("bill source returned no rows, serving fallback set")
		return FallbackBills()
	}
	return bills
}

// billsFromRows converts rows and drops the ones that fail validation.
func billsFromRows(rows []models.BillRow, log *slog.Logger) []models.Bill {
	bills := make([]models.Bill, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		bill, err := processing.BillFromRow(row)
		if err != nil {
			log.Warn("skip bill row", slog.Any("err", err))
			continue
		}
		if _, dup := seen[bill.ID]; dup {
			log.Warn("skip duplicate bill id", slog.String("id", bill.ID))
			continue
		}
		seen[bill.ID] = struct{}{}
		bills = append(bills, bill)
	}
	return bills
}

// StaticLoader serves the compiled-in bills.
type StaticLoader struct{}

// LoadBills implements BillLoader.
func (StaticLoader) LoadBills(context.Context) ([]models.Bill, error) {
	return seedBills(), nil
}
