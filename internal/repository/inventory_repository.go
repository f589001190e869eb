package repository

import (
	"context"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/ledger"
)

// ResetResult is the outcome of a period close for one variant. RolledOver is
// false when the variant had no movement and was left untouched.
type ResetResult struct {
	Variant    domain.SizeVariant
	RolledOver bool
}

// InventoryRepository persists items, their size variants and closed periods.
// Implementations must serialize writes per variant: AddStock increments
// purchases atomically and ResetBeginningInventory reads and rewrites the
// counters under the same row lock, so neither can lose the other's update.
type InventoryRepository interface {
	// ListReportRows returns one row per (item, variant) of active items,
	// optionally restricted by education level and a name search.
	ListReportRows(ctx context.Context, filter domain.ReportFilter) ([]domain.InventoryReportRow, error)
	// ListSizes returns the raw size labels of the item group.
	ListSizes(ctx context.Context, name string, level domain.EducationLevel) ([]string, error)

	AddStock(ctx context.Context, in domain.AddStockInput) (domain.Item, domain.SizeVariant, error)
	ResetBeginningInventory(ctx context.Context, in domain.ResetInput) (domain.Item, []ResetResult, error)

	// UpsertLegacyItem writes an imported item and its resolved variants,
	// keyed by legacy id and (item, size).
	UpsertLegacyItem(ctx context.Context, item domain.LegacyItem, variants []ledger.ResolvedVariant) (int64, error)
	ListPeriodSnapshots(ctx context.Context, variantID int64) ([]domain.PeriodSnapshot, error)
}
