package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Counters are the movement counters of one variant for the open period.
type Counters struct {
	BeginningInventory int `json:"beginning_inventory" db:"beginning_inventory"`
	Purchases          int `json:"purchases" db:"purchases"`
	Released           int `json:"released" db:"released"`
	Returns            int `json:"returns" db:"returns"`
}

// HasMovement reports whether anything happened since the period opened.
func (c Counters) HasMovement() bool {
	return c.Purchases != 0 || c.Released != 0 || c.Returns != 0
}

// Item is a catalog entry.
type Item struct {
	ID             int64               `json:"id" db:"id"`
	LegacyID       string              `json:"legacy_id,omitempty" db:"legacy_id"`
	Name           string              `json:"name" db:"name"`
	EducationLevel EducationLevel      `json:"education_level" db:"education_level"`
	UnitPrice      decimal.NullDecimal `json:"unit_price" db:"unit_price"`
	Active         bool                `json:"active" db:"active"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
}

// SizeVariant is one row of the normalized (item_id, size) variant table.
// Items without sizes carry a single implicit variant.
type SizeVariant struct {
	ID     int64  `json:"id" db:"id"`
	ItemID int64  `json:"item_id" db:"item_id"`
	Size   string `json:"size" db:"size"`
	Counters
	ReorderPoint    int                 `json:"reorder_point" db:"reorder_point"`
	UnitPrice       decimal.NullDecimal `json:"unit_price" db:"unit_price"`
	Period          int                 `json:"period" db:"period"`
	PeriodStartedAt time.Time           `json:"period_started_at" db:"period_started_at"`
	UpdatedAt       time.Time           `json:"updated_at" db:"updated_at"`
}

// InventoryReportRow is a flattened (item, variant) pair as served to dashboards.
// Stock is a display copy of the derived ending inventory.
type InventoryReportRow struct {
	ItemID         int64          `json:"item_id" db:"item_id"`
	VariantID      int64          `json:"variant_id" db:"variant_id"`
	Name           string         `json:"name" db:"name"`
	EducationLevel EducationLevel `json:"education_level" db:"education_level"`
	Size           string         `json:"size" db:"size"`
	Counters
	Stock        int                 `json:"stock" db:"-"`
	ReorderPoint int                 `json:"reorder_point" db:"reorder_point"`
	Status       StockStatus         `json:"status" db:"-"`
	UnitPrice    decimal.NullDecimal `json:"unit_price" db:"unit_price"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
}

// VariantState is what the mutating operations return.
type VariantState struct {
	ItemID         int64          `json:"item_id"`
	VariantID      int64          `json:"variant_id"`
	Name           string         `json:"name"`
	EducationLevel EducationLevel `json:"education_level"`
	Size           string         `json:"size"`
	Counters
	EndingInventory int                 `json:"ending_inventory"`
	ReorderPoint    int                 `json:"reorder_point"`
	Status          StockStatus         `json:"status"`
	UnitPrice       decimal.NullDecimal `json:"unit_price"`
	Period          int                 `json:"period"`

	// RolledOver is false when a period close found no movement to roll.
	RolledOver bool `json:"rolled_over"`
}

// PeriodSnapshot is the immutable record written when a period is closed.
type PeriodSnapshot struct {
	ID        int64 `json:"id" db:"id"`
	VariantID int64 `json:"variant_id" db:"variant_id"`
	Period    int   `json:"period" db:"period"`
	Counters
	EndingInventory int       `json:"ending_inventory" db:"ending_inventory"`
	ClosedAt        time.Time `json:"closed_at" db:"closed_at"`
}

// AddStockInput is a purchase to apply to one variant.
type AddStockInput struct {
	ItemID    int64
	Size      string
	Quantity  int
	UnitPrice *decimal.Decimal
}

// ResetInput targets one variant, or every variant of the item when Size is empty.
type ResetInput struct {
	ItemID int64
	Size   string
}

// ReportFilter carries the reporting query parameters. Dates are YYYY-MM-DD.
type ReportFilter struct {
	EducationLevel EducationLevel `json:"education_level"`
	Search         string         `json:"search"`
	StartDate      string         `json:"start_date"`
	EndDate        string         `json:"end_date"`
}

// GroupKey identifies a report group.
type GroupKey struct {
	Name           string         `json:"name"`
	EducationLevel EducationLevel `json:"education_level"`
}

// Group holds the variants of one (name, education level) pair.
type Group struct {
	GroupKey
	Status   StockStatus          `json:"status"`
	Variants []InventoryReportRow `json:"variants"`
}

// InventoryReport is the aggregated view. Every group is counted in exactly one
// of the status buckets.
type InventoryReport struct {
	Groups               []Group    `json:"groups"`
	TotalGroups          int        `json:"total_groups"`
	OutOfStockGroups     int        `json:"out_of_stock_groups"`
	CriticalGroups       int        `json:"critical_groups"`
	AtReorderPointGroups int        `json:"at_reorder_point_groups"`
	InStockGroups        int        `json:"in_stock_groups"`
	OutOfStock           []GroupKey `json:"out_of_stock"`
}

// LegacyItem is one record of the legacy catalog export, before variant
// normalization. SizeVariations holds the raw structured encoding, if any.
type LegacyItem struct {
	LegacyID       string
	Name           string
	EducationLevel EducationLevel
	Size           string
	SizeVariations string
	Counters
	Stock        *int
	ReorderPoint int
	UnitPrice    decimal.NullDecimal
	Active       bool
	CreatedAt    time.Time
}
