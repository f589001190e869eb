package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/ledger"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/repository"
)

// InventoryRepository provides in-memory inventory storage. Reads return
// copies; every write holds the repository lock for its whole
// read-modify-write.
type InventoryRepository struct {
	mu        sync.RWMutex
	items     map[int64]domain.Item
	variants  map[int64][]domain.SizeVariant
	snapshots map[int64][]domain.PeriodSnapshot
	legacyIDs map[string]int64
	nextID    int64
	now       func() time.Time
}

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		items:     map[int64]domain.Item{},
		variants:  map[int64][]domain.SizeVariant{},
		snapshots: map[int64][]domain.PeriodSnapshot{},
		legacyIDs: map[string]int64{},
		now:       time.Now,
	}
}

// Verify interface compliance
var _ repository.InventoryRepository = (*InventoryRepository)(nil)

// PutItem stores an item with its variants and returns the assigned item id.
// Variant ids and item ids are assigned from the same sequence.
func (r *InventoryRepository) PutItem(item domain.Item, variants ...domain.SizeVariant) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	item.ID = r.nextID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = r.now()
	}
	r.items[item.ID] = item
	if item.LegacyID != "" {
		r.legacyIDs[item.LegacyID] = item.ID
	}

	stored := make([]domain.SizeVariant, 0, len(variants))
	for _, v := range variants {
		r.nextID++
		v.ID = r.nextID
		v.ItemID = item.ID
		if v.Period == 0 {
			v.Period = 1
		}
		stored = append(stored, v)
	}
	r.variants[item.ID] = stored
	return item.ID
}

// Variants returns a copy of the variants of an item.
func (r *InventoryRepository) Variants(itemID int64) []domain.SizeVariant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.SizeVariant(nil), r.variants[itemID]...)
}

func (r *InventoryRepository) ListReportRows(ctx context.Context, filter domain.ReportFilter) ([]domain.InventoryReportRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var rows []domain.InventoryReportRow
	for _, item := range r.items {
		if !item.Active {
			continue
		}
		if filter.EducationLevel != "" && item.EducationLevel != filter.EducationLevel {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		for _, v := range r.variants[item.ID] {
			price := v.UnitPrice
			if !price.Valid {
				price = item.UnitPrice
			}
			rows = append(rows, domain.InventoryReportRow{
				ItemID:         item.ID,
				VariantID:      v.ID,
				Name:           item.Name,
				EducationLevel: item.EducationLevel,
				Size:           v.Size,
				Counters:       v.Counters,
				ReorderPoint:   v.ReorderPoint,
				UnitPrice:      price,
				CreatedAt:      item.CreatedAt,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		if rows[i].EducationLevel != rows[j].EducationLevel {
			return rows[i].EducationLevel < rows[j].EducationLevel
		}
		return rows[i].Size < rows[j].Size
	})
	return rows, nil
}

func (r *InventoryRepository) ListSizes(ctx context.Context, name string, level domain.EducationLevel) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sizes []string
	for _, item := range r.items {
		if !item.Active || item.Name != name || item.EducationLevel != level {
			continue
		}
		for _, v := range r.variants[item.ID] {
			sizes = append(sizes, v.Size)
		}
	}
	sort.Strings(sizes)
	return sizes, nil
}

func (r *InventoryRepository) AddStock(ctx context.Context, in domain.AddStockInput) (domain.Item, domain.SizeVariant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[in.ItemID]
	if !ok {
		return domain.Item{}, domain.SizeVariant{}, domain.NewNotFoundError("item", in.ItemID)
	}
	if !item.Active {
		return domain.Item{}, domain.SizeVariant{}, domain.NewValidationError("item_id", fmt.Sprintf("item %d is inactive", in.ItemID))
	}

	variants := r.variants[in.ItemID]
	target, err := ledger.SelectVariant(in.ItemID, variants, in.Size)
	if err != nil {
		return domain.Item{}, domain.SizeVariant{}, err
	}

	for i := range variants {
		if variants[i].ID != target.ID {
			continue
		}
		variants[i].Counters = ledger.AddPurchase(variants[i].Counters, in.Quantity)
		if in.UnitPrice != nil {
			variants[i].UnitPrice.Decimal = *in.UnitPrice
			variants[i].UnitPrice.Valid = true
		}
		variants[i].UpdatedAt = r.now()
		return item, variants[i], nil
	}
	return domain.Item{}, domain.SizeVariant{}, domain.NewNotFoundError("variant", target.ID)
}

func (r *InventoryRepository) ResetBeginningInventory(ctx context.Context, in domain.ResetInput) (domain.Item, []repository.ResetResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[in.ItemID]
	if !ok {
		return domain.Item{}, nil, domain.NewNotFoundError("item", in.ItemID)
	}
	if !item.Active {
		return domain.Item{}, nil, domain.NewValidationError("item_id", fmt.Sprintf("item %d is inactive", in.ItemID))
	}

	variants := r.variants[in.ItemID]
	targets, err := ledger.TargetVariants(in.ItemID, variants, in.Size)
	if err != nil {
		return domain.Item{}, nil, err
	}

	results := make([]repository.ResetResult, 0, len(targets))
	for _, t := range targets {
		for i := range variants {
			if variants[i].ID != t.ID {
				continue
			}
			v := &variants[i]
			if !v.HasMovement() {
				results = append(results, repository.ResetResult{Variant: *v})
				break
			}

			now := r.now()
			r.nextID++
			r.snapshots[v.ID] = append(r.snapshots[v.ID], domain.PeriodSnapshot{
				ID:              r.nextID,
				VariantID:       v.ID,
				Period:          v.Period,
				Counters:        v.Counters,
				EndingInventory: ledger.EndingInventory(v.Counters),
				ClosedAt:        now,
			})

			v.Counters = ledger.Rollover(v.Counters)
			v.Period++
			v.PeriodStartedAt = now
			v.UpdatedAt = now
			results = append(results, repository.ResetResult{Variant: *v, RolledOver: true})
			break
		}
	}
	return item, results, nil
}

func (r *InventoryRepository) UpsertLegacyItem(ctx context.Context, legacy domain.LegacyItem, resolved []ledger.ResolvedVariant) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, exists := r.legacyIDs[legacy.LegacyID]
	if !exists {
		r.nextID++
		id = r.nextID
		r.legacyIDs[legacy.LegacyID] = id
	}

	createdAt := legacy.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	r.items[id] = domain.Item{
		ID:             id,
		LegacyID:       legacy.LegacyID,
		Name:           legacy.Name,
		EducationLevel: legacy.EducationLevel,
		UnitPrice:      legacy.UnitPrice,
		Active:         legacy.Active,
		CreatedAt:      createdAt,
	}

	variants := r.variants[id]
	for _, rv := range resolved {
		found := false
		for i := range variants {
			if variants[i].Size == rv.Size {
				variants[i].Counters = rv.Counters
				variants[i].ReorderPoint = rv.ReorderPoint
				variants[i].UnitPrice = rv.UnitPrice
				variants[i].UpdatedAt = r.now()
				found = true
				break
			}
		}
		if found {
			continue
		}
		r.nextID++
		variants = append(variants, domain.SizeVariant{
			ID:              r.nextID,
			ItemID:          id,
			Size:            rv.Size,
			Counters:        rv.Counters,
			ReorderPoint:    rv.ReorderPoint,
			UnitPrice:       rv.UnitPrice,
			Period:          1,
			PeriodStartedAt: r.now(),
			UpdatedAt:       r.now(),
		})
	}
	r.variants[id] = variants
	return id, nil
}

func (r *InventoryRepository) ListPeriodSnapshots(ctx context.Context, variantID int64) ([]domain.PeriodSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.PeriodSnapshot(nil), r.snapshots[variantID]...), nil
}
