package service

import (
	"context"
	"strings"
	"time"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/cache"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/ledger"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/metrics"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

type InventoryService struct {
	repo       repository.InventoryRepository
	cache      cache.ReportCache
	classifier ledger.Classifier
	loc        *time.Location
	metrics    *metrics.Metrics
}

func NewInventoryService(
	repo repository.InventoryRepository,
	cacheImpl cache.ReportCache,
	classifier ledger.Classifier,
	loc *time.Location,
	m *metrics.Metrics,
) *InventoryService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	if loc == nil {
		loc = time.Local
	}
	return &InventoryService{
		repo:       repo,
		cache:      cacheImpl,
		classifier: classifier,
		loc:        loc,
		metrics:    m,
	}
}

// AddStock records a purchase against one variant and returns its new state.
func (s *InventoryService) AddStock(ctx context.Context, in domain.AddStockInput) (*domain.VariantState, error) {
	if in.ItemID <= 0 {
		return nil, domain.NewValidationError("item_id", "item id must be positive")
	}
	if in.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "quantity must be greater than zero")
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, domain.NewValidationError("unit_price", "unit price cannot be negative")
	}

	item, variant, err := s.repo.AddStock(ctx, in)
	if err != nil {
		return nil, err
	}

	s.invalidateReports(ctx)
	s.metrics.StockAdded(string(item.EducationLevel), in.Quantity)

	state := s.variantState(item, variant, false)
	s.checkEnding(state.ItemID, state.VariantID, state.EndingInventory)

	log.Info().
		Int64("item_id", item.ID).
		Str("size", variant.Size).
		Int("quantity", in.Quantity).
		Int("ending_inventory", state.EndingInventory).
		Msg("inventory: stock added")

	return &state, nil
}

// ResetBeginningInventory closes the open period of the targeted variants.
// Variants without movement are returned unchanged with RolledOver false.
func (s *InventoryService) ResetBeginningInventory(ctx context.Context, in domain.ResetInput) ([]domain.VariantState, error) {
	if in.ItemID <= 0 {
		return nil, domain.NewValidationError("item_id", "item id must be positive")
	}

	item, results, err := s.repo.ResetBeginningInventory(ctx, in)
	if err != nil {
		return nil, err
	}

	states := make([]domain.VariantState, 0, len(results))
	rolled := 0
	for _, res := range results {
		state := s.variantState(item, res.Variant, res.RolledOver)
		states = append(states, state)

		if res.RolledOver {
			rolled++
			s.metrics.PeriodClosed("rolled_over")
			s.checkEnding(state.ItemID, state.VariantID, state.BeginningInventory)
		} else {
			s.metrics.PeriodClosed("no_movement")
		}
	}

	if rolled > 0 {
		s.invalidateReports(ctx)
	}

	log.Info().
		Int64("item_id", item.ID).
		Str("size", in.Size).
		Int("variants", len(states)).
		Int("rolled_over", rolled).
		Msg("inventory: beginning inventory reset")

	return states, nil
}

// GetReport returns the grouped report for filter. Date bounds are validated
// before any read. A report is cached only if no write landed while it was
// being computed.
func (s *InventoryService) GetReport(ctx context.Context, filter domain.ReportFilter) (*domain.InventoryReport, error) {
	dates, err := ledger.ParseDateRange(filter.StartDate, filter.EndDate, s.loc)
	if err != nil {
		return nil, err
	}

	generation, err := s.cache.Generation(ctx)
	cacheable := err == nil
	if err != nil {
		log.Warn().Err(err).Msg("inventory: cache generation lookup failed")
	}

	if cacheable {
		if report, ok, err := s.cache.GetReport(ctx, generation, filter); err == nil && ok {
			s.metrics.ReportCacheLookup(true)
			return report, nil
		} else if err != nil {
			log.Warn().Err(err).Msg("inventory: cache get report failed")
		}
		s.metrics.ReportCacheLookup(false)
	}

	rows, err := s.classifiedRows(ctx, filter)
	if err != nil {
		return nil, err
	}

	report := ledger.Aggregate(rows, filter.EducationLevel, dates)

	if cacheable {
		current, err := s.cache.Generation(ctx)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("inventory: cache generation lookup failed")
		case current != generation:
			log.Debug().Int64("generation", generation).Int64("current", current).Msg("inventory: report outdated, not cached")
		default:
			if err := s.cache.SetReport(ctx, generation, filter, &report); err != nil {
				log.Warn().Err(err).Msg("inventory: cache set report failed")
			}
		}
	}
	return &report, nil
}

// ListRows returns the flat classified rows, with no grouping, restricted
// to items created inside the filter's date range.
func (s *InventoryService) ListRows(ctx context.Context, filter domain.ReportFilter) ([]domain.InventoryReportRow, error) {
	dates, err := ledger.ParseDateRange(filter.StartDate, filter.EndDate, s.loc)
	if err != nil {
		return nil, err
	}

	rows, err := s.classifiedRows(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ledger.FilterByDate(rows, func(r domain.InventoryReportRow) time.Time { return r.CreatedAt }, dates), nil
}

// ListSizes returns the distinct sizes of an item group, sorted.
func (s *InventoryService) ListSizes(ctx context.Context, name string, level domain.EducationLevel) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}
	if level == "" {
		return nil, domain.NewValidationError("education_level", "education level is required")
	}

	labels, err := s.repo.ListSizes(ctx, name, level)
	if err != nil {
		return nil, err
	}
	return ledger.DistinctSizes(labels), nil
}

func (s *InventoryService) PeriodHistory(ctx context.Context, variantID int64) ([]domain.PeriodSnapshot, error) {
	if variantID <= 0 {
		return nil, domain.NewValidationError("variant_id", "variant id must be positive")
	}

	snapshots, err := s.repo.ListPeriodSnapshots(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if snapshots == nil {
		snapshots = make([]domain.PeriodSnapshot, 0)
	}
	return snapshots, nil
}

func (s *InventoryService) EducationLevels() []domain.EducationLevel {
	return append([]domain.EducationLevel(nil), domain.EducationLevels...)
}

func (s *InventoryService) classifiedRows(ctx context.Context, filter domain.ReportFilter) ([]domain.InventoryReportRow, error) {
	rows, err := s.repo.ListReportRows(ctx, filter)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = make([]domain.InventoryReportRow, 0)
	}

	s.classifier.ClassifyRows(rows)
	for _, row := range rows {
		s.checkEnding(row.ItemID, row.VariantID, row.Stock)
	}
	return rows, nil
}

func (s *InventoryService) variantState(item domain.Item, v domain.SizeVariant, rolledOver bool) domain.VariantState {
	ending, status := s.classifier.ClassifyCounters(v.Counters, v.ReorderPoint)

	price := v.UnitPrice
	if !price.Valid {
		price = item.UnitPrice
	}

	return domain.VariantState{
		ItemID:          item.ID,
		VariantID:       v.ID,
		Name:            item.Name,
		EducationLevel:  item.EducationLevel,
		Size:            v.Size,
		Counters:        v.Counters,
		EndingInventory: ending,
		ReorderPoint:    v.ReorderPoint,
		Status:          status,
		UnitPrice:       price,
		Period:          v.Period,
		RolledOver:      rolledOver,
	}
}

// checkEnding reports negative stock. It never fails the caller.
func (s *InventoryService) checkEnding(itemID, variantID int64, ending int) {
	if ending >= 0 {
		return
	}
	s.metrics.DataQualityWarning("negative_ending_inventory")
	log.Warn().
		Int64("item_id", itemID).
		Int64("variant_id", variantID).
		Int("ending_inventory", ending).
		Msg("inventory: negative ending inventory")
}

func (s *InventoryService) invalidateReports(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("inventory: cache invalidate failed")
	}
}
