package ledger

import (
	"testing"
	"time"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func row(name string, level domain.EducationLevel, size string, beginning, reorder int) domain.InventoryReportRow {
	return domain.InventoryReportRow{
		Name:           name,
		EducationLevel: level,
		Size:           size,
		Counters:       domain.Counters{BeginningInventory: beginning},
		ReorderPoint:   reorder,
		CreatedAt:      created,
	}
}

func TestAggregate_GroupDominanceAndSingleBucket(t *testing.T) {
	rows := []domain.InventoryReportRow{
		row("PE Uniform", domain.LevelElementary, "M", 15, 10),  // at reorder point
		row("PE Uniform", domain.LevelElementary, "L", 0, 10),   // out of stock
		row("PE Uniform", domain.LevelElementary, "S", 100, 10), // in stock
		row("Blouse", domain.LevelSeniorHigh, "S", 15, 10),
		row("Blouse", domain.LevelSeniorHigh, "M", 100, 10),
		row("Necktie", domain.LevelCollege, "N/A", 2, 10),
		row("Skirt", domain.LevelJuniorHigh, "M", 100, 10),
	}
	DefaultClassifier().ClassifyRows(rows)

	report := Aggregate(rows, "", DateRange{})

	require.Len(t, report.Groups, 4)
	assert.Equal(t, 4, report.TotalGroups)
	assert.Equal(t, 1, report.OutOfStockGroups)
	assert.Equal(t, 1, report.AtReorderPointGroups)
	assert.Equal(t, 1, report.CriticalGroups)
	assert.Equal(t, 1, report.InStockGroups)
	assert.Equal(t, report.TotalGroups,
		report.OutOfStockGroups+report.CriticalGroups+report.AtReorderPointGroups+report.InStockGroups)

	// groups ordered by name
	assert.Equal(t, "Blouse", report.Groups[0].Name)
	assert.Equal(t, domain.StatusAtReorderPoint, report.Groups[0].Status)
	assert.Equal(t, "Necktie", report.Groups[1].Name)
	assert.Equal(t, domain.StatusCritical, report.Groups[1].Status)

	pe := report.Groups[2]
	assert.Equal(t, "PE Uniform", pe.Name)
	assert.Equal(t, domain.StatusOutOfStock, pe.Status)
	assert.Equal(t, []string{"L", "M", "S"}, []string{pe.Variants[0].Size, pe.Variants[1].Size, pe.Variants[2].Size})

	assert.Equal(t, []domain.GroupKey{{Name: "PE Uniform", EducationLevel: domain.LevelElementary}}, report.OutOfStock)
}

func TestAggregate_EveryOutOfStockGroupRollsUpToOutOfStock(t *testing.T) {
	c := DefaultClassifier()
	for _, other := range []int{0, 3, 15, 500} {
		rows := []domain.InventoryReportRow{
			row("Polo", domain.LevelCollege, "M", 0, 10),
			row("Polo", domain.LevelCollege, "L", other, 10),
		}
		c.ClassifyRows(rows)

		report := Aggregate(rows, "", DateRange{})
		require.Len(t, report.Groups, 1)
		assert.Equal(t, domain.StatusOutOfStock, report.Groups[0].Status)
		assert.Equal(t, 1, report.OutOfStockGroups)
		assert.Equal(t, 0, report.AtReorderPointGroups)
	}
}

func TestAggregate_SameNameDifferentLevelsAreSeparateGroups(t *testing.T) {
	rows := []domain.InventoryReportRow{
		row("Polo", domain.LevelCollege, "M", 50, 10),
		row("Polo", domain.LevelElementary, "M", 50, 10),
	}
	DefaultClassifier().ClassifyRows(rows)

	report := Aggregate(rows, "", DateRange{})
	require.Len(t, report.Groups, 2)
	assert.Equal(t, domain.LevelElementary, report.Groups[0].EducationLevel)
	assert.Equal(t, domain.LevelCollege, report.Groups[1].EducationLevel)
}

func TestAggregate_Filters(t *testing.T) {
	old := row("Polo", domain.LevelCollege, "M", 50, 10)
	old.CreatedAt = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []domain.InventoryReportRow{
		old,
		row("Blouse", domain.LevelCollege, "M", 50, 10),
		row("Skirt", domain.LevelElementary, "M", 50, 10),
	}
	DefaultClassifier().ClassifyRows(rows)

	dates, err := ParseDateRange("2024-06-01", "2024-06-30", time.UTC)
	require.NoError(t, err)

	report := Aggregate(rows, domain.LevelCollege, dates)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, "Blouse", report.Groups[0].Name)

	empty := Aggregate(nil, "", DateRange{})
	assert.NotNil(t, empty.Groups)
	assert.NotNil(t, empty.OutOfStock)
	assert.Zero(t, empty.TotalGroups)
}

func TestClassifyRows(t *testing.T) {
	rows := []domain.InventoryReportRow{
		{Counters: domain.Counters{BeginningInventory: 20, Released: 5}, ReorderPoint: 10},
		{Counters: domain.Counters{BeginningInventory: 2, Released: 5}, ReorderPoint: 10},
	}
	DefaultClassifier().ClassifyRows(rows)

	assert.Equal(t, 15, rows[0].Stock)
	assert.Equal(t, domain.StatusAtReorderPoint, rows[0].Status)
	assert.Equal(t, -3, rows[1].Stock, "negative stock is surfaced, not clamped")
	assert.Equal(t, domain.StatusOutOfStock, rows[1].Status)
}
