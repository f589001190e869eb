package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
)

// ClassifyRows fills Stock and Status on every row from its counters.
func (c Classifier) ClassifyRows(rows []domain.InventoryReportRow) {
	for i := range rows {
		rows[i].Stock, rows[i].Status = c.ClassifyCounters(rows[i].Counters, rows[i].ReorderPoint)
	}
}

// Aggregate filters classified rows by date range and education level, groups
// them by (name, education level) and rolls up each group's status.
func Aggregate(rows []domain.InventoryReportRow, level domain.EducationLevel, dates DateRange) domain.InventoryReport {
	rows = FilterByDate(rows, func(r domain.InventoryReportRow) time.Time { return r.CreatedAt }, dates)

	index := make(map[domain.GroupKey]int)
	var groups []domain.Group
	for _, row := range rows {
		if level != "" && row.EducationLevel != level {
			continue
		}

		key := domain.GroupKey{Name: row.Name, EducationLevel: row.EducationLevel}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, domain.Group{GroupKey: key})
		}
		groups[i].Variants = append(groups[i].Variants, row)
	}

	report := domain.InventoryReport{
		Groups:     groups,
		OutOfStock: []domain.GroupKey{},
	}
	if report.Groups == nil {
		report.Groups = []domain.Group{}
	}

	for i := range report.Groups {
		g := &report.Groups[i]
		sort.SliceStable(g.Variants, func(a, b int) bool {
			return NormalizeSize(g.Variants[a].Size) < NormalizeSize(g.Variants[b].Size)
		})

		statuses := make([]domain.StockStatus, len(g.Variants))
		for j, v := range g.Variants {
			statuses[j] = v.Status
		}
		g.Status = MostSevere(statuses...)
	}

	sort.SliceStable(report.Groups, func(a, b int) bool {
		ga, gb := report.Groups[a], report.Groups[b]
		na, nb := strings.ToLower(ga.Name), strings.ToLower(gb.Name)
		if na != nb {
			return na < nb
		}
		return ga.EducationLevel.Order() < gb.EducationLevel.Order()
	})

	for _, g := range report.Groups {
		report.TotalGroups++
		switch g.Status {
		case domain.StatusOutOfStock:
			report.OutOfStockGroups++
			report.OutOfStock = append(report.OutOfStock, g.GroupKey)
		case domain.StatusCritical:
			report.CriticalGroups++
		case domain.StatusAtReorderPoint:
			report.AtReorderPointGroups++
		default:
			report.InStockGroups++
		}
	}

	return report
}
