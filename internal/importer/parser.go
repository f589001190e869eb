package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

var requiredColumns = []string{"id", "name", "education_level"}

var createdAtLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// ParseLegacyCSV reads a legacy item export. Header names are matched
// case-insensitively. Rows that cannot be used are skipped with a warning;
// only a broken file or a missing required column is an error.
func ParseLegacyCSV(r io.Reader) ([]domain.LegacyItem, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colMap[col]; !ok {
			return nil, nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	var (
		items    []domain.LegacyItem
		warnings []string
		line     = 1
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		item, warn, ok := parseRow(record, colMap)
		for _, w := range warn {
			warnings = append(warnings, fmt.Sprintf("line %d: %s", line, w))
		}
		if ok {
			items = append(items, item)
		}
	}

	return items, warnings, nil
}

func parseRow(record []string, colMap map[string]int) (domain.LegacyItem, []string, bool) {
	var warnings []string

	getValue := func(col string) string {
		if idx, ok := colMap[col]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	getInt := func(col string) int {
		val := getValue(col)
		if val == "" {
			return 0
		}
		// exports sometimes carry "12.0"
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %q is not a number, using 0", col, val))
			return 0
		}
		return int(f)
	}

	item := domain.LegacyItem{
		LegacyID:       getValue("id"),
		Name:           getValue("name"),
		Size:           getValue("size"),
		SizeVariations: getValue("size_variations"),
		Counters: domain.Counters{
			BeginningInventory: getInt("beginning_inventory"),
			Purchases:          getInt("purchases"),
			Released:           getInt("released"),
			Returns:            getInt("returns"),
		},
		ReorderPoint: getInt("reorder_point"),
		Active:       true,
	}

	if item.LegacyID == "" || item.Name == "" {
		return item, append(warnings, "missing id or name, row skipped"), false
	}

	level, ok := domain.ParseEducationLevel(getValue("education_level"))
	if !ok {
		return item, append(warnings, fmt.Sprintf("unknown education level %q, row skipped", getValue("education_level"))), false
	}
	item.EducationLevel = level

	if raw := getValue("stock"); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			stock := int(f)
			item.Stock = &stock
		} else {
			warnings = append(warnings, fmt.Sprintf("stock: %q is not a number, ignored", raw))
		}
	}

	if raw := getValue("unit_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("unit_price: %q is not a decimal, ignored", raw))
		} else {
			item.UnitPrice = decimal.NewNullDecimal(price)
		}
	}

	if raw := strings.ToLower(getValue("active")); raw != "" {
		item.Active = raw == "1" || raw == "true" || raw == "yes"
	}

	if raw := getValue("created_at"); raw != "" {
		for _, layout := range createdAtLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				item.CreatedAt = t
				break
			}
		}
		if item.CreatedAt.IsZero() {
			warnings = append(warnings, fmt.Sprintf("created_at: %q not recognized, using import time", raw))
		}
	}

	return item, warnings, true
}
