package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

var exportHeader = []string{
	"name", "education_level", "group_status", "size",
	"beginning_inventory", "purchases", "released", "returns",
	"stock", "reorder_point", "status", "unit_price",
}

// ExportService writes aggregated reports to object storage as CSV.
type ExportService struct {
	inventory *InventoryService
	store     storage.ObjectStorage
	now       func() time.Time
}

func NewExportService(inventory *InventoryService, store storage.ObjectStorage) *ExportService {
	return &ExportService{inventory: inventory, store: store, now: time.Now}
}

// ExportReport renders the report for filter and uploads it under key. An
// empty key gets a timestamped name. It returns the key written.
func (s *ExportService) ExportReport(ctx context.Context, filter domain.ReportFilter, key string) (string, error) {
	report, err := s.inventory.GetReport(ctx, filter)
	if err != nil {
		return "", err
	}

	payload, err := renderReportCSV(report)
	if err != nil {
		return "", err
	}

	key = strings.TrimSpace(key)
	if key == "" {
		key = fmt.Sprintf("reports/inventory-%s.csv", s.now().Format("20060102-150405"))
	}

	if err := s.store.PutObject(ctx, key, bytes.NewReader(payload), int64(len(payload)), "text/csv"); err != nil {
		return "", err
	}

	log.Info().
		Str("key", key).
		Int("groups", report.TotalGroups).
		Int("bytes", len(payload)).
		Msg("export: inventory report uploaded")
	return key, nil
}

func renderReportCSV(report *domain.InventoryReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, g := range report.Groups {
		for _, row := range g.Variants {
			price := ""
			if row.UnitPrice.Valid {
				price = row.UnitPrice.Decimal.StringFixed(2)
			}
			record := []string{
				row.Name,
				string(row.EducationLevel),
				g.Status.Label(),
				row.Size,
				strconv.Itoa(row.BeginningInventory),
				strconv.Itoa(row.Purchases),
				strconv.Itoa(row.Released),
				strconv.Itoa(row.Returns),
				strconv.Itoa(row.Stock),
				strconv.Itoa(row.ReorderPoint),
				row.Status.Label(),
				price,
			}
			if err := w.Write(record); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
