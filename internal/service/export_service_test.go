package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	objects      map[string][]byte
	contentTypes map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (f *fakeStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (f *fakeStorage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.objects[key])), nil
}

func (f *fakeStorage) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	f.contentTypes[key] = contentType
	return nil
}

func TestExportService_ExportReport(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.PutItem(
		domain.Item{
			Name: "PE Uniform", EducationLevel: domain.LevelElementary, Active: true,
			UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString("150")),
		},
		domain.SizeVariant{Size: "M", Counters: domain.Counters{BeginningInventory: 20, Released: 5}, ReorderPoint: 10},
		domain.SizeVariant{Size: "L", ReorderPoint: 10},
	)

	store := newFakeStorage()
	exporter := NewExportService(svc, store)
	exporter.now = func() time.Time { return time.Date(2024, 8, 1, 9, 30, 0, 0, time.UTC) }

	key, err := exporter.ExportReport(context.Background(), domain.ReportFilter{}, "")
	require.NoError(t, err)
	assert.Equal(t, "reports/inventory-20240801-093000.csv", key)
	assert.Equal(t, "text/csv", store.contentTypes[key])

	records, err := csv.NewReader(bytes.NewReader(store.objects[key])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, exportHeader, records[0])

	// variants are ordered by size label, and the group takes the worst status
	assert.Equal(t, []string{
		"PE Uniform", "Elementary", "Out of Stock", "L", "0", "0", "0", "0", "0", "10", "Out of Stock", "150.00",
	}, records[1])
	assert.Equal(t, "M", records[2][3])
	assert.Equal(t, "15", records[2][8])
	assert.Equal(t, "At Reorder Point", records[2][10])
}

func TestExportService_InvalidFilterWritesNothing(t *testing.T) {
	svc, _, _ := newTestService(t)
	store := newFakeStorage()

	_, err := NewExportService(svc, store).ExportReport(context.Background(),
		domain.ReportFilter{StartDate: "2024-13-01", EndDate: "2024-12-01"}, "reports/x.csv")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, store.objects)
}
