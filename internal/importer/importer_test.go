package importer

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/ledger"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/metrics"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyHeader = "id,name,education_level,size,size_variations,beginning_inventory,purchases,released,returns,stock,reorder_point,unit_price,active,created_at\n"

type mapSource map[string]string

func (m mapSource) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, nil
}

func (m mapSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	body, ok := m[name]
	if !ok {
		return nil, errors.New("no such file")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func TestParseLegacyCSV(t *testing.T) {
	body := legacyHeader +
		`1,PE Shirt,Elementary,"S,M",,10,0,2,0,8,5,120.50,1,2024-06-01` + "\n" +
		`2,Blouse,unknown level,M,,1,0,0,0,,5,,1,` + "\n" +
		`3,Necktie,Senior High School,,,4,x,0,0,,2,abc,0,2024-06-01 10:00:00` + "\n"

	items, warnings, err := ParseLegacyCSV(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, items, 2)

	shirt := items[0]
	assert.Equal(t, "1", shirt.LegacyID)
	assert.Equal(t, domain.LevelElementary, shirt.EducationLevel)
	assert.Equal(t, "S,M", shirt.Size)
	require.NotNil(t, shirt.Stock)
	assert.Equal(t, 8, *shirt.Stock)
	assert.Equal(t, "120.5", shirt.UnitPrice.Decimal.String())
	assert.True(t, shirt.Active)
	assert.Equal(t, 2024, shirt.CreatedAt.Year())

	tie := items[1]
	assert.Equal(t, domain.LevelSeniorHigh, tie.EducationLevel)
	assert.Nil(t, tie.Stock)
	assert.Zero(t, tie.Purchases)
	assert.False(t, tie.UnitPrice.Valid)
	assert.False(t, tie.Active)

	assert.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], "line 3")
}

func TestParseLegacyCSV_MissingRequiredColumn(t *testing.T) {
	_, _, err := ParseLegacyCSV(strings.NewReader("id,name\n1,Shirt\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "education_level")
}

func TestImporter_Run(t *testing.T) {
	repo := memory.NewInventoryRepository()
	src := mapSource{
		"a.csv": legacyHeader +
			`A1,PE Shirt,Elementary,"S, M ,s",,10,0,2,0,8,5,,1,` + "\n" +
			`A2,Skirt,Junior High,,"[{""size"":""S"",""beginning_inventory"":3},{""size"":""M"",""beginning_inventory"":4,""reorder_point"":9}]",0,0,0,0,9,2,,1,` + "\n",
		"b.csv": legacyHeader +
			`B1,Socks,Preschool,,{not json,1,1,0,0,2,1,,1,` + "\n",
	}

	summary, err := New(repo, metrics.New(), 2).Run(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 3, summary.Items)
	assert.Equal(t, 5, summary.Variants)
	assert.Equal(t, 1, summary.Strategies[ledger.StrategyDelimited])
	assert.Equal(t, 1, summary.Strategies[ledger.StrategyStructured])
	assert.Equal(t, 1, summary.Strategies[ledger.StrategyImplicit])

	// skirt: legacy stock 9 vs derived 7; socks: malformed size_variations
	require.Len(t, summary.Warnings, 2)

	rows, err := repo.ListReportRows(context.Background(), domain.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 5)

	bySize := map[string]domain.InventoryReportRow{}
	for _, r := range rows {
		bySize[r.Name+"/"+r.Size] = r
	}
	assert.Equal(t, 8, ledger.EndingInventory(bySize["PE Shirt/S"].Counters))
	assert.Equal(t, 9, bySize["Skirt/M"].ReorderPoint)
	assert.Equal(t, 2, bySize["Skirt/S"].ReorderPoint)
	assert.Equal(t, 2, ledger.EndingInventory(bySize["Socks/N/A"].Counters))

	// a rerun upserts in place
	_, err = New(repo, nil, 1).Run(context.Background(), src)
	require.NoError(t, err)
	rows, err = repo.ListReportRows(context.Background(), domain.ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestImporter_RunFailsOnBrokenFile(t *testing.T) {
	repo := memory.NewInventoryRepository()
	src := mapSource{"bad.csv": "id,name\n1,Shirt\n"}

	_, err := New(repo, nil, 1).Run(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.csv")
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte(legacyHeader), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.CSV"), []byte(legacyHeader), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	names, err := FileSource{Path: dir}.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.CSV"), filepath.Join(dir, "b.csv")}, names)

	names, err = FileSource{Path: filepath.Join(dir, "b.csv")}.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, names, 1)
}
