// Package importer migrates legacy item exports into the normalized variant
// table.
package importer

import (
	"context"
	"fmt"
	"sync"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/ledger"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/metrics"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Summary counts what one import run wrote.
type Summary struct {
	Files    int
	Items    int
	Variants int
	// Strategies counts items per variant resolution strategy.
	Strategies map[ledger.ResolveStrategy]int
	Warnings   []string
}

type Importer struct {
	repo        repository.InventoryRepository
	metrics     *metrics.Metrics
	concurrency int
}

func New(repo repository.InventoryRepository, m *metrics.Metrics, concurrency int) *Importer {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Importer{repo: repo, metrics: m, concurrency: concurrency}
}

// Run imports every file of src. Files are processed concurrently; the first
// failing file cancels the rest. Items already written stay written, and a
// rerun upserts them again by legacy id.
func (im *Importer) Run(ctx context.Context, src Source) (*Summary, error) {
	names, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list import files: %w", err)
	}

	var (
		mu      sync.Mutex
		summary = &Summary{Strategies: map[ledger.ResolveStrategy]int{}}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.concurrency)

	for _, name := range names {
		g.Go(func() error {
			fs, err := im.importFile(gctx, src, name)
			if err != nil {
				return fmt.Errorf("import %s: %w", name, err)
			}

			mu.Lock()
			defer mu.Unlock()
			summary.Files++
			summary.Items += fs.Items
			summary.Variants += fs.Variants
			for k, v := range fs.Strategies {
				summary.Strategies[k] += v
			}
			summary.Warnings = append(summary.Warnings, fs.Warnings...)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	log.Info().
		Int("files", summary.Files).
		Int("items", summary.Items).
		Int("variants", summary.Variants).
		Int("warnings", len(summary.Warnings)).
		Msg("import: completed")
	return summary, nil
}

func (im *Importer) importFile(ctx context.Context, src Source, name string) (*Summary, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	items, warnings, err := ParseLegacyCSV(rc)
	if err != nil {
		return nil, err
	}

	fs := &Summary{Strategies: map[ledger.ResolveStrategy]int{}}
	for _, w := range warnings {
		fs.Warnings = append(fs.Warnings, name+": "+w)
		im.warn("parse", name, w)
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := ledger.ResolveVariants(item)
		for _, w := range res.Warnings {
			fs.Warnings = append(fs.Warnings, name+": "+w)
			im.warn("variant_encoding", name, w)
		}
		if w, ok := stockMismatch(item, res); ok {
			fs.Warnings = append(fs.Warnings, name+": "+w)
			im.warn("legacy_stock_mismatch", name, w)
		}

		if _, err := im.repo.UpsertLegacyItem(ctx, item, res.Variants); err != nil {
			return nil, err
		}
		fs.Items++
		fs.Variants += len(res.Variants)
		fs.Strategies[res.Strategy]++
	}

	log.Debug().Str("file", name).Int("items", fs.Items).Msg("import: file done")
	return fs, nil
}

// stockMismatch compares the legacy raw stock column with the derived ending
// inventory. Variants that inherit item counters share one item-level ending.
func stockMismatch(item domain.LegacyItem, res ledger.Resolution) (string, bool) {
	if item.Stock == nil {
		return "", false
	}

	derived := ledger.EndingInventory(item.Counters)
	if res.Strategy == ledger.StrategyStructured {
		derived = 0
		for _, v := range res.Variants {
			derived += ledger.EndingInventory(v.Counters)
		}
	}

	if derived == *item.Stock {
		return "", false
	}
	return fmt.Sprintf("item %s: legacy stock %d differs from derived ending inventory %d; derived value kept",
		item.LegacyID, *item.Stock, derived), true
}

func (im *Importer) warn(kind, file, msg string) {
	im.metrics.DataQualityWarning(kind)
	log.Warn().Str("kind", kind).Str("file", file).Msg(msg)
}
