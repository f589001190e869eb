package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/config"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	reportKeyPrefix     = "inventory:report"
	reportGenerationKey = "inventory:generation:report"
	reportScanBatchSize = 100
)

// ReportCache stores aggregated inventory reports per filter and generation.
// Any stock mutation must call InvalidateAll, which moves to a new
// generation. A report computed under an older generation is never served.
type ReportCache interface {
	Generation(ctx context.Context) (int64, error)
	GetReport(ctx context.Context, generation int64, filter domain.ReportFilter) (*domain.InventoryReport, bool, error)
	SetReport(ctx context.Context, generation int64, filter domain.ReportFilter, report *domain.InventoryReport) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, reportGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation failed: %w", err)
	}
	return gen, nil
}

func (c *redisReportCache) GetReport(ctx context.Context, generation int64, filter domain.ReportFilter) (*domain.InventoryReport, bool, error) {
	payload, err := c.client.Get(ctx, buildReportKey(generation, filter)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.InventoryReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode inventory report cache: %w", err)
	}
	return &report, true, nil
}

func (c *redisReportCache) SetReport(ctx context.Context, generation int64, filter domain.ReportFilter, report *domain.InventoryReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode inventory report cache: %w", err)
	}

	if err := c.client.Set(ctx, buildReportKey(generation, filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	if err := c.client.Incr(ctx, reportGenerationKey).Err(); err != nil {
		return fmt.Errorf("redis incr generation failed: %w", err)
	}
	return deleteKeysWithPrefix(ctx, c.client, reportKeyPrefix+":", reportScanBatchSize)
}

func (n *noopReportCache) Generation(ctx context.Context) (int64, error) {
	return 0, nil
}

func (n *noopReportCache) GetReport(ctx context.Context, generation int64, filter domain.ReportFilter) (*domain.InventoryReport, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetReport(ctx context.Context, generation int64, filter domain.ReportFilter, report *domain.InventoryReport) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildReportKey(generation int64, filter domain.ReportFilter) string {
	return fmt.Sprintf("%s:%d:%s", reportKeyPrefix, generation, reportFilterHash(filter))
}

func reportFilterHash(filter domain.ReportFilter) string {
	parts := []string{}

	if filter.EducationLevel != "" {
		parts = append(parts, "education_level="+strings.TrimSpace(string(filter.EducationLevel)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		parts = append(parts, "search="+strings.ToLower(s))
	}
	if filter.StartDate != "" {
		parts = append(parts, "start_date="+strings.TrimSpace(filter.StartDate))
	}
	if filter.EndDate != "" {
		parts = append(parts, "end_date="+strings.TrimSpace(filter.EndDate))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
