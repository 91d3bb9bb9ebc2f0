package reports

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kopnusantara/koperasi_backend/config"
	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/kopnusantara/koperasi_backend/utils"
)

func reportCacheEnabled() bool {
	return config.BoolFromEnv("ENABLE_REPORT_CACHE")
}

func reportCacheTTL() time.Duration {
	// Env: REPORT_CACHE_TTL_SECONDS (default 120s)
	return time.Duration(config.IntFromEnv("REPORT_CACHE_TTL_SECONDS", 120)) * time.Second
}

func reportSlowMs() int64 {
	// Env: REPORT_SLOW_MS (default 500ms)
	return int64(config.IntFromEnv("REPORT_SLOW_MS", 500))
}

func logSlowAggregate(ctx context.Context, reportId int, started time.Time) {
	d := time.Since(started)
	if d.Milliseconds() < reportSlowMs() {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	log.Printf("slow_report_aggregate report_id=%d ms=%d correlation_id=%s", reportId, d.Milliseconds(), cid)
}

// AggregateCached is Aggregate behind the Redis report cache. The cache key
// includes the report's updated_at so edits invalidate naturally; with the
// cache disabled (or Redis down) it degrades to a plain Aggregate call.
func AggregateCached(ctx context.Context, report *models.FinancialReport) (*AggregationResult, error) {
	if report == nil {
		return Aggregate(report)
	}
	if !reportCacheEnabled() {
		return Aggregate(report)
	}

	key := fmt.Sprintf("report_agg:%d:%d", report.ID, report.UpdatedAt.Unix())

	var cached AggregationResult
	if hit, err := config.GetRedisObject(key, &cached); err == nil && hit {
		return &cached, nil
	}

	started := time.Now()
	agg, err := Aggregate(report)
	if err != nil {
		return nil, err
	}
	logSlowAggregate(ctx, report.ID, started)

	if err := config.SetRedisObject(key, agg, reportCacheTTL()); err != nil {
		// Cache write failures are not fatal to the export.
		log.Printf("report_agg cache write failed report_id=%d: %v", report.ID, err)
	}
	return agg, nil
}
