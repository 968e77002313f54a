// internal/insight/executor/cache.go
package executor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"insightbot/internal/common/metrics"
	"insightbot/internal/models"
)

// cacheKey derives a stable Redis key from the SQL text. Templates are
// closed strings, so identical questions hit identical keys.
func cacheKey(sqlText string) string {
	sum := sha256.Sum256([]byte(sqlText))
	return "insightbot:result:" + hex.EncodeToString(sum[:])
}

// lookupCache returns the cached table for the template, or nil on
// miss or any cache failure. Failures only log; the query still runs.
func (e *Executor) lookupCache(ctx context.Context, tmpl models.QueryTemplate) *models.ResultTable {
	if e.cache == nil || e.config.CacheTTL <= 0 {
		return nil
	}

	payload, err := e.cache.Get(ctx, cacheKey(tmpl.SQL))
	if err != nil {
		metrics.CacheHits.WithLabelValues("miss").Inc()
		return nil
	}

	var table models.ResultTable
	if err := json.Unmarshal([]byte(payload), &table); err != nil {
		e.logger.Warn("dropping undecodable cache entry", map[string]interface{}{
			"templateId": tmpl.ID,
			"error":      err.Error(),
		})
		metrics.CacheHits.WithLabelValues("error").Inc()
		return nil
	}

	metrics.CacheHits.WithLabelValues("hit").Inc()
	return &table
}

// storeCache writes the result table best-effort; a failed write never
// fails the question.
func (e *Executor) storeCache(ctx context.Context, tmpl models.QueryTemplate, table *models.ResultTable) {
	if e.cache == nil || e.config.CacheTTL <= 0 {
		return
	}

	payload, err := json.Marshal(table)
	if err != nil {
		e.logger.Warn("failed to encode result for cache", map[string]interface{}{
			"templateId": tmpl.ID,
			"error":      err.Error(),
		})
		return
	}

	if err := e.cache.Set(ctx, cacheKey(tmpl.SQL), string(payload), e.config.CacheTTL); err != nil {
		e.logger.Warn("failed to cache result", map[string]interface{}{
			"templateId": tmpl.ID,
			"error":      err.Error(),
		})
	}
}
