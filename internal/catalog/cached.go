// internal/catalog/cached.go
package catalog

import (
	"context"
	"encoding/json"
	"time"

	"advocacy-workers/internal/common/logger"
	"advocacy-workers/internal/common/metrics"
	"advocacy-workers/internal/eligibility"

	"github.com/redis/go-redis/v9"
)

const DefaultCacheKey = "benefits:catalog:v1"

// Cached keeps a JSON snapshot of another source in Redis. Cache failures
// are logged and fall through to the wrapped source.
type Cached struct {
	next   Source
	redis  *redis.Client
	key    string
	ttl    time.Duration
	logger logger.Logger
}

func NewCached(next Source, rdb *redis.Client, ttl time.Duration, log logger.Logger) *Cached {
	return &Cached{
		next:   next,
		redis:  rdb,
		key:    DefaultCacheKey,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-cache"}),
	}
}

func (c *Cached) Programs(ctx context.Context) ([]eligibility.Program, error) {
	if val, err := c.redis.Get(ctx, c.key).Bytes(); err == nil {
		var programs []eligibility.Program
		if err := json.Unmarshal(val, &programs); err == nil && len(programs) > 0 {
			metrics.CatalogCacheHits.Inc()
			return programs, nil
		}
		c.logger.Warn("discarding unreadable catalog snapshot", map[string]interface{}{"key": c.key})
	} else if err != redis.Nil {
		c.logger.Warn("catalog cache read failed", map[string]interface{}{"error": err.Error()})
	}
	metrics.CatalogCacheMisses.Inc()

	programs, err := c.next.Programs(ctx)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(programs)
	if err := c.redis.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return programs, nil
}

// Invalidate drops the cached snapshot.
func (c *Cached) Invalidate(ctx context.Context) error {
	return c.redis.Del(ctx, c.key).Err()
}
