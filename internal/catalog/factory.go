package catalog

import (
	"database/sql"
	"fmt"

	"advocacy-workers/internal/common/config"
	"advocacy-workers/internal/common/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
)

// Backends are the connections a configured Source may need. Unused ones may be nil.
type Backends struct {
	DB            *sql.DB
	Elasticsearch *elasticsearch.Client
	Redis         *redis.Client
}

// FromConfig builds the Source named by cfg.Source, wrapped in a Redis
// snapshot when a cache TTL is configured.
func FromConfig(cfg config.CatalogConfig, b Backends, log logger.Logger) (Source, error) {
	var src Source
	switch cfg.Source {
	case "", KindReference:
		src = Reference()
	case KindYAML:
		src = NewYAMLFile(cfg.Path)
	case KindPostgres:
		if b.DB == nil {
			return nil, fmt.Errorf("catalog source %q needs a database", cfg.Source)
		}
		src = NewPostgres(b.DB)
	case KindElasticsearch:
		if b.Elasticsearch == nil {
			return nil, fmt.Errorf("catalog source %q needs an elasticsearch client", cfg.Source)
		}
		src = NewElasticsearch(b.Elasticsearch, cfg.Index, cfg.MaxSize)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}

	// Static catalogs are already in memory.
	if cfg.CacheTTL > 0 && b.Redis != nil && cfg.Source != KindReference && cfg.Source != "" {
		src = NewCached(src, b.Redis, cfg.CacheDuration(), log)
	}
	return src, nil
}
