// internal/cache/cache.go
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"cloudtask/internal/common/config"
	"cloudtask/internal/common/database"
	"cloudtask/internal/common/logger"
	"cloudtask/internal/query"
)

// SearchCache stores serialized search results in redis, keyed by a digest
// of the filter's canonical JSON. Cache failures are logged and swallowed;
// the cache never decides whether a search succeeds.
type SearchCache struct {
	redis  *database.RedisClient
	prefix string
	ttl    time.Duration
	log    logger.Logger
}

func NewSearchCache(redis *database.RedisClient, cfg config.CacheConfig, log logger.Logger) *SearchCache {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &SearchCache{
		redis:  redis,
		prefix: cfg.KeyPrefix,
		ttl:    time.Duration(cfg.TTLMinutes) * time.Minute,
		log:    log,
	}
}

// Key derives the cache key for a filter. Filters that parse to the same
// structure share a key regardless of how the query text was spelled.
func (c *SearchCache) Key(f *query.Filter) string {
	doc, err := json.Marshal(f)
	if err != nil {
		doc = []byte(f.String())
	}
	sum := sha256.Sum256(doc)
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get returns the cached value for a filter, or false on miss or error.
func (c *SearchCache) Get(ctx context.Context, f *query.Filter, out interface{}) bool {
	raw, err := c.redis.Get(ctx, c.Key(f))
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		c.log.Warn("discarding undecodable cache entry", map[string]interface{}{
			"key":   c.Key(f),
			"error": err.Error(),
		})
		return false
	}
	return true
}

// Set stores a search result. Errors are logged, never returned.
func (c *SearchCache) Set(ctx context.Context, f *query.Filter, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("failed to encode cache entry", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := c.redis.Set(ctx, c.Key(f), data, c.ttl); err != nil {
		c.log.Warn("failed to write cache entry", map[string]interface{}{"error": err.Error()})
	}
}

// Clear drops every entry under the cache prefix and reports how many were
// removed.
func (c *SearchCache) Clear(ctx context.Context) (int, error) {
	return c.redis.DeleteByPrefix(ctx, c.prefix)
}
