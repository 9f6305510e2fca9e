// internal/recommendation/catalog/cached.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rlecomte1929/rolec/internal/common/logger"
	"github.com/rlecomte1929/rolec/internal/recommendation/model"
)

const cacheKeyPrefix = "catalog:"

// CachedSource is a read-through Redis cache in front of another Source. Redis failures are
// logged and fall through to the wrapped source.
type CachedSource struct {
	next   Source
	rdb    redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(next Source, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedSource {
	return &CachedSource{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-cache"}),
	}
}

func cacheKey(category string) string {
	return cacheKeyPrefix + category
}

func (s *CachedSource) LoadDataset(ctx context.Context, category string) ([]model.CatalogItem, error) {
	if err := checkCategory(category); err != nil {
		return nil, err
	}
	key := cacheKey(category)

	cached, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		items, decodeErr := decodeItems(cached)
		if decodeErr == nil {
			return items, nil
		}
		s.logger.Warn("discarding unreadable cache entry", map[string]interface{}{
			"key":   key,
			"error": decodeErr,
		})
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("cache read failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}

	items, err := s.next.LoadDataset(ctx, category)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Warn("cache encode failed", map[string]interface{}{"key": key, "error": err})
		return items, nil
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
	}
	return items, nil
}

// Invalidate drops the cached dataset for category.
func (s *CachedSource) Invalidate(ctx context.Context, category string) error {
	return s.rdb.Del(ctx, cacheKey(category)).Err()
}
