// internal/recommendation/catalog/backend.go
package catalog

import (
	"context"
	"fmt"

	"github.com/rlecomte1929/rolec/internal/common/config"
	"github.com/rlecomte1929/rolec/internal/common/database"
	apperrors "github.com/rlecomte1929/rolec/internal/common/errors"
	"github.com/rlecomte1929/rolec/internal/common/logger"
)

// Backend is the configured catalog source together with the connections it owns.
type Backend struct {
	Kind   string
	Source Source
	// Writer is nil for the file source.
	Writer Writer

	checks  map[string]func(context.Context) error
	closers []func() error
}

// Open builds the source selected by recommendations.catalog_source, wrapping it in the Redis
// read-through cache when enabled. Connections are opened lazily; call Ping to verify them.
func Open(cfg *config.Config, log logger.Logger) (*Backend, error) {
	rc := cfg.Recommendations
	b := &Backend{Kind: rc.CatalogSource, checks: map[string]func(context.Context) error{}}

	switch rc.CatalogSource {
	case config.CatalogSourceFile:
		b.Source = NewFileSource(rc.DatasetDir)

	case config.CatalogSourcePostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, fmt.Errorf("open postgres catalog: %w", err)
		}
		src, err := NewPostgresSource(pg.DB, rc.Table)
		if err != nil {
			pg.Close()
			return nil, fmt.Errorf("open postgres catalog: %w", err)
		}
		b.Source, b.Writer = src, src
		b.checks["postgres"] = pg.Ping
		b.closers = append(b.closers, pg.Close)

	case config.CatalogSourceElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
		if err != nil {
			return nil, fmt.Errorf("open elasticsearch catalog: %w", err)
		}
		src := NewElasticsearchSource(es.Client, rc.IndexPrefix)
		b.Source, b.Writer = src, src
		b.checks["elasticsearch"] = es.Ping

	default:
		return nil, apperrors.NewCatalogNotConfiguredError(rc.CatalogSource)
	}

	if rc.CacheEnabled {
		rdb := database.NewRedis(cfg.Database.Redis)
		b.Source = NewCachedSource(b.Source, rdb.Client, rc.CacheTTLDuration(), log)
		b.checks["redis"] = rdb.Ping
		b.closers = append(b.closers, rdb.Close)
	}

	log.Info("catalog source configured", map[string]interface{}{
		"source": b.Kind,
		"cached": rc.CacheEnabled,
	})
	return b, nil
}

// Ping checks every connection the backend holds.
func (b *Backend) Ping(ctx context.Context) error {
	for name, check := range b.checks {
		if err := check(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (b *Backend) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
