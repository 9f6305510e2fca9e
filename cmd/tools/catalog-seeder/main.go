// cmd/tools/catalog-seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rlecomte1929/rolec/internal/common/config"
	"github.com/rlecomte1929/rolec/internal/common/logger"
	"github.com/rlecomte1929/rolec/internal/recommendation/catalog"
	"github.com/rlecomte1929/rolec/internal/recommendation/registry"
)

func main() {
	target := flag.String("target", "", "Catalog backend to seed: postgres or elasticsearch (defaults to recommendations.catalog_source)")
	dir := flag.String("dir", "", "Directory of <category>.json datasets (defaults to the bundled datasets)")
	only := flag.String("categories", "", "Comma-separated categories to seed (defaults to every registered category)")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall timeout")
	flag.Parse()

	log := logger.NewStructured("info", "console")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	if *target != "" {
		cfg.Recommendations.CatalogSource = *target
	}
	cfg.Recommendations.CacheEnabled = false

	backend, err := catalog.Open(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open catalog backend: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()
	if backend.Writer == nil {
		fmt.Fprintf(os.Stderr, "catalog source %q is read-only\n", backend.Kind)
		os.Exit(1)
	}

	categories := registry.New(registry.Options{}).Keys()
	if *only != "" {
		categories = splitList(*only)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if s, ok := backend.Writer.(schemaEnsurer); ok {
		if err := s.EnsureSchema(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "ensure schema: %v\n", err)
			os.Exit(1)
		}
	}

	total, err := seed(ctx, catalog.NewFileSource(*dir), backend.Writer, categories, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d items across %d categories into %s.\n", total, len(categories), backend.Kind)
}

type schemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// seed copies every category's dataset from src into dst and returns the number of items written.
func seed(ctx context.Context, src catalog.Source, dst catalog.Writer, categories []string, log logger.Logger) (int, error) {
	total := 0
	for _, category := range categories {
		items, err := src.LoadDataset(ctx, category)
		if err != nil {
			return total, fmt.Errorf("load %s: %w", category, err)
		}
		if len(items) == 0 {
			log.Warn("no dataset to seed", map[string]interface{}{"category": category})
			continue
		}
		if err := dst.StoreDataset(ctx, category, items); err != nil {
			return total, fmt.Errorf("store %s: %w", category, err)
		}
		log.Info("seeded dataset", map[string]interface{}{"category": category, "items": len(items)})
		total += len(items)
	}
	return total, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
