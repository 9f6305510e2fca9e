// Package catalog loads the read-only item datasets that recommendations are ranked from.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/rlecomte1929/rolec/internal/recommendation/model"
)

// Source returns a category's items in catalog order. A category without a dataset yields an
// empty slice, not an error.
type Source interface {
	LoadDataset(ctx context.Context, category string) ([]model.CatalogItem, error)
}

// Writer replaces a category's dataset. Implemented by the database-backed sources.
type Writer interface {
	StoreDataset(ctx context.Context, category string, items []model.CatalogItem) error
}

var (
	ErrInvalidCategory = errors.New("invalid catalog category")
	ErrMalformedData   = errors.New("malformed catalog data")

	categoryPattern   = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
)

func checkCategory(category string) error {
	if !categoryPattern.MatchString(category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	return nil
}

// decodeItems parses a JSON array of objects.
func decodeItems(data []byte) ([]model.CatalogItem, error) {
	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	items := make([]model.CatalogItem, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			return nil, fmt.Errorf("%w: null item", ErrMalformedData)
		}
		items = append(items, model.CatalogItem(r))
	}
	return items, nil
}
