// internal/recommendation/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rlecomte1929/rolec/internal/recommendation/model"
)

// PostgresSource keeps each item as a jsonb row keyed by category and ordered by position:
//
//	CREATE TABLE catalog_items (
//	    category   text    NOT NULL,
//	    position   integer NOT NULL,
//	    item_id    text    NOT NULL,
//	    attributes jsonb   NOT NULL,
//	    PRIMARY KEY (category, item_id)
//	);
type PostgresSource struct {
	db    *sql.DB
	table string
}

func NewPostgresSource(db *sql.DB, table string) (*PostgresSource, error) {
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid catalog table name %q", table)
	}
	return &PostgresSource{db: db, table: table}, nil
}

func (s *PostgresSource) LoadDataset(ctx context.Context, category string) ([]model.CatalogItem, error) {
	if err := checkCategory(category); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT item_id, attributes FROM %s WHERE category = $1 ORDER BY position, item_id`, s.table)
	rows, err := s.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("query dataset %s: %w", category, err)
	}
	defer rows.Close()

	items := []model.CatalogItem{}
	for rows.Next() {
		var (
			itemID string
			attrs  []byte
		)
		if err := rows.Scan(&itemID, &attrs); err != nil {
			return nil, fmt.Errorf("scan dataset %s: %w", category, err)
		}

		item := model.CatalogItem{}
		if err := json.Unmarshal(attrs, &item); err != nil {
			return nil, fmt.Errorf("dataset %s item %s: %w: %v", category, itemID, ErrMalformedData, err)
		}
		if !item.Has("item_id") {
			item["item_id"] = itemID
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dataset %s: %w", category, err)
	}
	return items, nil
}

// EnsureSchema creates the catalog table when missing.
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	category   text    NOT NULL,
	position   integer NOT NULL,
	item_id    text    NOT NULL,
	attributes jsonb   NOT NULL,
	PRIMARY KEY (category, item_id)
)`, s.table)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create catalog table: %w", err)
	}
	return nil
}

// StoreDataset replaces every row of category in one transaction.
func (s *PostgresSource) StoreDataset(ctx context.Context, category string, items []model.CatalogItem) (err error) {
	if err := checkCategory(category); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE category = $1`, s.table), category); err != nil {
		return fmt.Errorf("clear dataset %s: %w", category, err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (category, position, item_id, attributes) VALUES ($1, $2, $3, $4)`, s.table)
	for pos, item := range items {
		attrs, mErr := json.Marshal(item)
		if mErr != nil {
			err = fmt.Errorf("encode item %d: %w", pos, mErr)
			return err
		}
		itemID := item.ID()
		if itemID == "" {
			itemID = fmt.Sprintf("%s-%d", category, pos)
		}
		if _, err = tx.ExecContext(ctx, insert, category, pos, itemID, attrs); err != nil {
			return fmt.Errorf("insert item %s: %w", itemID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
