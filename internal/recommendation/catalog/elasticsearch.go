// internal/recommendation/catalog/elasticsearch.go
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/rlecomte1929/rolec/internal/recommendation/model"
)

const (
	positionField = "position"
	// maxDatasetSize bounds a single search; catalogs are a few hundred items per category.
	maxDatasetSize = 1000
)

// ElasticsearchSource keeps one index per category, named <prefix><category>. Documents are
// the item attributes plus a position field that restores catalog order.
type ElasticsearchSource struct {
	client *elasticsearch.Client
	prefix string
}

func NewElasticsearchSource(client *elasticsearch.Client, indexPrefix string) *ElasticsearchSource {
	return &ElasticsearchSource{client: client, prefix: indexPrefix}
}

func (s *ElasticsearchSource) index(category string) string {
	return s.prefix + category
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string                 `json:"_id"`
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchSource) LoadDataset(ctx context.Context, category string) ([]model.CatalogItem, error) {
	if err := checkCategory(category); err != nil {
		return nil, err
	}

	body, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort":  []interface{}{map[string]interface{}{positionField: map[string]interface{}{"order": "asc"}}},
	})
	size := maxDatasetSize
	req := esapi.SearchRequest{
		Index: []string{s.index(category)},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search dataset %s: %w", category, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return []model.CatalogItem{}, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("search dataset %s: %s", category, readError(res.Body, res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("dataset %s: %w: %v", category, ErrMalformedData, err)
	}

	items := make([]model.CatalogItem, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		item := model.CatalogItem(hit.Source)
		if item == nil {
			item = model.CatalogItem{}
		}
		delete(item, positionField)
		if !item.Has("item_id") {
			item["item_id"] = hit.ID
		}
		items = append(items, item)
	}
	return items, nil
}

// StoreDataset recreates the category index and bulk-indexes items with their positions.
func (s *ElasticsearchSource) StoreDataset(ctx context.Context, category string, items []model.CatalogItem) error {
	if err := checkCategory(category); err != nil {
		return err
	}
	index := s.index(category)

	del, err := s.client.Indices.Delete(
		[]string{index},
		s.client.Indices.Delete.WithContext(ctx),
		s.client.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return fmt.Errorf("delete index %s: %w", index, err)
	}
	del.Body.Close()

	if len(items) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for pos, item := range items {
		itemID := item.ID()
		if itemID == "" {
			itemID = fmt.Sprintf("%s-%d", category, pos)
		}
		doc := make(map[string]interface{}, len(item)+1)
		for k, v := range item {
			doc[k] = v
		}
		doc[positionField] = pos

		if err := enc.Encode(map[string]interface{}{"index": map[string]interface{}{"_index": index, "_id": itemID}}); err != nil {
			return fmt.Errorf("encode bulk action: %w", err)
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode item %s: %w", itemID, err)
		}
	}

	res, err := s.client.Bulk(
		&buf,
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("bulk index %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk index %s: %s", index, readError(res.Body, res.Status()))
	}

	var bulk struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulk); err != nil {
		return fmt.Errorf("bulk index %s: decode response: %w", index, err)
	}
	if bulk.Errors {
		return fmt.Errorf("bulk index %s: one or more items were rejected", index)
	}
	return nil
}

func readError(body io.Reader, status string) string {
	data, _ := io.ReadAll(io.LimitReader(body, 512))
	if msg := strings.TrimSpace(string(data)); msg != "" {
		return status + ": " + msg
	}
	return status
}
