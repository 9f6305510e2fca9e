// internal/workers/recommendation/describe-categories/models.go
package describecategories

import "github.com/rlecomte1929/rolec/internal/recommendation/model"

type Input struct {
	Category string `json:"category,omitempty"`
}

// Output carries either every category or the one requested. The single result is published as
// categoryInfo so it does not overwrite the process's category variable.
type Output struct {
	Categories   []model.CategoryInfo `json:"categories,omitempty"`
	CategoryInfo *model.CategoryInfo  `json:"categoryInfo,omitempty"`
}
