// internal/workers/recommendation/rank-recommendations/models.go
package rankrecommendations

import "github.com/rlecomte1929/rolec/internal/recommendation/model"

type Input struct {
	Category string                 `json:"category"`
	Criteria map[string]interface{} `json:"criteria"`
	TopN     *int                   `json:"topN,omitempty"` // nil means Config.DefaultTopN
}

type Output struct {
	Recommendation *model.RecommendationResponse `json:"recommendation"`
	ResultCount    int                           `json:"resultCount"`
}
