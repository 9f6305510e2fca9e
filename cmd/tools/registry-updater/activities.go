// cmd/tools/registry-updater/activities.go
package main

import (
	"sort"

	"github.com/rlecomte1929/rolec/internal/common/config"
	apperrors "github.com/rlecomte1929/rolec/internal/common/errors"
	recregistry "github.com/rlecomte1929/rolec/internal/recommendation/registry"
	"github.com/rlecomte1929/rolec/pkg/registry"

	dc "github.com/rlecomte1929/rolec/internal/workers/recommendation/describe-categories"
	rr "github.com/rlecomte1929/rolec/internal/workers/recommendation/rank-recommendations"
)

const activityCategory = "recommendation"

func taskTypes() []string {
	return []string{rr.TaskType, dc.TaskType}
}

// buildActivities describes both workers. workerConfig supplies timeouts and retries.
func buildActivities(version string, workerConfig func(*config.Config, string) config.WorkerConfig) []registry.Activity {
	empty := &config.Config{}
	categories := recregistry.New(recregistry.Options{}).Keys()
	enum := make([]interface{}, len(categories))
	for i, c := range categories {
		enum[i] = c
	}

	rank := workerConfig(empty, rr.TaskType)
	describe := workerConfig(empty, dc.TaskType)

	return []registry.Activity{
		{
			ID:                   rr.TaskType,
			DisplayName:          "Rank Recommendations",
			Description:          "Scores a category's catalog against the supplied criteria and returns the top matches.",
			Category:             activityCategory,
			Version:              version,
			TaskType:             rr.TaskType,
			ImplementationStatus: "completed",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"category"},
				"properties": map[string]interface{}{
					"category": map[string]interface{}{"type": "string", "enum": enum},
					"criteria": map[string]interface{}{"type": "object"},
					"topN":     map[string]interface{}{"type": "integer", "minimum": 0},
				},
			},
			OutputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"recommendation": map[string]interface{}{"type": "object"},
					"resultCount":    map[string]interface{}{"type": "integer"},
				},
			},
			ErrorCodes: errorCodes(
				apperrors.ErrCodeUnknownCategory,
				apperrors.ErrCodeInvalidCriteria,
				apperrors.ErrCodeInputValidationFailed,
				apperrors.ErrCodeCatalogLoadFailed,
				apperrors.ErrCodeCatalogTimeout,
				apperrors.ErrCodeInternal,
			),
			Timeout: config.GetDuration(rank.Timeout).String(),
			Retries: rank.MaxRetries,
			Tags:    []string{"ranking", "catalog"},
		},
		{
			ID:                   dc.TaskType,
			DisplayName:          "Describe Categories",
			Description:          "Lists the recommendation categories and their criteria schemas.",
			Category:             activityCategory,
			Version:              version,
			TaskType:             dc.TaskType,
			ImplementationStatus: "completed",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"category": map[string]interface{}{"type": "string", "enum": enum},
				},
			},
			OutputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"categories":   map[string]interface{}{"type": "array"},
					"categoryInfo": map[string]interface{}{"type": "object"},
				},
			},
			ErrorCodes: errorCodes(apperrors.ErrCodeUnknownCategory, apperrors.ErrCodeInputValidationFailed),
			Timeout:    config.GetDuration(describe.Timeout).String(),
			Retries:    describe.MaxRetries,
			Tags:       []string{"discovery"},
		},
	}
}

func errorCodes(codes ...apperrors.ErrorCode) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, apperrors.BPMNErrorMapping[c])
	}
	sort.Strings(out)
	return out
}
