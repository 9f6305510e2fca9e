// Package model holds the shared recommendation types: the scorer contract, catalog items,
// score results and the response envelope.
package model

import (
	"github.com/rlecomte1929/rolec/internal/common/validation"
)

// Tier is a coarse bucket derived from the normalized score.
type Tier string

const (
	TierBestMatch Tier = "best_match"
	TierGoodFit   Tier = "good_fit"
	TierOK        Tier = "ok"
	TierWeak      Tier = "weak"
)

// AvailabilityLevel is the catalog's coarse supply signal.
type AvailabilityLevel string

const (
	AvailabilityHigh   AvailabilityLevel = "high"
	AvailabilityMedium AvailabilityLevel = "medium"
	AvailabilityLow    AvailabilityLevel = "low"
	AvailabilityScarce AvailabilityLevel = "scarce"
)

// Limited reports whether the level warrants a scarcity warning.
func (a AvailabilityLevel) Limited() bool {
	return a == AvailabilityLow || a == AvailabilityScarce
}

// Valid reports whether a is one of the four known levels.
func (a AvailabilityLevel) Valid() bool {
	switch a {
	case AvailabilityHigh, AvailabilityMedium, AvailabilityLow, AvailabilityScarce:
		return true
	}
	return false
}

// ScoreResult is a scorer's verdict on one catalog item.
type ScoreResult struct {
	RawScore  float64                `json:"score_raw"`
	Breakdown map[string]float64     `json:"breakdown"`
	Summary   string                 `json:"summary"`
	Rationale string                 `json:"rationale"`
	Pros      []string               `json:"pros"`
	Cons      []string               `json:"cons"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// RankedItem is a ScoreResult placed in a ranking.
type RankedItem struct {
	ItemID    string                 `json:"item_id"`
	Name      string                 `json:"name"`
	Score     float64                `json:"score"`
	Tier      Tier                   `json:"tier"`
	Summary   string                 `json:"summary"`
	Rationale string                 `json:"rationale"`
	Breakdown map[string]float64     `json:"breakdown"`
	Pros      []string               `json:"pros"`
	Cons      []string               `json:"cons"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// RecommendationResponse is the envelope returned for one ranking request.
type RecommendationResponse struct {
	RequestID       string                 `json:"request_id"`
	Category        string                 `json:"category"`
	GeneratedAt     string                 `json:"generated_at"`
	TopN            int                    `json:"top_n"`
	CriteriaEcho    map[string]interface{} `json:"criteria_echo"`
	Recommendations []RankedItem           `json:"recommendations"`
}

// CategoryInfo describes a registered category for discovery.
type CategoryInfo struct {
	Key    string                 `json:"key"`
	Title  string                 `json:"title"`
	Schema *validation.JSONSchema `json:"schema"`
}
