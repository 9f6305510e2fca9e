package model

import (
	"errors"
	"math"

	"github.com/rlecomte1929/rolec/internal/common/validation"
)

// ErrUnscoreable marks a catalog item whose data cannot be scored. Scorers wrap it with %w.
var ErrUnscoreable = errors.New("unscoreable item")

// Criteria is a category's parsed, fully defaulted criteria value.
type Criteria interface{}

// Plugin scores catalog items of one category.
type Plugin interface {
	Key() string
	Title() string
	// Dataset names the catalog collection holding this category's items.
	Dataset() string
	Schema() *validation.JSONSchema
	// ParseCriteria validates payload and returns the typed criteria, or an INVALID_CRITERIA error.
	ParseCriteria(payload map[string]interface{}) (Criteria, error)
	// Score is pure in its inputs. Malformed items yield an error wrapping ErrUnscoreable.
	Score(criteria Criteria, item CatalogItem) (*ScoreResult, error)
}

const (
	// NeutralScore is assigned to every item when raw scores do not differ.
	NeutralScore = 85.0
	flatEpsilon  = 1e-9
)

// Normalize rescales raw scores to [0,100] with min-max scaling.
func Normalize(raw []float64) []float64 {
	if len(raw) == 0 {
		return []float64{}
	}
	lo, hi := raw[0], raw[0]
	for _, s := range raw[1:] {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}

	out := make([]float64, len(raw))
	if hi-lo < flatEpsilon {
		for i := range out {
			out[i] = NeutralScore
		}
		return out
	}
	for i, s := range raw {
		out[i] = 100 * (s - lo) / (hi - lo)
	}
	return out
}

// TierFor maps a normalized score to its tier.
func TierFor(score float64) Tier {
	switch {
	case score >= 85:
		return TierBestMatch
	case score >= 70:
		return TierGoodFit
	case score >= 50:
		return TierOK
	default:
		return TierWeak
	}
}

// Clamp bounds a sub-score to [0,100].
func Clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// RoundScore rounds to one decimal place.
func RoundScore(v float64) float64 {
	return math.Round(v*10) / 10
}
