// Package plugins implements one scorer per recommendation category.
package plugins

import (
	"fmt"
	"strings"

	"github.com/rlecomte1929/rolec/internal/common/validation"
	"github.com/rlecomte1929/rolec/internal/recommendation/criteria"
	"github.com/rlecomte1929/rolec/internal/recommendation/model"
)

// base carries the identity shared by every scorer.
type base struct {
	key     string
	title   string
	decoder *criteria.Decoder
}

func newBase(key, title string, schema *validation.JSONSchema, aliases map[string]string) base {
	return base{key: key, title: title, decoder: criteria.MustDecoder(key, schema, aliases)}
}

func (b *base) Key() string                    { return b.key }
func (b *base) Title() string                  { return b.title }
func (b *base) Dataset() string                { return b.key }
func (b *base) Schema() *validation.JSONSchema { return b.decoder.Schema() }

func criteriaAs[T any](key string, c model.Criteria) (T, error) {
	typed, ok := c.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s: unexpected criteria type %T", key, c)
	}
	return typed, nil
}

// ==========================
// Scoring helpers
// ==========================

// resolveWeights overlays caller weights on defaults. Weights are not renormalized.
func resolveWeights(defaults, override map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func weightsSchema(defaults map[string]float64) *validation.Property {
	def := make(map[string]interface{}, len(defaults))
	for k, v := range defaults {
		def[k] = v
	}
	return validation.Nullable(validation.MapOf(&validation.Property{Type: "number"})).
		WithDefault(def).
		Describe("Per sub-score weights; missing keys keep their default and weights are not renormalized.")
}

type levelTable map[model.AvailabilityLevel]float64

var fourLevels = levelTable{
	model.AvailabilityHigh:   100,
	model.AvailabilityMedium: 75,
	model.AvailabilityLow:    50,
	model.AvailabilityScarce: 25,
}

func (t levelTable) score(level model.AvailabilityLevel, fallback float64) float64 {
	if s, ok := t[level]; ok {
		return s
	}
	return fallback
}

// missing counts the distinct entries of need absent from have.
func missing(need, have []string) int {
	present := make(map[string]struct{}, len(have))
	for _, h := range have {
		present[h] = struct{}{}
	}
	seen := make(map[string]struct{}, len(need))
	n := 0
	for _, x := range need {
		if _, dup := seen[x]; dup {
			continue
		}
		seen[x] = struct{}{}
		if _, ok := present[x]; !ok {
			n++
		}
	}
	return n
}

func orDefault(values []string, def ...string) []string {
	if len(values) == 0 {
		return def
	}
	return values
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// rawOr returns the stored attribute, or def when absent or null.
func rawOr(item model.CatalogItem, key string, def interface{}) interface{} {
	if item.Has(key) {
		return item.Raw(key)
	}
	return def
}

// rating reads the 0-5 star rating and its 0-100 score.
func rating(item model.CatalogItem) (float64, float64, error) {
	r, err := item.Float("rating", 4.0)
	if err != nil {
		return 0, 0, err
	}
	return r, model.Clamp(r * 20), nil
}

// Horizon is a parsed "next available in N days" estimate. Known is false when the catalog
// value is present but not a number.
type Horizon struct {
	Days  int
	Known bool
}

func parseHorizon(item model.CatalogItem, def int) Horizon {
	days, err := item.Int("next_available_days", def)
	if err != nil {
		return Horizon{}
	}
	return Horizon{Days: days, Known: true}
}

func (h Horizon) phrase(prefix string) string {
	if !h.Known {
		return "next availability unknown"
	}
	return fmt.Sprintf("%s ~%d days", prefix, h.Days)
}

func joinSentences(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func fmtNum(f float64) string {
	return model.FormatNumber(f)
}
