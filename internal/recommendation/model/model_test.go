package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      []float64
		expected []float64
	}{
		{name: "empty", raw: nil, expected: []float64{}},
		{name: "single item is neutral", raw: []float64{42}, expected: []float64{85}},
		{name: "all equal is neutral", raw: []float64{60, 60, 60}, expected: []float64{85, 85, 85}},
		{name: "min-max scaling", raw: []float64{10, 20, 30}, expected: []float64{0, 50, 100}},
		{name: "negative raw scores", raw: []float64{-10, 10}, expected: []float64{0, 100}},
		{name: "near-equal within epsilon", raw: []float64{50, 50 + 1e-12}, expected: []float64{85, 85}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			require.Len(t, got, len(tt.expected))
			for i := range got {
				assert.InDelta(t, tt.expected[i], got[i], 1e-9)
			}
		})
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		tier  Tier
	}{
		{100, TierBestMatch},
		{85, TierBestMatch},
		{84.99, TierGoodFit},
		{70, TierGoodFit},
		{69.9, TierOK},
		{50, TierOK},
		{49.9, TierWeak},
		{0, TierWeak},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tier, TierFor(tt.score), "score %v", tt.score)
	}
}

func TestRoundScoreAndClamp(t *testing.T) {
	assert.Equal(t, 66.7, RoundScore(66.66666))
	assert.Equal(t, 85.0, RoundScore(85))
	assert.Equal(t, 0.0, Clamp(-5))
	assert.Equal(t, 100.0, Clamp(130))
	assert.Equal(t, 42.5, Clamp(42.5))
}

func TestAvailabilityLevel(t *testing.T) {
	assert.True(t, AvailabilityLow.Limited())
	assert.True(t, AvailabilityScarce.Limited())
	assert.False(t, AvailabilityMedium.Limited())
	assert.True(t, AvailabilityHigh.Valid())
	assert.False(t, AvailabilityLevel("plenty").Valid())
}

func TestCatalogItem_Accessors(t *testing.T) {
	item := CatalogItem{
		"item_id":  "la-1",
		"name":     "Tiong Bahru",
		"rating":   "4.5",
		"rent":     4500,
		"bad":      "n/a",
		"nothing":  nil,
		"langs":    []interface{}{"en", "zh"},
		"range":    []interface{}{70.0, 95},
		"tags":     map[string]interface{}{"safety": 8, "green": "7"},
		"flag":     []interface{}{},
		"flagged":  []string{"x"},
		"zero":     0,
		"enabled":  true,
		"level":    "scarce",
		"fraction": 4.9,
	}

	assert.Equal(t, "la-1", item.ID())
	assert.Equal(t, "Tiong Bahru", item.Name())

	rating, err := item.Float("rating", 4.0)
	require.NoError(t, err)
	assert.Equal(t, 4.5, rating)

	def, err := item.Float("missing", 4.0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, def)

	def, err = item.Float("nothing", 3.0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, def)

	_, err = item.Float("bad", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnscoreable))

	_, err = item.RequiredFloat("missing")
	assert.True(t, errors.Is(err, ErrUnscoreable))

	rent, err := item.RequiredFloat("rent")
	require.NoError(t, err)
	assert.Equal(t, 4500.0, rent)

	n, err := item.Int("fraction", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	langs, err := item.Strings("langs")
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "zh"}, langs)

	rng, err := item.Floats("range")
	require.NoError(t, err)
	assert.Equal(t, []float64{70, 95}, rng)

	_, err = item.Floats("rating")
	assert.True(t, errors.Is(err, ErrUnscoreable))

	tags, err := item.FloatMap("tags")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"safety": 8, "green": 7}, tags)

	level, err := item.Level("level", AvailabilityMedium)
	require.NoError(t, err)
	assert.Equal(t, AvailabilityScarce, level)

	assert.False(t, item.Truthy("flag"))
	assert.True(t, item.Truthy("flagged"))
	assert.False(t, item.Truthy("zero"))
	assert.True(t, item.Truthy("enabled"))
	assert.False(t, item.Truthy("missing"))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "4500", FormatNumber(4500))
	assert.Equal(t, "4.5", FormatNumber(4.5))
	assert.Equal(t, "[en, zh]", FormatList([]string{"en", "zh"}))
}
