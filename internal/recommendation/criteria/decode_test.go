package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rlecomte1929/rolec/internal/common/errors"
	"github.com/rlecomte1929/rolec/internal/common/validation"
)

type testBudget struct {
	Min *float64 `mapstructure:"min"`
	Max *float64 `mapstructure:"max"`
}

type testCommute struct {
	Mode    string `mapstructure:"mode"`
	Minutes int    `mapstructure:"minutes"`
}

type testCriteria struct {
	City     string      `mapstructure:"city"`
	Bedrooms int         `mapstructure:"bedrooms"`
	Tags     []string    `mapstructure:"tags"`
	Commute  testCommute `mapstructure:"commute"`
	Budget   *testBudget `mapstructure:"budget"`
}

func testProperties() map[string]*validation.Property {
	return map[string]*validation.Property{
		"city":     validation.String("Singapore"),
		"bedrooms": validation.BoundedInteger(2, 0, 10),
		"tags":     validation.StringList("quiet"),
		"commute": validation.Object(map[string]*validation.Property{
			"mode":    validation.Enum("transit", "transit", "car", "bike"),
			"minutes": validation.NonNegativeInteger(45),
		}),
		"budget": validation.Nullable(validation.Object(map[string]*validation.Property{
			"min": validation.AtLeast("number", 0),
			"max": validation.AtLeast("number", 0),
		})),
	}
}

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()
	d, err := NewDecoder("test", validation.NewObjectSchema("TestCriteria", testProperties()), map[string]string{
		"budget.min_val": "budget.min",
		"budget.max_val": "budget.max",
	})
	require.NoError(t, err)
	return d
}

func floatPtr(f float64) *float64 { return &f }

// ==========================
// ApplyDefaults
// ==========================

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]interface{}
		want  map[string]interface{}
	}{
		{
			name:  "empty input gets every non-nullable default",
			input: map[string]interface{}{},
			want: map[string]interface{}{
				"city":     "Singapore",
				"bedrooms": 2,
				"tags":     []string{"quiet"},
				"commute":  map[string]interface{}{"mode": "transit", "minutes": 45},
			},
		},
		{
			name:  "present nested object is filled",
			input: map[string]interface{}{"commute": map[string]interface{}{"mode": "car"}},
			want: map[string]interface{}{
				"city":     "Singapore",
				"bedrooms": 2,
				"tags":     []string{"quiet"},
				"commute":  map[string]interface{}{"mode": "car", "minutes": 45},
			},
		},
		{
			name:  "explicit values are kept",
			input: map[string]interface{}{"city": "Lisbon", "bedrooms": 4, "tags": []interface{}{}},
			want: map[string]interface{}{
				"city":     "Lisbon",
				"bedrooms": 4,
				"tags":     []interface{}{},
				"commute":  map[string]interface{}{"mode": "transit", "minutes": 45},
			},
		},
		{
			name:  "explicit null nullable object stays null",
			input: map[string]interface{}{"budget": nil},
			want: map[string]interface{}{
				"city":     "Singapore",
				"bedrooms": 2,
				"tags":     []string{"quiet"},
				"commute":  map[string]interface{}{"mode": "transit", "minutes": 45},
				"budget":   nil,
			},
		},
		{
			name:  "present nullable object keeps only its own keys",
			input: map[string]interface{}{"budget": map[string]interface{}{"max": 900.0}},
			want: map[string]interface{}{
				"city":     "Singapore",
				"bedrooms": 2,
				"tags":     []string{"quiet"},
				"commute":  map[string]interface{}{"mode": "transit", "minutes": 45},
				"budget":   map[string]interface{}{"max": 900.0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ApplyDefaults(testProperties(), tt.input)
			assert.Equal(t, tt.want, tt.input)
		})
	}
}

func TestApplyDefaults_CopiesDefaultValues(t *testing.T) {
	props := testProperties()
	input := map[string]interface{}{}
	ApplyDefaults(props, input)

	input["tags"].([]string)[0] = "loud"
	assert.Equal(t, []string{"quiet"}, props["tags"].Default)
}

// ==========================
// Aliases
// ==========================

func TestDecoder_ApplyAliases(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]interface{}
		want  map[string]interface{}
	}{
		{
			name:  "alias is renamed",
			input: map[string]interface{}{"budget": map[string]interface{}{"min_val": 1000.0, "max_val": 2000.0}},
			want:  map[string]interface{}{"budget": map[string]interface{}{"min": 1000.0, "max": 2000.0}},
		},
		{
			name:  "published key wins over alias",
			input: map[string]interface{}{"budget": map[string]interface{}{"min": 1.0, "min_val": 2.0}},
			want:  map[string]interface{}{"budget": map[string]interface{}{"min": 1.0}},
		},
		{
			name:  "missing parent is ignored",
			input: map[string]interface{}{"city": "Paris"},
			want:  map[string]interface{}{"city": "Paris"},
		},
		{
			name:  "non-object parent is ignored",
			input: map[string]interface{}{"budget": nil},
			want:  map[string]interface{}{"budget": nil},
		},
	}

	d := newTestDecoder(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d.applyAliases(tt.input)
			assert.Equal(t, tt.want, tt.input)
		})
	}
}

// ==========================
// Decode
// ==========================

func TestDecoder_Decode(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
		want    testCriteria
	}{
		{
			name:    "nil payload decodes defaults",
			payload: nil,
			want: testCriteria{
				City:     "Singapore",
				Bedrooms: 2,
				Tags:     []string{"quiet"},
				Commute:  testCommute{Mode: "transit", Minutes: 45},
			},
		},
		{
			name: "aliases and nested defaults",
			payload: map[string]interface{}{
				"bedrooms": 3,
				"commute":  map[string]interface{}{"minutes": 20},
				"budget":   map[string]interface{}{"min_val": 3000.0},
			},
			want: testCriteria{
				City:     "Singapore",
				Bedrooms: 3,
				Tags:     []string{"quiet"},
				Commute:  testCommute{Mode: "transit", Minutes: 20},
				Budget:   &testBudget{Min: floatPtr(3000)},
			},
		},
		{
			name:    "null budget",
			payload: map[string]interface{}{"budget": nil, "tags": []interface{}{"garden"}},
			want: testCriteria{
				City:     "Singapore",
				Bedrooms: 2,
				Tags:     []string{"garden"},
				Commute:  testCommute{Mode: "transit", Minutes: 45},
			},
		},
	}

	d := newTestDecoder(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got testCriteria
			require.NoError(t, d.Decode(tt.payload, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecoder_Decode_DoesNotMutatePayload(t *testing.T) {
	payload := map[string]interface{}{"budget": map[string]interface{}{"max_val": 10.0}}
	var got testCriteria
	require.NoError(t, newTestDecoder(t).Decode(payload, &got))

	assert.Equal(t, map[string]interface{}{"budget": map[string]interface{}{"max_val": 10.0}}, payload)
	require.NotNil(t, got.Budget)
	assert.Equal(t, floatPtr(10), got.Budget.Max)
}

func TestDecoder_Decode_Violations(t *testing.T) {
	tests := []struct {
		name      string
		payload   map[string]interface{}
		wantField string
		wantCode  string
	}{
		{name: "wrong type", payload: map[string]interface{}{"bedrooms": "two"}, wantField: "bedrooms", wantCode: "INVALID_TYPE"},
		{name: "above maximum", payload: map[string]interface{}{"bedrooms": 11}, wantField: "bedrooms", wantCode: "MAXIMUM_VIOLATION"},
		{name: "nested minimum", payload: map[string]interface{}{"commute": map[string]interface{}{"minutes": -1}}, wantField: "commute.minutes", wantCode: "MINIMUM_VIOLATION"},
		{name: "nested enum", payload: map[string]interface{}{"commute": map[string]interface{}{"mode": "boat"}}, wantField: "commute.mode", wantCode: "INVALID_ENUM_VALUE"},
		{name: "aliased value is validated", payload: map[string]interface{}{"budget": map[string]interface{}{"min_val": -5.0}}, wantField: "budget.min", wantCode: "MINIMUM_VIOLATION"},
	}

	d := newTestDecoder(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got testCriteria
			err := d.Decode(tt.payload, &got)
			require.Error(t, err)

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeInvalidCriteria, stdErr.Code)
			violations, ok := stdErr.Metadata["fields"].([]apperrors.FieldViolation)
			require.True(t, ok)
			codes := map[string]string{}
			for _, v := range violations {
				codes[v.Field] = v.Code
			}
			assert.Equal(t, tt.wantCode, codes[tt.wantField], "violations: %+v", violations)
		})
	}
}

func TestDescribe(t *testing.T) {
	err := apperrors.NewInvalidCriteriaError("test", []apperrors.FieldViolation{{Field: "bedrooms", Message: "too many"}})
	assert.Equal(t, "INVALID_CRITERIA: bedrooms: too many", Describe(err))
}
