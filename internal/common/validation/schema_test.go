package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *JSONSchema {
	return NewObjectSchema("Test", map[string]*Property{
		"count":   BoundedInteger(1, 0, 5),
		"kind":    Enum("a", "a", "b"),
		"ratio":   Nullable(Bounded("number", 0, 1)),
		"tags":    StringList(),
		"weights": MapOf(&Property{Type: "number"}),
	})
}

func TestValidator_ValidateInput(t *testing.T) {
	tests := []struct {
		name      string
		input     map[string]interface{}
		wantValid bool
		wantField string
		wantCode  string
	}{
		{name: "nil input", input: nil, wantValid: true},
		{name: "unknown keys allowed", input: map[string]interface{}{"extra": true}, wantValid: true},
		{name: "nullable accepts null", input: map[string]interface{}{"ratio": nil}, wantValid: true},
		{name: "wrong type", input: map[string]interface{}{"count": "x"}, wantField: "count", wantCode: "INVALID_TYPE"},
		{name: "below minimum", input: map[string]interface{}{"count": -1}, wantField: "count", wantCode: "MINIMUM_VIOLATION"},
		{name: "above maximum", input: map[string]interface{}{"ratio": 1.5}, wantField: "ratio", wantCode: "MAXIMUM_VIOLATION"},
		{name: "enum", input: map[string]interface{}{"kind": "c"}, wantField: "kind", wantCode: "INVALID_ENUM_VALUE"},
		{name: "map values", input: map[string]interface{}{"weights": map[string]interface{}{"x": "heavy"}}, wantField: "weights.x", wantCode: "INVALID_TYPE"},
	}

	v := MustValidator(testSchema())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.ValidateInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid)
			if tt.wantValid {
				assert.Empty(t, res.Errors)
				return
			}
			require.True(t, res.HasErrors(tt.wantField), "errors: %+v", res.Errors)
			assert.Equal(t, tt.wantCode, res.GetErrorsForField(tt.wantField)[0].Code)
		})
	}
}

func TestNullable(t *testing.T) {
	assert.Equal(t, []string{"integer", "null"}, Nullable(Integer(0)).Type)

	already := &Property{Type: []string{"string", "null"}}
	assert.Equal(t, []string{"string", "null"}, Nullable(already).Type)
}

func TestGetErrorsForField_IncludesNested(t *testing.T) {
	vr := &ValidationResult{Errors: []ValidationError{
		{Field: "budget.min", Message: "too low"},
		{Field: "budget", Message: "bad"},
		{Field: "budgets", Message: "other"},
	}}
	assert.Len(t, vr.GetErrorsForField("budget"), 2)
	assert.Equal(t, []string{"budget.min: too low", "budget: bad", "budgets: other"}, vr.GetErrorMessages())
}

func TestSchema_RoundTripsThroughJSON(t *testing.T) {
	data, err := json.Marshal(testSchema())
	require.NoError(t, err)

	parsed, err := GetSchemaFromJSON(string(data))
	require.NoError(t, err)
	assert.Equal(t, "Test", parsed.Title)
	assert.True(t, parsed.AdditionalProperties)
	require.Contains(t, parsed.Properties, "ratio")
	assert.Equal(t, []interface{}{"number", "null"}, parsed.Properties["ratio"].Type)

	_, err = NewValidator(parsed)
	require.NoError(t, err)
}
