// Package criteria turns untyped request payloads into typed, fully defaulted criteria values.
//
// A Decoder validates the payload against the category's JSON Schema, fills every absent field
// from the schema defaults, then decodes the result into the category's struct through mapstructure
// tags. Aliases let callers send the internal field name where the schema publishes another one.
package criteria

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	apperrors "github.com/rlecomte1929/rolec/internal/common/errors"
	"github.com/rlecomte1929/rolec/internal/common/validation"
)

// Decoder decodes payloads for one category.
type Decoder struct {
	category  string
	validator *validation.Validator
	// aliases maps an accepted dotted path to the published dotted path.
	aliases map[string]string
}

// NewDecoder compiles schema. aliases may be nil.
func NewDecoder(category string, schema *validation.JSONSchema, aliases map[string]string) (*Decoder, error) {
	v, err := validation.NewValidator(schema)
	if err != nil {
		return nil, err
	}
	return &Decoder{category: category, validator: v, aliases: aliases}, nil
}

// MustDecoder is NewDecoder for static schemas.
func MustDecoder(category string, schema *validation.JSONSchema, aliases map[string]string) *Decoder {
	d, err := NewDecoder(category, schema, aliases)
	if err != nil {
		panic(err)
	}
	return d
}

// Schema returns the published schema document.
func (d *Decoder) Schema() *validation.JSONSchema {
	return d.validator.Schema()
}

// Decode validates payload and decodes it into out, which must be a pointer to a zero struct.
// Failures are INVALID_CRITERIA StandardErrors listing every violated field.
func (d *Decoder) Decode(payload map[string]interface{}, out interface{}) error {
	input := deepCopy(payload)
	if input == nil {
		input = map[string]interface{}{}
	}
	d.applyAliases(input)

	result, err := d.validator.ValidateInput(input)
	if err != nil {
		return apperrors.NewInvalidCriteriaError(d.category, []apperrors.FieldViolation{
			{Field: "(root)", Message: err.Error(), Code: "SCHEMA_ERROR"},
		})
	}
	if !result.Valid {
		violations := make([]apperrors.FieldViolation, 0, len(result.Errors))
		for _, e := range result.Errors {
			violations = append(violations, apperrors.FieldViolation{Field: e.Field, Message: e.Message, Code: e.Code})
		}
		return apperrors.NewInvalidCriteriaError(d.category, violations)
	}

	ApplyDefaults(d.validator.Schema().Properties, input)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: false,
		ZeroFields:       true,
	})
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := decoder.Decode(input); err != nil {
		return apperrors.NewInvalidCriteriaError(d.category, []apperrors.FieldViolation{
			{Field: "(root)", Message: err.Error(), Code: "DECODE_FAILED"},
		})
	}
	return nil
}

// applyAliases renames accepted keys to their published names unless the published key is set.
func (d *Decoder) applyAliases(input map[string]interface{}) {
	for from, to := range d.aliases {
		fromParent, fromKey := lookupParent(input, from)
		toParent, toKey := lookupParent(input, to)
		if fromParent == nil || toParent == nil {
			continue
		}
		v, ok := fromParent[fromKey]
		if !ok {
			continue
		}
		delete(fromParent, fromKey)
		if _, exists := toParent[toKey]; !exists {
			toParent[toKey] = v
		}
	}
}

func lookupParent(root map[string]interface{}, path string) (map[string]interface{}, string) {
	parts := strings.Split(path, ".")
	current := root
	for _, p := range parts[:len(parts)-1] {
		next, ok := current[p].(map[string]interface{})
		if !ok {
			return nil, ""
		}
		current = next
	}
	return current, parts[len(parts)-1]
}

// ApplyDefaults fills absent keys from property defaults. Non-nullable objects without a default
// are created so their own defaults apply; present objects are filled recursively.
func ApplyDefaults(props map[string]*validation.Property, input map[string]interface{}) {
	for name, prop := range props {
		v, present := input[name]
		switch {
		case !present && prop.Default != nil:
			input[name] = deepCopyValue(prop.Default)
		case !present && isObject(prop) && !isNullable(prop) && len(prop.Properties) > 0:
			nested := map[string]interface{}{}
			ApplyDefaults(prop.Properties, nested)
			input[name] = nested
		case present && len(prop.Properties) > 0:
			if nested, ok := v.(map[string]interface{}); ok {
				ApplyDefaults(prop.Properties, nested)
			}
		}
	}
}

func isObject(p *validation.Property) bool {
	switch t := p.Type.(type) {
	case string:
		return t == "object"
	case []string:
		for _, s := range t {
			if s == "object" {
				return true
			}
		}
	}
	return false
}

func isNullable(p *validation.Property) bool {
	if t, ok := p.Type.([]string); ok {
		for _, s := range t {
			if s == "null" {
				return true
			}
		}
	}
	return false
}

func deepCopy(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return deepCopy(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case []int:
		return append([]int(nil), t...)
	case map[string]int:
		out := make(map[string]int, len(t))
		for k, n := range t {
			out[k] = n
		}
		return out
	case map[string]float64:
		out := make(map[string]float64, len(t))
		for k, n := range t {
			out[k] = n
		}
		return out
	default:
		return v
	}
}

// Describe renders violations as one line for logs.
func Describe(err error) string {
	stdErr, ok := apperrors.AsStandardError(err)
	if !ok {
		return err.Error()
	}
	return fmt.Sprintf("%s: %s", stdErr.Code, stdErr.Details)
}
