// internal/common/validation/schema.go
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const draft07 = "http://json-schema.org/draft-07/schema#"

// JSONSchema is a root object schema. It is both the document published to callers and the
// input compiled by NewValidator.
type JSONSchema struct {
	Schema               string               `json:"$schema,omitempty"`
	Title                string               `json:"title,omitempty"`
	Description          string               `json:"description,omitempty"`
	Type                 string               `json:"type"`
	Properties           map[string]*Property `json:"properties"`
	Required             []string             `json:"required,omitempty"`
	AdditionalProperties bool                 `json:"additionalProperties"`
}

// Property describes one field. Type is a string or, for nullable fields, a []string.
type Property struct {
	Type                 interface{}          `json:"type,omitempty"`
	Description          string               `json:"description,omitempty"`
	Default              interface{}          `json:"default,omitempty"`
	Minimum              *float64             `json:"minimum,omitempty"`
	Maximum              *float64             `json:"maximum,omitempty"`
	Enum                 []interface{}        `json:"enum,omitempty"`
	Items                *Property            `json:"items,omitempty"`
	Properties           map[string]*Property `json:"properties,omitempty"`
	AdditionalProperties *Property            `json:"additionalProperties,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// NewObjectSchema returns a draft-07 object schema that tolerates unknown fields.
func NewObjectSchema(title string, props map[string]*Property) *JSONSchema {
	return &JSONSchema{
		Schema:               draft07,
		Title:                title,
		Type:                 "object",
		Properties:           props,
		AdditionalProperties: true,
	}
}

// ==========================
// Property builders
// ==========================

func String(def string) *Property {
	return &Property{Type: "string", Default: def}
}

func Enum(def string, values ...string) *Property {
	enum := make([]interface{}, 0, len(values))
	for _, v := range values {
		enum = append(enum, v)
	}
	return &Property{Type: "string", Default: def, Enum: enum}
}

func Boolean(def bool) *Property {
	return &Property{Type: "boolean", Default: def}
}

func Integer(def int) *Property {
	return &Property{Type: "integer", Default: def}
}

// BoundedInteger constrains the value to [min, max].
func BoundedInteger(def, min, max int) *Property {
	lo, hi := float64(min), float64(max)
	return &Property{Type: "integer", Default: def, Minimum: &lo, Maximum: &hi}
}

// NonNegativeInteger constrains the value to >= 0.
func NonNegativeInteger(def int) *Property {
	lo := 0.0
	return &Property{Type: "integer", Default: def, Minimum: &lo}
}

func Number(def float64) *Property {
	return &Property{Type: "number", Default: def}
}

// NonNegativeNumber constrains the value to >= 0.
func NonNegativeNumber(def float64) *Property {
	lo := 0.0
	return &Property{Type: "number", Default: def, Minimum: &lo}
}

// Bounded is a property of typ limited to [min, max], without a default.
func Bounded(typ string, min, max float64) *Property {
	return &Property{Type: typ, Minimum: &min, Maximum: &max}
}

// AtLeast is a property of typ limited to >= min, without a default.
func AtLeast(typ string, min float64) *Property {
	return &Property{Type: typ, Minimum: &min}
}

func StringList(def ...string) *Property {
	if def == nil {
		def = []string{}
	}
	return &Property{Type: "array", Default: def, Items: &Property{Type: "string"}}
}

func IntegerList(items *Property, def ...int) *Property {
	if items == nil {
		items = &Property{Type: "integer"}
	}
	if def == nil {
		def = []int{}
	}
	return &Property{Type: "array", Default: def, Items: items}
}

// Object is a nested object with known properties and unknown keys allowed.
func Object(props map[string]*Property) *Property {
	return &Property{Type: "object", Properties: props}
}

// MapOf is an object whose every value must satisfy values.
func MapOf(values *Property) *Property {
	return &Property{Type: "object", AdditionalProperties: values}
}

// Nullable allows an explicit null in place of p.
func Nullable(p *Property) *Property {
	if t, ok := p.Type.(string); ok {
		p.Type = []string{t, "null"}
	}
	return p
}

// Describe sets the description and returns p.
func (p *Property) Describe(desc string) *Property {
	p.Description = desc
	return p
}

// WithDefault replaces the default and returns p.
func (p *Property) WithDefault(def interface{}) *Property {
	p.Default = def
	return p
}

// ==========================
// Validation
// ==========================

// Validator is a compiled JSONSchema, safe for concurrent use.
type Validator struct {
	doc      *JSONSchema
	compiled *gojsonschema.Schema
}

// NewValidator compiles schema with gojsonschema.
func NewValidator(schema *JSONSchema) (*Validator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", schema.Title, err)
	}
	return &Validator{doc: schema, compiled: compiled}, nil
}

// MustValidator panics on an invalid schema; schemas are static program data.
func MustValidator(schema *JSONSchema) *Validator {
	v, err := NewValidator(schema)
	if err != nil {
		panic(err)
	}
	return v
}

// Schema returns the document the validator was compiled from.
func (v *Validator) Schema() *JSONSchema {
	return v.doc
}

// ValidateInput validates input and reports every violation with its dotted field path.
func (v *Validator) ValidateInput(input map[string]interface{}) (*ValidationResult, error) {
	if input == nil {
		input = map[string]interface{}{}
	}
	res, err := v.compiled.Validate(gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, fmt.Errorf("validate input: %w", err)
	}

	out := &ValidationResult{Valid: res.Valid()}
	for _, re := range res.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   re.Field(),
			Message: re.Description(),
			Code:    errorCode(re.Type()),
		})
	}
	return out, nil
}

func errorCode(t string) string {
	switch t {
	case "invalid_type":
		return "INVALID_TYPE"
	case "number_gte", "number_gt":
		return "MINIMUM_VIOLATION"
	case "number_lte", "number_lt":
		return "MAXIMUM_VIOLATION"
	case "enum":
		return "INVALID_ENUM_VALUE"
	case "required":
		return "REQUIRED_FIELD_MISSING"
	default:
		return strings.ToUpper(t)
	}
}

// GetSchemaFromJSON parses a schema document.
func GetSchemaFromJSON(schemaJSON string) (*JSONSchema, error) {
	var schema JSONSchema
	if err := json.Unmarshal([]byte(schemaJSON), &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

// GetErrorMessages returns "field: message" lines.
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for a specific field.
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for field and anything nested below it.
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
