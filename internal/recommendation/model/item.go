// internal/recommendation/model/item.go
package model

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// CatalogItem is an opaque catalog record. Accessors coerce loosely typed values and report
// anything uncoercible as ErrUnscoreable. Absent or null attributes take the caller's default.
type CatalogItem map[string]interface{}

// ID returns item_id as a string.
func (i CatalogItem) ID() string {
	return cast.ToString(i["item_id"])
}

// Name returns the display name.
func (i CatalogItem) Name() string {
	return cast.ToString(i["name"])
}

// Has reports whether key is present and non-null.
func (i CatalogItem) Has(key string) bool {
	v, ok := i[key]
	return ok && v != nil
}

// Raw returns the attribute as stored.
func (i CatalogItem) Raw(key string) interface{} {
	return i[key]
}

// Float coerces a numeric attribute.
func (i CatalogItem) Float(key string, def float64) (float64, error) {
	if !i.Has(key) {
		return def, nil
	}
	f, err := cast.ToFloat64E(i[key])
	if err != nil {
		return 0, unscoreable(key, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, unscoreable(key, fmt.Errorf("non-finite value %v", f))
	}
	return f, nil
}

// RequiredFloat is Float for attributes without a sensible default.
func (i CatalogItem) RequiredFloat(key string) (float64, error) {
	if !i.Has(key) {
		return 0, unscoreable(key, fmt.Errorf("missing"))
	}
	return i.Float(key, 0)
}

// Int coerces an integer attribute, truncating fractional values.
func (i CatalogItem) Int(key string, def int) (int, error) {
	if !i.Has(key) {
		return def, nil
	}
	n, err := cast.ToIntE(i[key])
	if err != nil {
		return 0, unscoreable(key, err)
	}
	return n, nil
}

// String coerces a scalar attribute to a string.
func (i CatalogItem) String(key, def string) (string, error) {
	if !i.Has(key) {
		return def, nil
	}
	s, err := cast.ToStringE(i[key])
	if err != nil {
		return "", unscoreable(key, err)
	}
	return s, nil
}

// Level reads an availability level attribute without validating it.
func (i CatalogItem) Level(key string, def AvailabilityLevel) (AvailabilityLevel, error) {
	s, err := i.String(key, string(def))
	if err != nil {
		return "", err
	}
	return AvailabilityLevel(s), nil
}

// Strings coerces a list attribute. Absent lists are empty.
func (i CatalogItem) Strings(key string) ([]string, error) {
	if !i.Has(key) {
		return nil, nil
	}
	out, err := cast.ToStringSliceE(i[key])
	if err != nil {
		return nil, unscoreable(key, err)
	}
	return out, nil
}

// Floats coerces a numeric list attribute.
func (i CatalogItem) Floats(key string) ([]float64, error) {
	if !i.Has(key) {
		return nil, nil
	}
	rv := reflect.ValueOf(i[key])
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, unscoreable(key, fmt.Errorf("expected a list, got %T", i[key]))
	}
	out := make([]float64, 0, rv.Len())
	for idx := 0; idx < rv.Len(); idx++ {
		f, err := cast.ToFloat64E(rv.Index(idx).Interface())
		if err != nil {
			return nil, unscoreable(fmt.Sprintf("%s[%d]", key, idx), err)
		}
		out = append(out, f)
	}
	return out, nil
}

// FloatMap coerces an object attribute with numeric values.
func (i CatalogItem) FloatMap(key string) (map[string]float64, error) {
	if !i.Has(key) {
		return nil, nil
	}
	raw, err := cast.ToStringMapE(i[key])
	if err != nil {
		return nil, unscoreable(key, err)
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, unscoreable(key+"."+k, err)
		}
		out[k] = f
	}
	return out, nil
}

// Truthy applies loose truthiness: empty strings, zero numbers, empty collections and null are false.
func (i CatalogItem) Truthy(key string) bool {
	v, ok := i[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return f != 0
	}
	return true
}

func unscoreable(key string, err error) error {
	return fmt.Errorf("%w: attribute %q: %v", ErrUnscoreable, key, err)
}

// FormatNumber renders a float without trailing zeros: 4500 -> "4500", 4.5 -> "4.5".
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatList renders a string list as "[a, b]".
func FormatList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
