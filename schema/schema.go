// Package schema validates resource payloads against a JSON Schema subset.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Resource is the default schema for item payloads: an object with a
// string name and a numeric price, both required.
var Resource = map[string]any{
	"type":     "object",
	"required": []any{"name", "price"},
	"properties": map[string]any{
		"name":  map[string]any{"type": "string"},
		"price": map[string]any{"type": "number"},
	},
}

// Validate checks a document against a JSON Schema (draft-07 subset).
// Returns nil if validation passes or the schema is nil.
//
// Supported keywords:
//   - type (string, number, integer, boolean, object, null)
//   - properties, required, additionalProperties
//   - minimum, maximum, exclusiveMinimum, exclusiveMaximum
//   - minLength, maxLength
//   - enum
func Validate(schema map[string]any, doc map[string]any) error {
	if schema == nil {
		return nil
	}
	return validateValue(schema, doc, "$")
}

func validateValue(schema map[string]any, value any, path string) error {
	if ts, ok := schema["type"].(string); ok {
		if err := checkType(ts, value, path); err != nil {
			return err
		}
	}
	if enum, ok := schema["enum"].([]any); ok {
		if err := checkEnum(enum, value, path); err != nil {
			return err
		}
	}

	switch v := value.(type) {
	case map[string]any:
		return validateObject(schema, v, path)
	case string:
		return validateString(schema, v, path)
	case float64:
		return validateNumber(schema, v, path)
	case int, int64:
		f, _ := toFloat(v)
		return validateNumber(schema, f, path)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return fmt.Errorf("%s: invalid number %q", path, v)
		}
		return validateNumber(schema, f, path)
	}
	return nil
}

func checkType(expected string, value any, path string) error {
	actual := jsonType(value)
	switch {
	case actual == expected:
		return nil
	case expected == "number" && actual == "integer":
		return nil
	case expected == "integer" && actual == "number":
		// whole floats count as integers
		if f, ok := toFloat(value); ok && f == float64(int64(f)) {
			return nil
		}
	}
	return fmt.Errorf("%s: expected type %q, got %q", path, expected, actual)
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case int, int64:
		return "integer"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func checkEnum(allowed []any, value any, path string) error {
	vf, numeric := toFloat(value)
	for _, a := range allowed {
		if af, ok := toFloat(a); ok && numeric {
			if af == vf {
				return nil
			}
			continue
		}
		if reflect.DeepEqual(a, value) {
			return nil
		}
	}
	return fmt.Errorf("%s: value not in enum %v", path, allowed)
}

func validateObject(schema map[string]any, obj map[string]any, path string) error {
	if req, ok := schema["required"].([]any); ok {
		for _, r := range req {
			field, ok := r.(string)
			if !ok {
				continue
			}
			if _, exists := obj[field]; !exists {
				return fmt.Errorf("%s: missing required field %q", path, field)
			}
		}
	}

	props, _ := schema["properties"].(map[string]any)

	// Sorted so the first reported error is stable.
	fields := make([]string, 0, len(props))
	for field := range props {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		val, exists := obj[field]
		if !exists {
			continue
		}
		ps, ok := props[field].(map[string]any)
		if !ok {
			continue
		}
		if err := validateValue(ps, val, path+"."+field); err != nil {
			return err
		}
	}

	if ap, ok := schema["additionalProperties"].(bool); ok && !ap {
		var extra []string
		for field := range obj {
			if _, defined := props[field]; !defined {
				extra = append(extra, field)
			}
		}
		if len(extra) > 0 {
			sort.Strings(extra)
			return fmt.Errorf("%s: additional properties not allowed: %s", path, strings.Join(extra, ", "))
		}
	}
	return nil
}

func validateString(schema map[string]any, s string, path string) error {
	if v, ok := toFloat(schema["minLength"]); ok && float64(len(s)) < v {
		return fmt.Errorf("%s: string length %d is less than minLength %v", path, len(s), v)
	}
	if v, ok := toFloat(schema["maxLength"]); ok && float64(len(s)) > v {
		return fmt.Errorf("%s: string length %d is greater than maxLength %v", path, len(s), v)
	}
	return nil
}

func validateNumber(schema map[string]any, n float64, path string) error {
	if v, ok := toFloat(schema["minimum"]); ok && n < v {
		return fmt.Errorf("%s: %v is less than minimum %v", path, n, v)
	}
	if v, ok := toFloat(schema["maximum"]); ok && n > v {
		return fmt.Errorf("%s: %v is greater than maximum %v", path, n, v)
	}
	if v, ok := toFloat(schema["exclusiveMinimum"]); ok && n <= v {
		return fmt.Errorf("%s: %v is not greater than exclusiveMinimum %v", path, n, v)
	}
	if v, ok := toFloat(schema["exclusiveMaximum"]); ok && n >= v {
		return fmt.Errorf("%s: %v is not less than exclusiveMaximum %v", path, n, v)
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
