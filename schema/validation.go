package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Issue is a single field-level validation failure.
type Issue struct {
	Path    string `json:"path"`    // dotted path to the invalid field (e.g., "user.email")
	Message string `json:"message"` // human-readable reason
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// Issues collects every failure found in one validation pass.
type Issues []Issue

func (e Issues) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].String()
	}

	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, issue := range e {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("  - ")
		sb.WriteString(issue.String())
	}
	return sb.String()
}

// Validator checks raw arguments against a Shape. On success it returns the
// validated argument set; on failure the error is Issues.
type Validator interface {
	Validate(shape Shape, raw json.RawMessage) (map[string]any, error)
}

// ValidatorFunc adapts an ordinary function to Validator.
type ValidatorFunc func(shape Shape, raw json.RawMessage) (map[string]any, error)

// Validate calls f(shape, raw).
func (f ValidatorFunc) Validate(shape Shape, raw json.RawMessage) (map[string]any, error) {
	return f(shape, raw)
}

// DefaultValidator is the built-in Validator.
var DefaultValidator Validator = ValidatorFunc(Validate)

// Validate checks raw against shape. Missing or null input is treated as an
// empty object. Keys not declared in the shape are dropped from the result.
func Validate(shape Shape, raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = json.RawMessage("{}")
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, Issues{{Message: fmt.Sprintf("invalid JSON: %s", err)}}
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, Issues{{Message: fmt.Sprintf("expected object, got %s", typeName(value))}}
	}

	var errs Issues
	out := make(map[string]any, len(shape))
	for _, name := range shape.Names() {
		field := shape[name]
		v, exists := obj[name]
		if !exists || v == nil {
			if !field.IsOptional() {
				errs = append(errs, Issue{Path: name, Message: "required field is missing"})
			}
			continue
		}
		field.validate(name, v, &errs)
		out[name] = v
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// ValidateValue validates an already decoded value against s.
func (s *Schema) ValidateValue(value any) error {
	var errs Issues
	s.validate("", value, &errs)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *Schema) validate(path string, value any, errs *Issues) {
	before := len(*errs)
	defer func() {
		if len(*errs) == before && len(s.Enum) > 0 && !s.allows(value) {
			*errs = append(*errs, Issue{
				Path:    path,
				Message: fmt.Sprintf("value must be one of: %v", s.Enum),
			})
		}
	}()

	switch s.Type {
	case TypeObject:
		s.validateObject(path, value, errs)
	case TypeArray:
		s.validateArray(path, value, errs)
	case TypeString:
		s.validateString(path, value, errs)
	case TypeInteger:
		s.validateInteger(path, value, errs)
	case TypeNumber:
		s.validateNumber(path, value, errs)
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			*errs = append(*errs, mismatch(path, TypeBoolean, value))
		}
	}
}

func (s *Schema) validateObject(path string, value any, errs *Issues) {
	obj, ok := value.(map[string]any)
	if !ok {
		*errs = append(*errs, mismatch(path, TypeObject, value))
		return
	}

	for _, req := range s.Required {
		if v, exists := obj[req]; !exists || v == nil {
			*errs = append(*errs, Issue{Path: joinPath(path, req), Message: "required field is missing"})
		}
	}

	for name, prop := range s.Properties {
		if v, exists := obj[name]; exists && v != nil {
			prop.validate(joinPath(path, name), v, errs)
		}
	}
}

func (s *Schema) validateArray(path string, value any, errs *Issues) {
	items, ok := value.([]any)
	if !ok {
		*errs = append(*errs, mismatch(path, TypeArray, value))
		return
	}
	if s.Items == nil {
		return
	}
	for i, item := range items {
		s.Items.validate(fmt.Sprintf("%s[%d]", path, i), item, errs)
	}
}

func (s *Schema) validateString(path string, value any, errs *Issues) {
	if _, ok := value.(string); !ok {
		*errs = append(*errs, mismatch(path, TypeString, value))
	}
}

// allows reports whether value is one of the enum values. Numbers compare
// by value whatever their Go type.
func (s *Schema) allows(value any) bool {
	num, isNum := number(value)
	for _, e := range s.Enum {
		if isNum {
			if n, ok := number(e); ok && n == num {
				return true
			}
			continue
		}
		if reflect.DeepEqual(e, value) {
			return true
		}
	}
	return false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func (s *Schema) validateInteger(path string, value any, errs *Issues) {
	num, ok := value.(float64)
	if !ok {
		*errs = append(*errs, mismatch(path, TypeInteger, value))
		return
	}
	if num != float64(int64(num)) {
		*errs = append(*errs, Issue{Path: path, Message: "expected integer, got decimal number"})
		return
	}
	s.validateBounds(path, num, errs)
}

func (s *Schema) validateNumber(path string, value any, errs *Issues) {
	num, ok := value.(float64)
	if !ok {
		*errs = append(*errs, mismatch(path, TypeNumber, value))
		return
	}
	s.validateBounds(path, num, errs)
}

func (s *Schema) validateBounds(path string, num float64, errs *Issues) {
	if s.Minimum != nil && num < *s.Minimum {
		*errs = append(*errs, Issue{
			Path:    path,
			Message: fmt.Sprintf("value %v is less than minimum %v", num, *s.Minimum),
		})
	}
	if s.Maximum != nil && num > *s.Maximum {
		*errs = append(*errs, Issue{
			Path:    path,
			Message: fmt.Sprintf("value %v is greater than maximum %v", num, *s.Maximum),
		})
	}
}

func mismatch(path, want string, value any) Issue {
	return Issue{Path: path, Message: fmt.Sprintf("expected %s, got %s", want, typeName(value))}
}

// typeName names a decoded JSON value the way JSON Schema does.
func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return TypeBoolean
	case float64:
		return TypeNumber
	case string:
		return TypeString
	case []any:
		return TypeArray
	case map[string]any:
		return TypeObject
	default:
		return fmt.Sprintf("%T", value)
	}
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}
