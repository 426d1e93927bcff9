package schema

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// Reflect derives a Shape from the struct type T.
//
// Field names follow the json tag. A field is required unless its json tag
// carries omitempty. Descriptions and enums come from the jsonschema tag:
//
//	type SummarizeArgs struct {
//	    Topic string `json:"topic" jsonschema:"description=The topic to summarize"`
//	    Tone  string `json:"tone,omitempty" jsonschema:"enum=formal,enum=casual"`
//	}
//
// Numeric fields carry their minimum and maximum. T must be a struct or a
// pointer to one.
func Reflect[T any]() (Shape, error) {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct", t)
	}

	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.ReflectFromType(t)
	if s == nil || s.Type != TypeObject {
		return nil, fmt.Errorf("schema: %s does not reflect to an object", t)
	}

	obj := fromJSONSchema(s)
	shape := make(Shape, len(obj.Properties))
	required := make(map[string]bool, len(obj.Required))
	for _, name := range obj.Required {
		required[name] = true
	}
	for name, field := range obj.Properties {
		if !required[name] {
			field.Optional()
		}
		shape[name] = field
	}
	return shape, nil
}

func fromJSONSchema(s *jsonschema.Schema) *Schema {
	out := &Schema{
		Type:        s.Type,
		Description: s.Description,
	}
	if len(s.Enum) > 0 {
		out.Enum = append([]any(nil), s.Enum...)
	}
	if v, ok := numberValue(s.Minimum); ok {
		out.Min(v)
	}
	if v, ok := numberValue(s.Maximum); ok {
		out.Max(v)
	}
	if s.Type == TypeArray && s.Items != nil {
		out.Items = fromJSONSchema(s.Items)
	}
	if s.Type == TypeObject && s.Properties != nil {
		out.Properties = make(map[string]*Schema, s.Properties.Len())
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			out.Properties[el.Key] = fromJSONSchema(el.Value)
		}
		if len(s.Required) > 0 {
			out.Required = append([]string(nil), s.Required...)
		}
	}
	return out
}

func numberValue(n json.Number) (float64, bool) {
	if n == "" {
		return 0, false
	}
	v, err := n.Float64()
	return v, err == nil
}
