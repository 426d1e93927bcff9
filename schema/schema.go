package schema

import "sort"

// Schema type constants.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// Schema is a declarative description of one value. It marshals to the JSON
// Schema subset advertised to clients in tool and prompt listings.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
	Maximum     *float64           `json:"maximum,omitempty"`

	optional bool
}

// String returns a string field.
func String() *Schema {
	return &Schema{Type: TypeString}
}

// Integer returns an integer field.
func Integer() *Schema {
	return &Schema{Type: TypeInteger}
}

// Number returns a number field.
func Number() *Schema {
	return &Schema{Type: TypeNumber}
}

// Boolean returns a boolean field.
func Boolean() *Schema {
	return &Schema{Type: TypeBoolean}
}

// Array returns an array field whose elements match items.
func Array(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// Enum returns a string field restricted to the given values.
func Enum(values ...string) *Schema {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return &Schema{Type: TypeString, Enum: enum}
}

// Describe sets the human-readable description and returns s.
func (s *Schema) Describe(desc string) *Schema {
	s.Description = desc
	return s
}

// Optional marks the field as optional within its Shape and returns s.
func (s *Schema) Optional() *Schema {
	s.optional = true
	return s
}

// Min sets an inclusive lower bound for numeric fields and returns s.
func (s *Schema) Min(v float64) *Schema {
	s.Minimum = &v
	return s
}

// Max sets an inclusive upper bound for numeric fields and returns s.
func (s *Schema) Max(v float64) *Schema {
	s.Maximum = &v
	return s
}

// IsOptional reports whether the field may be omitted.
func (s *Schema) IsOptional() bool {
	return s.optional
}

// Shape maps argument names to their field descriptions. Fields are required
// unless marked Optional.
type Shape map[string]*Schema

// Names returns the argument names in sorted order.
func (sh Shape) Names() []string {
	names := make([]string, 0, len(sh))
	for name := range sh {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Required returns the names of required arguments in sorted order.
func (sh Shape) Required() []string {
	var required []string
	for _, name := range sh.Names() {
		if !sh[name].IsOptional() {
			required = append(required, name)
		}
	}
	return required
}

// Object renders the shape as an object schema. A nil shape renders as an
// object with no properties, which is what clients expect for tools that take
// no arguments.
func (sh Shape) Object() *Schema {
	obj := &Schema{
		Type:       TypeObject,
		Properties: make(map[string]*Schema, len(sh)),
		Required:   sh.Required(),
	}
	for name, field := range sh {
		obj.Properties[name] = field
	}
	return obj
}
