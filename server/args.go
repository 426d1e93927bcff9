package server

import "encoding/json"

// Arguments is a validated argument set. Handlers only ever see values that
// satisfied their contract; a capability without a contract gets an empty set.
type Arguments map[string]any

// Lookup returns the named argument and whether it was supplied.
func (a Arguments) Lookup(name string) (any, bool) {
	v, ok := a[name]
	return v, ok
}

// Has reports whether the named argument was supplied.
func (a Arguments) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns the named argument as a string, or "" if it is absent or
// not a string.
func (a Arguments) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Decode copies the arguments into v, which should be a pointer to a struct
// with json tags.
func (a Arguments) Decode(v any) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
