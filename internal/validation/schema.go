package validation

import (
	"fmt"
	"reflect"
)

// Schema maps a region to its sub-schema. The sub-schema is opaque to this
// package and is handed to the Engine as is.
//
// Regions missing from the map, or whose sub-schema is empty (nil, a typed
// nil, an empty string or byte slice, false), are not validated.
type Schema map[Region]any

// Configured reports whether region r has a sub-schema that will be used.
func (s Schema) Configured(r Region) bool {
	sub, ok := s[r]
	return ok && !isEmptySubSchema(sub)
}

// ConfiguredRegions returns the regions that will be validated, in order.
func (s Schema) ConfiguredRegions() []Region {
	var out []Region
	for _, r := range Regions {
		if s.Configured(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s Schema) check() error {
	for r := range s {
		if !r.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownRegion, string(r))
		}
	}
	return nil
}

func (s Schema) clone() Schema {
	out := make(Schema, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func isEmptySubSchema(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case bool:
		return !t
	case string:
		return t == ""
	case []byte:
		return len(t) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
