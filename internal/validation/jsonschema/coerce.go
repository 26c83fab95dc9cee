package jsonschema

import (
	"encoding/json"
	"strconv"
)

// coerce converts the string values of a flat object (query, path params,
// headers) into the scalar type its property schema declares. Values that do
// not parse are left alone so the schema reports them.
func coerce(value any, doc any) any {
	obj, ok := value.(map[string]any)
	if !ok {
		return value
	}
	schema, ok := doc.(map[string]any)
	if !ok {
		return value
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		return value
	}

	for name, raw := range obj {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		obj[name] = coerceValue(raw, declaredType(prop))
	}
	return obj
}

func coerceValue(raw any, typ string) any {
	switch v := raw.(type) {
	case string:
		switch typ {
		case "integer":
			if _, err := strconv.ParseInt(v, 10, 64); err == nil {
				return json.Number(v)
			}
		case "number":
			if _, err := strconv.ParseFloat(v, 64); err == nil {
				return json.Number(v)
			}
		case "boolean":
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		case "array":
			return []any{v}
		}
	case []any:
		if typ != "array" && len(v) == 1 {
			return coerceValue(v[0], typ)
		}
	}
	return raw
}

// declaredType returns the first non-null type of a property schema.
func declaredType(prop map[string]any) string {
	switch t := prop["type"].(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s != "null" {
				return s
			}
		}
	}
	return ""
}
