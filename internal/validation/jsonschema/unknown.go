package jsonschema

// Keywords whose value is a single subschema.
var schemaKeywords = []string{
	"additionalProperties", "unevaluatedProperties", "items", "additionalItems",
	"unevaluatedItems", "contains", "propertyNames", "not", "if", "then", "else",
}

// Keywords whose value is a map of name to subschema.
var schemaMapKeywords = []string{
	"properties", "patternProperties", "dependentSchemas", "$defs", "definitions",
}

// Keywords whose value is a list of subschemas.
var schemaListKeywords = []string{
	"allOf", "anyOf", "oneOf", "prefixItems",
}

// closeObjects returns a copy of doc where every object schema that lists
// properties and sets neither additionalProperties nor unevaluatedProperties
// rejects undeclared properties.
func closeObjects(doc any) any {
	node, ok := doc.(map[string]any)
	if !ok {
		return doc
	}

	out := make(map[string]any, len(node)+1)
	for k, v := range node {
		out[k] = v
	}

	for _, kw := range schemaKeywords {
		if sub, ok := out[kw]; ok {
			out[kw] = closeObjects(sub)
		}
	}
	for _, kw := range schemaMapKeywords {
		subs, ok := out[kw].(map[string]any)
		if !ok {
			continue
		}
		closed := make(map[string]any, len(subs))
		for name, sub := range subs {
			closed[name] = closeObjects(sub)
		}
		out[kw] = closed
	}
	for _, kw := range schemaListKeywords {
		subs, ok := out[kw].([]any)
		if !ok {
			continue
		}
		closed := make([]any, len(subs))
		for i, sub := range subs {
			closed[i] = closeObjects(sub)
		}
		out[kw] = closed
	}

	_, hasProps := out["properties"]
	_, hasAdditional := out["additionalProperties"]
	_, hasUnevaluated := out["unevaluatedProperties"]
	if hasProps && !hasAdditional && !hasUnevaluated {
		out["additionalProperties"] = false
	}
	return out
}
