package routespec

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

var pathTemplate = regexp.MustCompile(`\{([^}]+)\}`)

// LoadOpenAPI turns every operation of an OpenAPI 3 document into a route.
//
// Parameters are grouped by location into one object schema per region
// (query, params for "path", headers); cookie parameters are ignored. The
// application/json request body schema becomes the body sub-schema. All
// $refs are resolved inline.
func LoadOpenAPI(ctx context.Context, path string, opts Options) (*Set, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	return FromOpenAPI(ctx, doc, opts)
}

// FromOpenAPI builds routes from an already loaded document.
func FromOpenAPI(ctx context.Context, doc *openapi3.T, opts Options) (*Set, error) {
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	if doc.Paths == nil {
		return nil, ErrNoRoutes
	}

	// 3.1 schemas already are JSON Schema 2020-12.
	dialect30 := strings.HasPrefix(doc.OpenAPI, "3.0")

	var routes []Route
	for tmpl, item := range doc.Paths.Map() {
		for method, op := range item.Operations() {
			route, err := operationRoute(tmpl, method, item, op, dialect30)
			if err != nil {
				return nil, err
			}
			routes = append(routes, route)
		}
	}
	sortRoutes(routes)

	return Build(routes, opts)
}

func operationRoute(tmpl, method string, item *openapi3.PathItem, op *openapi3.Operation, dialect30 bool) (Route, error) {
	route := Route{
		Name:   op.OperationID,
		Method: strings.ToUpper(method),
		Path:   pathTemplate.ReplaceAllString(tmpl, ":$1"),
		Schema: map[string]any{},
	}

	groups := map[string]*paramGroup{}
	for _, ref := range mergeParameters(item.Parameters, op.Parameters) {
		p := ref.Value
		region := ""
		name := p.Name
		switch p.In {
		case openapi3.ParameterInQuery:
			region = "query"
		case openapi3.ParameterInPath:
			region = "params"
		case openapi3.ParameterInHeader:
			region = "headers"
			name = strings.ToLower(name)
		default:
			continue
		}

		g, ok := groups[region]
		if !ok {
			g = &paramGroup{properties: map[string]any{}}
			groups[region] = g
		}

		prop, err := schemaDocument(p.Schema, dialect30)
		if err != nil {
			return Route{}, fmt.Errorf("%s %s parameter %s: %w", route.Method, tmpl, p.Name, err)
		}
		g.properties[name] = prop
		if p.Required {
			g.required = append(g.required, name)
		}
	}

	for region, g := range groups {
		sort.Strings(g.required)
		doc := map[string]any{
			"type":       "object",
			"properties": g.properties,
		}
		if len(g.required) > 0 {
			doc["required"] = g.required
		}
		route.Schema[region] = doc
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		if mt := op.RequestBody.Value.Content.Get("application/json"); mt != nil && mt.Schema != nil {
			body, err := schemaDocument(mt.Schema, dialect30)
			if err != nil {
				return Route{}, fmt.Errorf("%s %s request body: %w", route.Method, tmpl, err)
			}
			route.Schema["body"] = body
		}
	}

	return route, nil
}

type paramGroup struct {
	properties map[string]any
	required   []string
}

// mergeParameters lets operation parameters override path item parameters
// with the same name and location.
func mergeParameters(pathParams, opParams openapi3.Parameters) []*openapi3.ParameterRef {
	var out []*openapi3.ParameterRef
	index := map[string]int{}

	for _, list := range []openapi3.Parameters{pathParams, opParams} {
		for _, ref := range list {
			if ref == nil || ref.Value == nil {
				continue
			}
			key := ref.Value.In + ":" + ref.Value.Name
			if i, ok := index[key]; ok {
				out[i] = ref
				continue
			}
			index[key] = len(out)
			out = append(out, ref)
		}
	}
	return out
}

// schemaDocument renders a schema with every $ref replaced by its target,
// so it compiles as a standalone JSON Schema. OpenAPI 3.0 schemas are
// rewritten into their 2020-12 form.
func schemaDocument(ref *openapi3.SchemaRef, dialect30 bool) (any, error) {
	if ref == nil || ref.Value == nil {
		return map[string]any{}, nil
	}

	raw, err := json.Marshal(inline(ref, map[*openapi3.Schema]bool{}))
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if dialect30 {
		doc = upgrade30(doc)
	}
	return doc, nil
}

// upgrade30 rewrites the OpenAPI 3.0 keywords that 2020-12 reads
// differently: nullable adds the "null" type and boolean exclusive bounds
// take the numeric form. doc is modified in place.
func upgrade30(doc any) any {
	s, ok := doc.(map[string]any)
	if !ok {
		return doc
	}

	for _, kw := range []string{"items", "not", "additionalProperties"} {
		if sub, ok := s[kw]; ok {
			s[kw] = upgrade30(sub)
		}
	}
	if props, ok := s["properties"].(map[string]any); ok {
		for name, p := range props {
			props[name] = upgrade30(p)
		}
	}
	for _, kw := range []string{"allOf", "anyOf", "oneOf"} {
		if subs, ok := s[kw].([]any); ok {
			for i := range subs {
				subs[i] = upgrade30(subs[i])
			}
		}
	}

	exclusiveBound(s, "exclusiveMinimum", "minimum")
	exclusiveBound(s, "exclusiveMaximum", "maximum")

	nullable, _ := s["nullable"].(bool)
	delete(s, "nullable")
	if !nullable {
		return s
	}

	if enum, ok := s["enum"].([]any); ok {
		s["enum"] = append(enum, nil)
	}
	if t, ok := s["type"].(string); ok {
		s["type"] = []any{t, "null"}
		return s
	}
	// No single type to extend, e.g. a bare allOf of a $ref.
	return map[string]any{
		"anyOf": []any{map[string]any{"type": "null"}, s},
	}
}

// exclusiveBound turns a boolean exclusive flag into the numeric keyword,
// taking the value of the matching inclusive bound.
func exclusiveBound(s map[string]any, exclusive, bound string) {
	flag, ok := s[exclusive].(bool)
	if !ok {
		return
	}
	delete(s, exclusive)
	if v, ok := s[bound]; ok && flag {
		s[exclusive] = v
		delete(s, bound)
	}
}

// inline copies the schema tree without refs. A schema that refers back to
// one of its ancestors is cut to an empty (accept anything) schema.
func inline(ref *openapi3.SchemaRef, ancestors map[*openapi3.Schema]bool) *openapi3.SchemaRef {
	if ref == nil || ref.Value == nil {
		return ref
	}
	if ancestors[ref.Value] {
		return &openapi3.SchemaRef{Value: &openapi3.Schema{}}
	}
	ancestors[ref.Value] = true
	defer delete(ancestors, ref.Value)

	s := *ref.Value

	if s.Properties != nil {
		props := make(openapi3.Schemas, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = inline(p, ancestors)
		}
		s.Properties = props
	}
	s.Items = inline(s.Items, ancestors)
	s.Not = inline(s.Not, ancestors)
	s.AllOf = inlineAll(s.AllOf, ancestors)
	s.AnyOf = inlineAll(s.AnyOf, ancestors)
	s.OneOf = inlineAll(s.OneOf, ancestors)
	if s.AdditionalProperties.Schema != nil {
		s.AdditionalProperties.Schema = inline(s.AdditionalProperties.Schema, ancestors)
	}

	return &openapi3.SchemaRef{Value: &s}
}

func inlineAll(refs openapi3.SchemaRefs, ancestors map[*openapi3.Schema]bool) openapi3.SchemaRefs {
	if refs == nil {
		return nil
	}
	out := make(openapi3.SchemaRefs, len(refs))
	for i, r := range refs {
		out[i] = inline(r, ancestors)
	}
	return out
}
