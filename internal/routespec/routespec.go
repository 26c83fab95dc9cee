// Package routespec loads the routes the service validates, either from a
// YAML route file or from an OpenAPI 3 document, and builds one validator
// per route.
//
// A route file looks like:
//
//	routes:
//	  - name: create-user
//	    method: POST
//	    path: /users/:team
//	    allow_unknown: false
//	    schema:
//	      body:
//	        type: object
//	        required: [name]
//	        properties:
//	          name: {type: string}
//	      params:
//	        type: object
//	        properties:
//	          team: {type: string, pattern: "^[a-z]+$"}
package routespec

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/deppfellow/v8n/internal/validation"
	"github.com/deppfellow/v8n/internal/validation/jsonschema"
)

var (
	ErrNoRoutes       = errors.New("no routes defined")
	ErrDuplicateRoute = errors.New("duplicate route")
	ErrInvalidRoute   = errors.New("invalid route")
)

// Route is a method and path template with the schema its requests must
// satisfy. Path parameters use the ":name" form.
type Route struct {
	Name         string         `yaml:"name" json:"name"`
	Method       string         `yaml:"method" json:"method"`
	Path         string         `yaml:"path" json:"path"`
	AllowUnknown *bool          `yaml:"allow_unknown,omitempty" json:"allow_unknown,omitempty"`
	Schema       map[string]any `yaml:"schema" json:"schema"`

	validator *validation.Validator
}

// Validator returns the validator built for the route.
func (r *Route) Validator() *validation.Validator {
	return r.validator
}

// Regions returns the regions the route validates.
func (r *Route) Regions() []validation.Region {
	if r.validator == nil {
		return nil
	}
	return r.validator.Regions()
}

// Options control how route validators are built.
type Options struct {
	// Engine validates the sub-schemas. Defaults to the JSON Schema engine.
	Engine validation.Engine

	// AllowUnknown applies to every route that does not set allow_unknown.
	AllowUnknown *bool

	// Concurrent validates the regions of a request in parallel.
	Concurrent bool
}

// Set is an ordered collection of routes.
type Set struct {
	routes []*Route
}

// Routes returns the routes in load order.
func (s *Set) Routes() []*Route {
	return append([]*Route(nil), s.routes...)
}

// Len returns the number of routes.
func (s *Set) Len() int {
	return len(s.routes)
}

// Build validates the route definitions and builds their validators.
func Build(routes []Route, opts Options) (*Set, error) {
	if len(routes) == 0 {
		return nil, ErrNoRoutes
	}
	if opts.Engine == nil {
		opts.Engine = jsonschema.New()
	}

	set := &Set{}
	seen := make(map[string]bool, len(routes))

	for i := range routes {
		route := routes[i]
		if err := route.normalize(); err != nil {
			return nil, err
		}

		key := route.Method + " " + route.Path
		if seen[key] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, key)
		}
		seen[key] = true

		v, err := route.build(opts)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", route.Name, err)
		}
		route.validator = v
		set.routes = append(set.routes, &route)
	}

	return set, nil
}

func (r *Route) normalize() error {
	r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	if !strings.HasPrefix(r.Path, "/") {
		return fmt.Errorf("%w: path %q must start with /", ErrInvalidRoute, r.Path)
	}
	if r.Name == "" {
		r.Name = r.Method + " " + r.Path
	}
	if r.Schema == nil {
		r.Schema = map[string]any{}
	}
	return nil
}

func (r *Route) build(opts Options) (*validation.Validator, error) {
	schema := make(validation.Schema, len(r.Schema))
	for name, sub := range r.Schema {
		region, err := validation.ParseRegion(name)
		if err != nil {
			return nil, err
		}
		schema[region] = sub
	}

	var vOpts []validation.Option
	switch {
	case r.AllowUnknown != nil:
		vOpts = append(vOpts, validation.WithAllowUnknown(*r.AllowUnknown))
	case opts.AllowUnknown != nil:
		vOpts = append(vOpts, validation.WithAllowUnknown(*opts.AllowUnknown))
	}
	if opts.Concurrent {
		vOpts = append(vOpts, validation.WithConcurrentRegions())
	}

	v, err := validation.New(opts.Engine, schema, vOpts...)
	if err != nil {
		return nil, err
	}

	// Catch bad sub-schemas now rather than on the first request.
	if checker, ok := opts.Engine.(validation.SchemaChecker); ok {
		for _, region := range v.Regions() {
			if err := checker.CheckSchema(schema[region]); err != nil {
				return nil, fmt.Errorf("%w: %s schema: %w", ErrInvalidRoute, region, err)
			}
		}
	}
	return v, nil
}

// Find returns the route matching method and a concrete path, with the
// values of its path parameters. Routes with fewer parameters win, so
// /users/me is preferred over /users/:id.
func (s *Set) Find(method, path string) (*Route, map[string]string, bool) {
	method = strings.ToUpper(method)
	segments := splitPath(path)

	var (
		best       *Route
		bestParams map[string]string
	)
	for _, route := range s.routes {
		if route.Method != method {
			continue
		}
		params, ok := match(splitPath(route.Path), segments)
		if !ok {
			continue
		}
		if best == nil || len(params) < len(bestParams) {
			best, bestParams = route, params
		}
	}
	return best, bestParams, best != nil
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func match(template, segments []string) (map[string]string, bool) {
	if len(template) != len(segments) {
		return nil, false
	}
	params := map[string]string{}
	for i, t := range template {
		if strings.HasPrefix(t, ":") {
			params[t[1:]] = segments[i]
			continue
		}
		if t != segments[i] {
			return nil, false
		}
	}
	return params, true
}

// sortRoutes orders routes by path then method, giving documents
// without a natural order a stable one.
func sortRoutes(routes []Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
}
