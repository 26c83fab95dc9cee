// Package jsonschema is a validation.Engine backed by JSON Schema
// (draft 2020-12 by default).
//
// Sub-schemas may be given as a decoded document (map[string]any), as JSON
// text (string, []byte, json.RawMessage) or as any value that marshals to a
// JSON Schema document, such as a kin-openapi schema.
package jsonschema

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	jsv "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/deppfellow/v8n/internal/validation"
)

const resourceURL = "v8n-schema.json"

// Engine validates region data against JSON Schema documents.
type Engine struct {
	draft  *jsv.Draft
	coerce bool
	format bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithDraft selects the JSON Schema draft used for documents without $schema.
func WithDraft(d *jsv.Draft) Option {
	return func(e *Engine) {
		e.draft = d
	}
}

// WithoutCoercion disables string coercion in the query, params and
// headers regions.
func WithoutCoercion() Option {
	return func(e *Engine) {
		e.coerce = false
	}
}

// WithoutFormatAssertions treats "format" as an annotation only.
func WithoutFormatAssertions() Option {
	return func(e *Engine) {
		e.format = false
	}
}

// New returns an Engine with string coercion and format assertions enabled.
func New(opts ...Option) *Engine {
	e := &Engine{
		draft:  jsv.Draft2020,
		coerce: true,
		format: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ validation.Engine = (*Engine)(nil)

// Validate implements validation.Engine.
//
// The schema is compiled on every call. When opts.AllowUnknown is false,
// every object schema that declares properties and does not say otherwise
// rejects additional properties.
func (e *Engine) Validate(_ context.Context, data any, subSchema any, opts validation.Options) ([]validation.Violation, error) {
	doc, err := Document(subSchema)
	if err != nil {
		return nil, err
	}
	if !opts.AllowUnknown {
		doc = closeObjects(doc)
	}

	schema, err := e.compile(doc)
	if err != nil {
		return nil, err
	}

	value, err := normalize(data)
	if err != nil {
		return nil, fmt.Errorf("normalize %s data: %w", opts.Region, err)
	}
	if e.coerce && opts.Region != validation.RegionBody {
		value = coerce(value, doc)
	}

	err = schema.Validate(value)
	if err == nil {
		return nil, nil
	}

	var vErr *jsv.ValidationError
	if !errors.As(err, &vErr) {
		return nil, err
	}

	violations := toViolations(vErr, opts.Region)
	if opts.AbortEarly && len(violations) > 1 {
		violations = violations[:1]
	}
	return violations, nil
}

var _ validation.SchemaChecker = (*Engine)(nil)

// CheckSchema compiles subSchema in both its open and closed form and
// discards the result.
func (e *Engine) CheckSchema(subSchema any) error {
	doc, err := Document(subSchema)
	if err != nil {
		return err
	}
	if _, err := e.compile(doc); err != nil {
		return err
	}
	_, err = e.compile(closeObjects(doc))
	return err
}

func (e *Engine) compile(doc any) (*jsv.Schema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsv.NewCompiler()
	compiler.Draft = e.draft
	compiler.AssertFormat = e.format

	if err := compiler.AddResource(resourceURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// Document converts a sub-schema into a decoded JSON document.
func Document(subSchema any) (any, error) {
	var raw []byte
	switch s := subSchema.(type) {
	case string:
		raw = []byte(s)
	case []byte:
		raw = s
	case json.RawMessage:
		raw = s
	default:
		b, err := json.Marshal(subSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal schema: %w", err)
		}
		raw = b
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return doc, nil
}

// normalize turns data into the value shapes JSON decoding produces.
func normalize(data any) (any, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}
