package validation

import "context"

// Options are passed to the Engine for every region validation.
type Options struct {
	// AbortEarly stops at the first violation. The Validator always sets it
	// to false so that every violation is reported.
	AbortEarly bool

	// AllowUnknown accepts fields the sub-schema does not declare.
	AllowUnknown bool

	// Region is the region being validated. Engines use it to decide,
	// for example, whether string values may be coerced.
	Region Region
}

// Engine validates a value against a sub-schema.
//
// It returns the violations in the order it found them. A non-nil error
// means the engine itself failed (bad schema, unsupported data) and is not a
// validation failure.
type Engine interface {
	Validate(ctx context.Context, data any, subSchema any, opts Options) ([]Violation, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, data any, subSchema any, opts Options) ([]Violation, error)

// Validate calls f.
func (f EngineFunc) Validate(ctx context.Context, data any, subSchema any, opts Options) ([]Violation, error) {
	return f(ctx, data, subSchema, opts)
}

// SchemaChecker is implemented by engines that can reject a sub-schema
// before any request is validated. Callers use it to fail at load time.
type SchemaChecker interface {
	CheckSchema(subSchema any) error
}
