package validation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Validator validates requests against a Schema. It is immutable after New
// and safe for concurrent use.
type Validator struct {
	engine     Engine
	schema     Schema
	policy     UnknownPolicy
	regions    []Region
	concurrent bool
}

// Option configures a Validator.
type Option func(*config)

type config struct {
	allowUnknown *bool
	overrides    UnknownPolicy
	concurrent   bool
}

// WithAllowUnknown applies the same unknown-field policy to every region,
// replacing the defaults.
func WithAllowUnknown(allow bool) Option {
	return func(c *config) {
		c.allowUnknown = &allow
	}
}

// WithRegionPolicy sets the unknown-field policy of a single region. It is
// ignored when WithAllowUnknown is also given.
func WithRegionPolicy(r Region, allow bool) Option {
	return func(c *config) {
		if c.overrides == nil {
			c.overrides = UnknownPolicy{}
		}
		c.overrides[r] = allow
	}
}

// WithConcurrentRegions validates the configured regions in parallel. The
// order of the reported violations does not change.
func WithConcurrentRegions() Option {
	return func(c *config) {
		c.concurrent = true
	}
}

// New builds a Validator for schema using engine.
//
// It fails with ErrSchemaRequired when schema is nil, ErrEngineRequired when
// engine is nil and ErrUnknownRegion when schema or a region policy names a
// region that does not exist.
func New(engine Engine, schema Schema, opts ...Option) (*Validator, error) {
	if schema == nil {
		return nil, ErrSchemaRequired
	}
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if err := schema.check(); err != nil {
		return nil, err
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	for r := range cfg.overrides {
		if !r.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRegion, string(r))
		}
	}

	policy := DefaultAllowUnknown()
	if cfg.allowUnknown != nil {
		for _, r := range Regions {
			policy[r] = *cfg.allowUnknown
		}
	} else {
		for r, allow := range cfg.overrides {
			policy[r] = allow
		}
	}

	s := schema.clone()
	return &Validator{
		engine:     engine,
		schema:     s,
		policy:     policy,
		regions:    s.ConfiguredRegions(),
		concurrent: cfg.concurrent,
	}, nil
}

// MustNew is like New but panics on a configuration error.
func MustNew(engine Engine, schema Schema, opts ...Option) *Validator {
	v, err := New(engine, schema, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// Regions returns the regions this validator checks, in order.
func (v *Validator) Regions() []Region {
	return append([]Region(nil), v.regions...)
}

// AllowUnknown returns the resolved unknown-field policy of region r.
func (v *Validator) AllowUnknown(r Region) bool {
	return v.policy[r]
}

// Policy returns a copy of the resolved unknown-field policy.
func (v *Validator) Policy() UnknownPolicy {
	return v.policy.clone()
}

// Validate checks every configured region of req.
//
// It returns nil when no region reports a violation, a *Error holding all
// violations in region order otherwise. Any other error comes from reading
// the request or from the engine itself.
func (v *Validator) Validate(ctx context.Context, req Request) error {
	var found [len(Regions)][]Violation

	if v.concurrent {
		var g errgroup.Group
		for _, r := range v.regions {
			g.Go(func() error {
				violations, err := v.validateRegion(ctx, req, r)
				found[r.index()] = violations
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		for _, r := range v.regions {
			violations, err := v.validateRegion(ctx, req, r)
			if err != nil {
				return err
			}
			found[r.index()] = violations
		}
	}

	var all []Violation
	for _, violations := range found {
		all = append(all, violations...)
	}
	if len(all) == 0 {
		return nil
	}
	return NewError(all)
}

func (v *Validator) validateRegion(ctx context.Context, req Request, r Region) ([]Violation, error) {
	data, err := req.RegionData(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r, err)
	}

	violations, err := v.engine.Validate(ctx, data, v.schema[r], Options{
		AbortEarly:   false,
		AllowUnknown: v.policy[r],
		Region:       r,
	})
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", r, err)
	}
	return violations, nil
}

// Result is the outcome of Check: either success, a validation failure or a
// failure of the validation machinery itself.
type Result struct {
	// Err is set when the request has at least one violation.
	Err *Error

	// Failure is set when the request could not be validated.
	Failure error
}

// OK reports whether the request passed validation.
func (r Result) OK() bool {
	return r.Err == nil && r.Failure == nil
}

// Check is Validate returning a Result instead of an error.
func (v *Validator) Check(ctx context.Context, req Request) Result {
	err := v.Validate(ctx, req)
	if err == nil {
		return Result{}
	}
	if vErr, ok := AsError(err); ok {
		return Result{Err: vErr}
	}
	return Result{Failure: err}
}
