// Package structs is a validation.Engine that uses Go struct types as
// sub-schemas.
//
// A sub-schema is a prototype struct value (or pointer). Region data is
// decoded into a fresh instance with mapstructure, using the `json` tags for
// field names, then checked with the `validate` tags of go-playground/validator.
//
//	type CreateUser struct {
//	    Name  string `json:"name" validate:"required,min=2"`
//	    Email string `json:"email" validate:"required,email"`
//	}
//
//	v := validation.MustNew(structs.New(), validation.Schema{
//	    validation.RegionBody: CreateUser{},
//	})
package structs

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/deppfellow/v8n/internal/validation"
)

// ErrNotStruct is returned when a sub-schema is not a struct or a pointer to one.
var ErrNotStruct = errors.New("sub-schema must be a struct or a pointer to a struct")

// Engine decodes and validates region data against struct prototypes.
type Engine struct {
	validate *validator.Validate
}

// New returns an Engine with the json tag name resolver and the custom
// uuidList rule registered.
func New() *Engine {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	// Only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("uuidList", func(fl validator.FieldLevel) bool {
		return IsValidUUIDList(fl.Field().String())
	})

	return &Engine{validate: v}
}

var _ validation.Engine = (*Engine)(nil)

// Validate implements validation.Engine.
//
// Decoding uses weak typing for every region but body, since query strings,
// path parameters and headers only carry text. When decoding fails the
// decode violations are returned and the validate tags are not checked.
func (e *Engine) Validate(ctx context.Context, data any, subSchema any, opts validation.Options) ([]validation.Violation, error) {
	typ, err := structType(subSchema)
	if err != nil {
		return nil, err
	}

	target := reflect.New(typ).Interface()
	weak := opts.Region != validation.RegionBody

	cfg := &mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		ErrorUnused:      !opts.AllowUnknown,
		WeaklyTypedInput: weak,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	}
	if weak {
		// "a,b" in a query string or header fills a slice field.
		cfg.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	if data != nil {
		if err := decoder.Decode(data); err != nil {
			var decodeErr *mapstructure.Error
			if !errors.As(err, &decodeErr) {
				return nil, fmt.Errorf("decode %s: %w", opts.Region, err)
			}
			return limit(decodeViolations(decodeErr.Errors, opts.Region), opts.AbortEarly), nil
		}
	}

	if err := e.validate.StructCtx(ctx, target); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("validate %s: %w", opts.Region, err)
		}
		return limit(tagViolations(fieldErrs, opts.Region), opts.AbortEarly), nil
	}
	return nil, nil
}

var _ validation.SchemaChecker = (*Engine)(nil)

// CheckSchema reports whether subSchema is a struct prototype.
func (e *Engine) CheckSchema(subSchema any) error {
	_, err := structType(subSchema)
	return err
}

func structType(subSchema any) (reflect.Type, error) {
	typ := reflect.TypeOf(subSchema)
	if typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w, got %T", ErrNotStruct, subSchema)
	}
	return typ, nil
}

func limit(violations []validation.Violation, abortEarly bool) []validation.Violation {
	if abortEarly && len(violations) > 1 {
		return violations[:1]
	}
	return violations
}
