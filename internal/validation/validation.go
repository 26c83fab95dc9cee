// Package validation validates incoming requests against a per-route schema.
//
// A Schema holds one sub-schema per request region (body, query, params,
// headers). A Validator runs every configured region through an Engine,
// collects all violations in region order and, when there is at least one,
// reports them as a single *Error for the pipeline's error handler.
//
// The package does not know how a sub-schema is interpreted. That is the
// Engine's job: see the jsonschema and structs subpackages.
package validation
