// Package middleware holds the Echo middleware of the service and the
// request validation adapters.
//
// Validate and ValidateHTTP plug a validation.Validator into Echo and
// net/http pipelines. The rest covers cross-cutting concerns: request IDs,
// request-scoped logging, New Relic tracing, request logging, CORS, panic
// recovery and the global error handler.
package middleware
