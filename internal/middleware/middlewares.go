package middleware

import (
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/v8n/internal/server"
)

// Middlewares groups all middleware components so the router receives one
// value instead of many.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers and the
	// global error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer attaches the request-scoped logger.
	ContextEnhancer *ContextEnhancer

	// Tracing installs New Relic transactions and attributes.
	Tracing *TracingMiddleware

	// Validation guards the loaded routes.
	Validation *ValidationMiddleware

	// Events records validation outcomes as New Relic custom events.
	Events *EventRecorder
}

// NewMiddlewares constructs all middleware components. Without New Relic
// the tracing and event parts are no-ops.
func NewMiddlewares(s *server.Server) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	events := NewEventRecorder(s)

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		Validation:      NewValidationMiddleware(s, events),
		Events:          events,
	}
}
