package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/v8n/internal/routespec"
	"github.com/deppfellow/v8n/internal/server"
	"github.com/deppfellow/v8n/internal/validation"
)

// Validate adapts v to Echo. Valid requests continue to next; otherwise
// the error (a *validation.Error, or an engine failure) is returned so the
// HTTPErrorHandler answers. The response is never written here.
func Validate(v *validation.Validator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := NewEchoRequest(c)
			c.Set(RequestDataKey, req)

			if err := v.Validate(c.Request().Context(), req); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// ErrorHandlerFunc receives the requests ValidateHTTP rejects.
type ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)

// ValidateHTTP adapts v to net/http middleware, for chi or any router that
// uses func(http.Handler) http.Handler. Rejected requests go to onError,
// WriteError when nil.
func ValidateHTTP(v *validation.Validator, onError ErrorHandlerFunc) func(http.Handler) http.Handler {
	if onError == nil {
		onError = WriteError
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := v.Validate(r.Context(), NewHTTPRequest(r)); err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ValidationMiddleware wraps Validate with logging, metrics and tracing for
// the routes loaded into the server.
type ValidationMiddleware struct {
	server *server.Server
	events *EventRecorder
}

func NewValidationMiddleware(s *server.Server, events *EventRecorder) *ValidationMiddleware {
	return &ValidationMiddleware{
		server: s,
		events: events,
	}
}

// Route returns the middleware guarding route.
func (vm *ValidationMiddleware) Route(route *routespec.Route) echo.MiddlewareFunc {
	validate := Validate(route.Validator())

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			passed := false

			// Errors returned by next belong to the handler, so the outcome
			// is observed before it runs.
			err := validate(func(c echo.Context) error {
				passed = true
				vm.observe(c, route, time.Since(start), nil)
				return next(c)
			})(c)

			if !passed {
				vm.observe(c, route, time.Since(start), err)
			}
			return err
		}
	}
}

func (vm *ValidationMiddleware) observe(c echo.Context, route *routespec.Route, took time.Duration, err error) {
	vm.server.Metrics.Observe(route.Name, took, err)

	logger := GetLogger(c).With().
		Str("operation", "validate").
		Str("route", route.Name).
		Dur("validation_duration", took).
		Logger()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("validation.route", route.Name)
		txn.AddAttribute("validation.duration_ms", took.Milliseconds())
	}

	if err == nil {
		if txn != nil {
			txn.AddAttribute("validation.status", "success")
			txn.AddAttribute("validation.violations", 0)
		}
		logger.Debug().Msg("request validation successful")
		return
	}

	vErr, ok := validation.AsError(err)
	if !ok {
		if txn != nil {
			txn.AddAttribute("validation.status", "error")
		}
		logger.Error().Err(err).Msg("request validation errored")
		return
	}

	if txn != nil {
		txn.AddAttribute("validation.status", "failed")
		txn.AddAttribute("validation.violations", len(vErr.Errors))
	}
	vm.events.RecordValidationFailed(route.Name, vErr)

	logger.Warn().
		Int("violations", len(vErr.Errors)).
		Strs("regions", failedRegions(vErr)).
		Msg("request validation failed")
}
