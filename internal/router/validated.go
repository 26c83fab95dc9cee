package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/v8n/internal/handler"
	"github.com/deppfellow/v8n/internal/middleware"
	"github.com/deppfellow/v8n/internal/server"
)

// registerValidatedRoutes mounts every loaded route behind its validation
// middleware.
func registerValidatedRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers, mw *middleware.Middlewares) {
	for _, route := range s.Routes.Routes() {
		r.Add(route.Method, route.Path, h.Echo.For(route), mw.Validation.Route(route)).Name = route.Name

		s.Logger.Debug().
			Str("route", route.Name).
			Str("method", route.Method).
			Str("path", route.Path).
			Msg("validated route registered")
	}
}
