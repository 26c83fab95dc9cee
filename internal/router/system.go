package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/v8n/internal/handler"
	"github.com/deppfellow/v8n/internal/server"
)

// registerSystemRoutes registers the endpoints that are not validated
// routes: health, the route table, the dry-run check and metrics.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.GET("/routes", h.Routes.ListRoutes)
	r.POST("/check", h.Check.Endpoint())

	if s.Metrics != nil {
		r.GET(s.Config.Observability.Metrics.Path, echo.WrapHandler(s.Metrics.Handler()))
	}
}
