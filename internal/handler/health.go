package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/v8n/internal/middleware"
	"github.com/deppfellow/v8n/internal/server"
)

// HealthHandler reports whether the service is ready to validate requests.
type HealthHandler struct {
	Handler
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth returns 200 when at least one route is loaded and 503
// otherwise.
//
//	{
//	  "status": "healthy",
//	  "timestamp": "...",
//	  "environment": "production",
//	  "uptime": "1h2m3s",
//	  "checks": {"routes": {"status": "healthy", "count": 12}}
//	}
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	count := 0
	if h.server.Routes != nil {
		count = h.server.Routes.Len()
	}

	routesCheck := map[string]interface{}{
		"status": "healthy",
		"count":  count,
	}
	isHealthy := count > 0
	if !isHealthy {
		routesCheck["status"] = "unhealthy"
	}

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"uptime":      time.Since(h.server.StartedAt).Round(time.Second).String(),
		"checks": map[string]interface{}{
			"routes": routesCheck,
		},
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed: no routes loaded")

		if app := h.server.LoggerService.GetApplication(); app != nil {
			app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
				"check_type": "routes",
				"operation":  "health_check",
				"error_type": "no_routes",
			})
		}

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Int("routes", count).
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}
