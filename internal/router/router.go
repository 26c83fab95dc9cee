// Package router builds the Echo instance: global middleware in order,
// system routes, and one validated route per loaded route definition.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/v8n/internal/handler"
	"github.com/deppfellow/v8n/internal/middleware"
	"github.com/deppfellow/v8n/internal/server"
)

// NewRouter wires middleware and routes into a new Echo instance.
//
// Order matters: the request ID feeds the New Relic attributes and the
// context logger, and the context logger must exist before the request
// logger and the validation middleware read it.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	mw := middleware.NewMiddlewares(s)

	r := echo.New()
	r.HideBanner = true
	r.HidePort = true
	r.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	r.Use(
		middleware.RequestID(),
		mw.Tracing.NewRelicMiddleware(),
		mw.Tracing.EnhanceTracing(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Global.RequestLogger(),
		mw.Global.Recover(),
		mw.Global.Secure(),
		mw.Global.CORS(),
	)

	registerSystemRoutes(r, s, h)
	registerValidatedRoutes(r, s, h, mw)

	return r
}
