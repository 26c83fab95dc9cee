package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/v8n/internal/middleware"
	"github.com/deppfellow/v8n/internal/routespec"
	"github.com/deppfellow/v8n/internal/server"
	"github.com/deppfellow/v8n/internal/validation"
)

// EchoResponse is the answer to a request that passed validation.
type EchoResponse struct {
	Route   string `json:"route"`
	Body    any    `json:"body"`
	Query   any    `json:"query"`
	Params  any    `json:"params"`
	Headers any    `json:"headers"`
}

// EchoHandler answers validated requests with the regions it received.
type EchoHandler struct {
	Handler
}

// NewEchoHandler constructs an EchoHandler.
func NewEchoHandler(s *server.Server) *EchoHandler {
	return &EchoHandler{
		Handler: NewHandler(s),
	}
}

// For returns the handler of route.
func (h *EchoHandler) For(route *routespec.Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := middleware.GetRequestData(c)

		res := EchoResponse{Route: route.Name}
		targets := map[validation.Region]*any{
			validation.RegionBody:    &res.Body,
			validation.RegionQuery:   &res.Query,
			validation.RegionParams:  &res.Params,
			validation.RegionHeaders: &res.Headers,
		}
		for region, target := range targets {
			data, err := req.RegionData(region)
			if err != nil {
				return err
			}
			*target = data
		}

		return c.JSON(http.StatusOK, res)
	}
}
