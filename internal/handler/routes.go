package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/v8n/internal/routespec"
	"github.com/deppfellow/v8n/internal/server"
	"github.com/deppfellow/v8n/internal/validation"
)

// RouteInfo describes one validated route.
type RouteInfo struct {
	Name         string          `json:"name"`
	Method       string          `json:"method"`
	Path         string          `json:"path"`
	Regions      []string        `json:"regions"`
	AllowUnknown map[string]bool `json:"allow_unknown"`
}

// NewRouteInfo summarizes route.
func NewRouteInfo(route *routespec.Route) RouteInfo {
	info := RouteInfo{
		Name:         route.Name,
		Method:       route.Method,
		Path:         route.Path,
		Regions:      []string{},
		AllowUnknown: map[string]bool{},
	}

	v := route.Validator()
	for _, region := range route.Regions() {
		info.Regions = append(info.Regions, string(region))
	}
	for _, region := range validation.Regions {
		info.AllowUnknown[string(region)] = v.AllowUnknown(region)
	}
	return info
}

// RouteTable summarizes every route of set, in load order.
func RouteTable(set *routespec.Set) []RouteInfo {
	routes := set.Routes()
	out := make([]RouteInfo, 0, len(routes))
	for _, route := range routes {
		out = append(out, NewRouteInfo(route))
	}
	return out
}

// RoutesHandler serves the loaded route table.
type RoutesHandler struct {
	Handler
}

// NewRoutesHandler constructs a RoutesHandler.
func NewRoutesHandler(s *server.Server) *RoutesHandler {
	return &RoutesHandler{
		Handler: NewHandler(s),
	}
}

// ListRoutes writes {"routes": [...]}.
func (h *RoutesHandler) ListRoutes(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"routes": RouteTable(h.server.Routes),
	})
}
