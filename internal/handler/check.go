package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/v8n/internal/errs"
	"github.com/deppfellow/v8n/internal/routespec"
	"github.com/deppfellow/v8n/internal/server"
	"github.com/deppfellow/v8n/internal/validation"
)

// CodeRouteNotFound is returned when a dry run names no loaded route.
const CodeRouteNotFound = "ROUTE_NOT_FOUND"

// CheckRequest is a request described as data, to be validated without
// being sent.
type CheckRequest struct {
	Method  string         `json:"method" validate:"required,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS"`
	Path    string         `json:"path" validate:"required,startswith=/"`
	Query   map[string]any `json:"query"`
	Headers map[string]any `json:"headers"`
	Body    any            `json:"body"`
}

// Data returns the region data of the described request. Header names are
// lower-cased and a missing body is an empty object, as for live requests.
func (r CheckRequest) Data(params map[string]string) validation.Data {
	query := r.Query
	if query == nil {
		query = map[string]any{}
	}

	headers := make(map[string]any, len(r.Headers))
	for name, value := range r.Headers {
		headers[strings.ToLower(name)] = value
	}

	body := r.Body
	if body == nil {
		body = map[string]any{}
	}

	pathParams := make(map[string]any, len(params))
	for name, value := range params {
		pathParams[name] = value
	}

	return validation.Data{
		validation.RegionBody:    body,
		validation.RegionQuery:   query,
		validation.RegionParams:  pathParams,
		validation.RegionHeaders: headers,
	}
}

// CheckResponse is the outcome of a dry run.
type CheckResponse struct {
	Route string                   `json:"route"`
	Valid bool                     `json:"valid"`
	Error *validation.ErrorPayload `json:"error,omitempty"`
}

// CheckHandler validates described requests against the loaded routes.
type CheckHandler struct {
	Handler
}

// NewCheckHandler constructs a CheckHandler.
func NewCheckHandler(s *server.Server) *CheckHandler {
	return &CheckHandler{
		Handler: NewHandler(s),
	}
}

// Check answers 200 whether or not the described request is valid; the
// verdict is in the body. Unknown routes are a 404.
func (h *CheckHandler) Check(c echo.Context, req CheckRequest) (*CheckResponse, error) {
	return CheckAgainst(c.Request().Context(), h.server.Routes, req)
}

// Endpoint returns the echo handler of the dry-run endpoint.
func (h *CheckHandler) Endpoint() echo.HandlerFunc {
	return Handle(h.Handler, h.Check, http.StatusOK)
}

// CheckAgainst validates req against the matching route of set. Only a
// missing route or an engine failure is an error.
func CheckAgainst(ctx context.Context, set *routespec.Set, req CheckRequest) (*CheckResponse, error) {
	route, params, ok := set.Find(req.Method, req.Path)
	if !ok {
		code := CodeRouteNotFound
		return nil, errs.NewNotFoundError("No route matches "+req.Method+" "+req.Path, false, &code)
	}

	result := route.Validator().Check(ctx, req.Data(params))
	if result.Failure != nil {
		return nil, result.Failure
	}

	res := &CheckResponse{Route: route.Name, Valid: result.OK()}
	if result.Err != nil {
		payload := result.Err.JSON()
		res.Error = &payload
	}
	return res, nil
}
