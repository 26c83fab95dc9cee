package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/v8n/internal/config"
	"github.com/deppfellow/v8n/internal/errs"
	"github.com/deppfellow/v8n/internal/logger"
	"github.com/deppfellow/v8n/internal/routespec"
	"github.com/deppfellow/v8n/internal/server"
	"github.com/deppfellow/v8n/internal/validation"
)

const routes = `
routes:
  - name: get-item
    method: GET
    path: /items/:id
    schema:
      params:
        type: object
        properties:
          id: {type: integer}
      headers:
        type: object
        required: [x-api-key]
  - name: put-item
    method: PUT
    path: /items/:id
    allow_unknown: false
    schema:
      body:
        type: object
        properties:
          title: {type: string}
`

func newServer(t *testing.T, set *routespec.Set) *server.Server {
	t.Helper()

	cfg := config.Default()
	cfg.Observability = config.DefaultObservabilityConfig()
	log := zerolog.Nop()

	s, err := server.New(cfg, &log, &logger.LoggerService{}, set)
	require.NoError(t, err)
	return s
}

func parseRoutes(t *testing.T) *routespec.Set {
	t.Helper()
	set, err := routespec.Parse([]byte(routes), routespec.Options{})
	require.NoError(t, err)
	return set
}

func TestCheckRequest_Data(t *testing.T) {
	req := CheckRequest{
		Method:  "GET",
		Path:    "/items/1",
		Headers: map[string]any{"X-Api-Key": "k"},
	}

	data := req.Data(map[string]string{"id": "1"})
	assert.Equal(t, map[string]any{}, data[validation.RegionBody])
	assert.Equal(t, map[string]any{}, data[validation.RegionQuery])
	assert.Equal(t, map[string]any{"id": "1"}, data[validation.RegionParams])
	assert.Equal(t, map[string]any{"x-api-key": "k"}, data[validation.RegionHeaders])
}

func TestCheckAgainst(t *testing.T) {
	set := parseRoutes(t)
	ctx := context.Background()

	res, err := CheckAgainst(ctx, set, CheckRequest{
		Method:  "GET",
		Path:    "/items/12",
		Headers: map[string]any{"X-API-Key": "secret"},
	})
	require.NoError(t, err)
	assert.Equal(t, &CheckResponse{Route: "get-item", Valid: true}, res)

	res, err = CheckAgainst(ctx, set, CheckRequest{Method: "GET", Path: "/items/twelve"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.NotNil(t, res.Error)
	assert.Equal(t, validation.ErrorName, res.Error.Name)
	require.Len(t, res.Error.Errors, 2)
	assert.Equal(t, "params", res.Error.Errors[0].Context["region"])
	assert.Equal(t, "headers", res.Error.Errors[1].Context["region"])

	res, err = CheckAgainst(ctx, set, CheckRequest{
		Method: "PUT",
		Path:   "/items/1",
		Body:   map[string]any{"title": "x", "color": "red"},
	})
	require.NoError(t, err)
	require.False(t, res.Valid)
	assert.Equal(t, []string{"color"}, res.Error.Errors[0].Path)

	_, err = CheckAgainst(ctx, set, CheckRequest{Method: "POST", Path: "/items/1"})
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, CodeRouteNotFound, httpErr.Code)
}

func TestRouteTable(t *testing.T) {
	table := RouteTable(parseRoutes(t))
	require.Len(t, table, 2)

	assert.Equal(t, RouteInfo{
		Name:    "get-item",
		Method:  "GET",
		Path:    "/items/:id",
		Regions: []string{"params", "headers"},
		AllowUnknown: map[string]bool{
			"body": true, "query": true, "params": true, "headers": true,
		},
	}, table[0])
	assert.Equal(t, []string{"body"}, table[1].Regions)
	assert.False(t, table[1].AllowUnknown["body"])
}

func TestCheckHealth(t *testing.T) {
	tests := map[string]struct {
		set    *routespec.Set
		status int
	}{
		"routes loaded": {set: parseRoutes(t), status: http.StatusOK},
		"no routes":     {set: &routespec.Set{}, status: http.StatusServiceUnavailable},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h := NewHealthHandler(newServer(t, tt.set))

			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)
			require.NoError(t, h.CheckHealth(c))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
