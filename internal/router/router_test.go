package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/v8n/internal/config"
	"github.com/deppfellow/v8n/internal/handler"
	"github.com/deppfellow/v8n/internal/logger"
	"github.com/deppfellow/v8n/internal/routespec"
	"github.com/deppfellow/v8n/internal/server"
)

const routes = `
routes:
  - name: create-order
    method: POST
    path: /orders/:shop
    allow_unknown: false
    schema:
      body:
        type: object
        required: [sku, quantity]
        properties:
          sku: {type: string}
          quantity: {type: integer, minimum: 1}
      params:
        type: object
        properties:
          shop: {type: string, minLength: 3}
  - name: list-orders
    method: GET
    path: /orders/:shop
    schema:
      query:
        type: object
        properties:
          page: {type: integer}
`

func newRouter(t *testing.T) *echo.Echo {
	t.Helper()

	cfg := config.Default()
	cfg.Observability = config.DefaultObservabilityConfig()

	set, err := routespec.Parse([]byte(routes), routespec.Options{})
	require.NoError(t, err)

	log := zerolog.Nop()
	s, err := server.New(cfg, &log, &logger.LoggerService{}, set)
	require.NoError(t, err)

	return NewRouter(s, handler.NewHandlers(s))
}

func do(t *testing.T, r http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestValidatedRoute(t *testing.T) {
	r := newRouter(t)

	rec, body := do(t, r, http.MethodPost, "/orders/acme?src=web", `{"sku":"A-1","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "create-order", body["route"])
	assert.Equal(t, map[string]any{"sku": "A-1", "quantity": 2.0}, body["body"])
	assert.Equal(t, map[string]any{"shop": "acme"}, body["params"])
	assert.Equal(t, map[string]any{"src": "web"}, body["query"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec, body = do(t, r, http.MethodPost, "/orders/ab", `{"sku":1,"quantity":0,"note":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])

	details := body["details"].(map[string]any)
	assert.Equal(t, "v8nError", details["name"])
	assert.Equal(t, "v8n error", details["message"])

	var regions []string
	for _, v := range details["errors"].([]any) {
		regions = append(regions, v.(map[string]any)["context"].(map[string]any)["region"].(string))
	}
	assert.Equal(t, []string{"body", "body", "body", "params"}, regions)
}

func TestValidatedRoute_QueryCoercion(t *testing.T) {
	r := newRouter(t)

	rec, _ := do(t, r, http.MethodGet, "/orders/acme?page=2", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, r, http.MethodGet, "/orders/acme?page=two", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSystemRoutes(t *testing.T) {
	r := newRouter(t)

	rec, body := do(t, r, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])

	rec, body = do(t, r, http.MethodGet, "/routes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["routes"], 2)

	rec, _ = do(t, r, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckEndpoint(t *testing.T) {
	r := newRouter(t)

	rec, body := do(t, r, http.MethodPost, "/check",
		`{"method":"POST","path":"/orders/acme","body":{"sku":"A-1","quantity":1}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, "create-order", body["route"])

	rec, body = do(t, r, http.MethodPost, "/check", `{"method":"POST","path":"/orders/acme","body":{}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["valid"])
	assert.Len(t, body["error"].(map[string]any)["errors"], 2)

	rec, body = do(t, r, http.MethodPost, "/check", `{"method":"FETCH","path":"orders","extra":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])

	rec, body = do(t, r, http.MethodPost, "/check", `{"method":"DELETE","path":"/orders/acme"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, handler.CodeRouteNotFound, body["code"])
}

func TestMetricsEndpoint(t *testing.T) {
	r := newRouter(t)

	do(t, r, http.MethodGet, "/orders/acme?page=2", "")

	rec, _ := do(t, r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `v8n_validations_total{result="valid",route="list-orders"} 1`)
}
