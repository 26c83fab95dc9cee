package middleware

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/v8n/internal/config"
	"github.com/deppfellow/v8n/internal/logger"
	"github.com/deppfellow/v8n/internal/routespec"
	"github.com/deppfellow/v8n/internal/server"
)

const testRoutes = `
routes:
  - name: create-user
    method: POST
    path: /teams/:team/users
    allow_unknown: false
    schema:
      body:
        type: object
        required: [name]
        properties:
          name: {type: string}
          age: {type: integer}
      params:
        type: object
        properties:
          team: {type: string, pattern: "^[a-z]+$"}
  - name: list-users
    method: GET
    path: /teams/:team/users
    schema:
      query:
        type: object
        properties:
          limit: {type: integer, maximum: 50}
      headers:
        type: object
        required: [x-tenant]
`

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	cfg := config.Default()
	cfg.Observability = config.DefaultObservabilityConfig()

	routes, err := routespec.Parse([]byte(testRoutes), routespec.Options{})
	require.NoError(t, err)

	log := zerolog.Nop()
	s, err := server.New(cfg, &log, &logger.LoggerService{}, routes)
	require.NoError(t, err)
	return s
}

func findRoute(t *testing.T, s *server.Server, method, path string) *routespec.Route {
	t.Helper()
	route, _, ok := s.Routes.Find(method, path)
	require.True(t, ok, "no route for %s %s", method, path)
	return route
}
