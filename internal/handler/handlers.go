package handler

import (
	"github.com/deppfellow/v8n/internal/server"
)

// Handlers groups all HTTP handlers so router setup receives one value.
type Handlers struct {
	Health *HealthHandler // Health serves the liveness/readiness endpoint.
	Routes *RoutesHandler // Routes lists the validated routes.
	Check  *CheckHandler  // Check dry-runs a request against its route.
	Echo   *EchoHandler   // Echo answers requests that passed validation.
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(s),
		Routes: NewRoutesHandler(s),
		Check:  NewCheckHandler(s),
		Echo:   NewEchoHandler(s),
	}
}
