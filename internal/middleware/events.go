package middleware

import (
	"strings"

	"github.com/deppfellow/v8n/internal/server"
	"github.com/deppfellow/v8n/internal/validation"
)

// ValidationFailedEvent is the New Relic custom event type recorded for
// every rejected request.
const ValidationFailedEvent = "ValidationFailed"

// EventRecorder records validation outcomes as New Relic custom events.
type EventRecorder struct {
	server *server.Server
}

func NewEventRecorder(s *server.Server) *EventRecorder {
	return &EventRecorder{
		server: s,
	}
}

// RecordValidationFailed records one event per rejected request with the
// route, the violation count and the regions that failed.
func (r *EventRecorder) RecordValidationFailed(route string, err *validation.Error) {
	app := r.server.LoggerService.GetApplication()
	if app == nil || err == nil {
		return
	}

	app.RecordCustomEvent(ValidationFailedEvent, map[string]interface{}{
		"route":      route,
		"violations": len(err.Errors),
		"regions":    strings.Join(failedRegions(err), ","),
	})
}

// failedRegions lists the regions with at least one violation, in region
// order.
func failedRegions(err *validation.Error) []string {
	seen := map[string]bool{}
	for _, v := range err.Errors {
		if region, ok := v.Context["region"].(string); ok {
			seen[region] = true
		}
	}

	var out []string
	for _, region := range validation.Regions {
		if seen[string(region)] {
			out = append(out, string(region))
		}
	}
	return out
}
