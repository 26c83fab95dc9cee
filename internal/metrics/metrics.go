// Package metrics exposes Prometheus collectors for request validation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deppfellow/v8n/internal/validation"
)

// Validation results.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Metrics holds the validation collectors and the registry they live in.
type Metrics struct {
	registry    *prometheus.Registry
	validations *prometheus.CounterVec
	violations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New registers the collectors in a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "v8n",
				Name:      "validations_total",
				Help:      "Validated requests by route and result.",
			},
			[]string{"route", "result"},
		),
		violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "v8n",
				Name:      "violations_total",
				Help:      "Reported violations by route and region.",
			},
			[]string{"route", "region"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "v8n",
				Name:      "validation_duration_seconds",
				Help:      "Time spent validating a request.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"route"},
		),
	}

	m.registry.MustRegister(
		m.validations,
		m.violations,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one validation outcome. err is what the validator
// returned.
func (m *Metrics) Observe(route string, took time.Duration, err error) {
	if m == nil {
		return
	}

	m.duration.WithLabelValues(route).Observe(took.Seconds())

	if err == nil {
		m.validations.WithLabelValues(route, ResultValid).Inc()
		return
	}

	vErr, ok := validation.AsError(err)
	if !ok {
		m.validations.WithLabelValues(route, ResultError).Inc()
		return
	}

	m.validations.WithLabelValues(route, ResultInvalid).Inc()
	for _, v := range vErr.Errors {
		region, _ := v.Context["region"].(string)
		if region == "" {
			region = "unknown"
		}
		m.violations.WithLabelValues(route, region).Inc()
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
