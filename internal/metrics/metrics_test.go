package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/deppfellow/v8n/internal/validation"
)

func TestObserve(t *testing.T) {
	m := New()

	m.Observe("create-user", time.Millisecond, nil)
	m.Observe("create-user", time.Millisecond, validation.NewError([]validation.Violation{
		{Message: "a", Context: map[string]any{"region": "body"}},
		{Message: "b", Context: map[string]any{"region": "body"}},
		{Message: "c", Context: map[string]any{"region": "headers"}},
	}))
	m.Observe("create-user", time.Millisecond, errors.New("engine failure"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("create-user", ResultValid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("create-user", ResultInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("create-user", ResultError)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.violations.WithLabelValues("create-user", "body")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.violations.WithLabelValues("create-user", "headers")))
}

func TestObserve_NilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Observe("r", time.Millisecond, nil)
	})
}
