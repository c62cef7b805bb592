package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMetricsCounters verifies counters increment through the vectors
// the adapter uses.
func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RequestsTotal.WithLabelValues("generate", "ok").Inc()
	m.RequestsTotal.WithLabelValues("generate", "error").Inc()
	m.ErrorsTotal.WithLabelValues("provider_error").Inc()
	m.BreakerTrips.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("generate", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("generate", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("provider_error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BreakerTrips))
}

// TestMetricsHandler verifies the endpoint serves the registry.
func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.RateLimitWait.Observe(0.05)

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
