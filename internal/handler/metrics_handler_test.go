package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-scheduler-api/internal/service"
)

type pingerStub struct{ err error }

func (p pingerStub) PingContext(ctx context.Context) error { return p.err }

func TestMetricsSummary(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordGeneration("success", 2, 40*time.Millisecond)
	metrics.RecordCommit("success", 5)
	h := NewMetricsHandler(metrics, nil)
	c, w := newTestContext(http.MethodGet, "/metrics/summary", nil)

	h.Summary(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"generation_runs":1`)
	assert.Contains(t, w.Body.String(), `"unfilled_positions":2`)
	assert.Contains(t, w.Body.String(), `"assignments_committed":5`)
}

func TestMetricsPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordOracle(service.OracleOutcomeDegraded, 0, 0)
	h := NewMetricsHandler(metrics, nil)
	c, w := newTestContext(http.MethodGet, "/metrics", nil)

	h.Prometheus(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `schedule_oracle_calls_total{outcome="degraded"} 1`)
}

func TestReadyReportsDatabase(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/ready", nil)
	NewMetricsHandler(nil, pingerStub{}).Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newTestContext(http.MethodGet, "/ready", nil)
	NewMetricsHandler(nil, pingerStub{err: errors.New("down")}).Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
