package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/unischedule-api/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	healthy := NewMetricsHandler(nil, map[string]Pinger{
		"postgres": PingFunc(func(ctx context.Context) error { return nil }),
	}, nil)
	c, w := newTimetableContext(http.MethodGet, "/ready", nil, nil)
	healthy.Ready(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"postgres":"up"`)

	degraded := NewMetricsHandler(nil, map[string]Pinger{
		"postgres": PingFunc(func(ctx context.Context) error { return nil }),
		"redis":    PingFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
	}, nil)
	c, w = newTimetableContext(http.MethodGet, "/ready", nil, nil)
	degraded.Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), `"redis":"down"`)
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.ObserveGeneration(service.OutcomeSuccess, 1, 0, 0)
	handler := NewMetricsHandler(metrics, nil, nil)
	c, w := newTimetableContext(http.MethodGet, "/metrics", nil, nil)

	handler.Prometheus(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "timetable_generation_runs_total")

	c, w = newTimetableContext(http.MethodGet, "/health", nil, nil)
	handler.Health(c)
	require.Equal(t, http.StatusOK, w.Code)
}
