package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Black-And-White-Club/stage-console/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func testHandler(d HTTPDeps) http.Handler {
	d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if d.Config.RateBurst == 0 {
		d.Config.RateLimit, d.Config.RateBurst = 100, 100
	}
	return NewHTTPHandler(d)
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	healthy := testHandler(HTTPDeps{Health: func(context.Context) error { return nil }})
	assert.Equal(t, http.StatusOK, do(healthy, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)

	down := testHandler(HTTPDeps{Health: func(context.Context) error { return errors.New("connection refused") }})
	assert.Equal(t, http.StatusServiceUnavailable, do(down, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	without := testHandler(HTTPDeps{})
	assert.Equal(t, http.StatusNotFound, do(without, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)

	with := testHandler(HTTPDeps{Registry: prometheus.NewRegistry()})
	assert.Equal(t, http.StatusOK, do(with, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)
}

func TestCORSPreflight(t *testing.T) {
	h := testHandler(HTTPDeps{Config: config.HTTPConfig{AllowedOrigins: []string{"https://console.example.org"}}})

	req := httptest.NewRequest(http.MethodOptions, "/api/events/spring-open/undo", nil)
	req.Header.Set("Origin", "https://console.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := do(h, req)

	assert.Equal(t, "https://console.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitAppliesToAPI(t *testing.T) {
	h := testHandler(HTTPDeps{Config: config.HTTPConfig{RateLimit: 0.001, RateBurst: 1}})

	first := do(h, httptest.NewRequest(http.MethodGet, "/api/events/spring-open/logs", nil))
	second := do(h, httptest.NewRequest(http.MethodGet, "/api/events/spring-open/logs", nil))
	assert.NotEqual(t, http.StatusTooManyRequests, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	assert.Equal(t, http.StatusOK, do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}
