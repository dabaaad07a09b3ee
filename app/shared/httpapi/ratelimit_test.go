package httpapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	limiter := NewClientLimiter(0, 2)
	h := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:5001").Code)
	denied := call("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, denied.Code)
	assert.Empty(t, denied.Header().Get("Retry-After"), "a zero rate never refills")
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:5000").Code, "buckets are per address")
	assert.Equal(t, http.StatusNoContent, call("no-port").Code)
}

func TestRateLimit_RetryAfter(t *testing.T) {
	limiter := NewClientLimiter(0.5, 1)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	h := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call().Code)
	denied := call()
	assert.Equal(t, http.StatusTooManyRequests, denied.Code)
	assert.Equal(t, "2", denied.Header().Get("Retry-After"))

	now = now.Add(2 * time.Second)
	assert.Equal(t, http.StatusNoContent, call().Code, "the denied request did not spend the refill")
}

func TestClientLimiter_SweepsIdleBuckets(t *testing.T) {
	limiter := NewClientLimiter(1, 1)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 20; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	assert.Equal(t, 20, limiter.Clients())

	now = now.Add(idleTTL / 2)
	limiter.Allow("10.0.0.1")

	now = now.Add(idleTTL/2 + time.Minute)
	limiter.Allow("192.168.0.1")
	assert.Equal(t, 2, limiter.Clients(), "only the recently used bucket and the new one remain")
}
