package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1235"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1236"))

	// a different client has its own bucket
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234"))
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	now := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now

	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2")
	assert.Len(t, rl.limiters, 2)

	now = now.Add(idleLimiterTTL / 2)
	rl.getLimiter("10.0.0.2")

	now = now.Add(idleLimiterTTL / 2)
	rl.getLimiter("10.0.0.3")

	assert.Len(t, rl.limiters, 2)
	assert.NotContains(t, rl.limiters, "10.0.0.1")
	assert.Contains(t, rl.limiters, "10.0.0.2")
	assert.Contains(t, rl.limiters, "10.0.0.3")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:5555"
	assert.Equal(t, "192.168.1.5", clientIP(req))

	req.RemoteAddr = "not-an-addr"
	assert.Equal(t, "not-an-addr", clientIP(req))
}
