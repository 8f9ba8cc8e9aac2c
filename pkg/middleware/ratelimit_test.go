package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vanisarees/storefront/pkg/logger"
)

func limitedRequest(sessionID, remote string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.RemoteAddr = remote
	if sessionID != "" {
		req = req.WithContext(logger.WithSessionID(req.Context(), sessionID))
	}
	return req
}

func TestRateLimit_PerSessionBucket(t *testing.T) {
	h := RateLimit(1, 2, logger.Discard())(http.HandlerFunc(ok))

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, limitedRequest("s1", "10.0.0.1:5000"))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, limitedRequest("s2", "10.0.0.1:5000"))
	assert.Equal(t, http.StatusOK, rec.Code, "another session on the same address has its own bucket")
}

func TestRateLimit_RejectionEnvelope(t *testing.T) {
	h := RateLimit(1, 1, logger.Discard())(http.HandlerFunc(ok))

	h.ServeHTTP(httptest.NewRecorder(), limitedRequest("", "10.0.0.2:5000"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, limitedRequest("", "10.0.0.2:6000"))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"RATE_LIMITED"`)
}

func TestLimiterStore_EvictsStaleVisitors(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store := newLimiterStore(5, 5, time.Minute)
	store.now = func() time.Time { return now }
	store.lastSweep = now

	assert.True(t, store.allow("a"))
	assert.True(t, store.allow("b"))
	assert.Equal(t, 2, store.len())

	now = now.Add(2 * time.Minute)
	assert.True(t, store.allow("b"))
	assert.Equal(t, 1, store.len())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
