package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newFixedLimiter(rps float64, burst int, now *time.Time) *RateLimiter {
	rl := NewRateLimiter(rps, burst)
	rl.now = func() time.Time { return *now }
	return rl
}

func doFrom(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sections", http.NoBody)
	req.RemoteAddr = ip + ":5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	now := time.Unix(1700000000, 0)
	handler := newFixedLimiter(10, 10, &now).Handler(okHandler)

	for i := range 10 {
		if rec := doFrom(handler, "192.168.1.1"); rec.Code != http.StatusOK {
			t.Errorf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimiterRejectsOverLimit(t *testing.T) {
	now := time.Unix(1700000000, 0)
	handler := newFixedLimiter(1, 5, &now).Handler(okHandler)

	for range 5 {
		doFrom(handler, "192.168.1.1")
	}

	rec := doFrom(handler, "192.168.1.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("expected Retry-After 1, got %q", got)
	}
}

func TestRateLimiterRefills(t *testing.T) {
	now := time.Unix(1700000000, 0)
	handler := newFixedLimiter(1, 1, &now).Handler(okHandler)

	if rec := doFrom(handler, "10.0.0.1"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := doFrom(handler, "10.0.0.1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	now = now.Add(time.Second)
	if rec := doFrom(handler, "10.0.0.1"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after refill, got %d", rec.Code)
	}
}

func TestRateLimiterSetsHeaders(t *testing.T) {
	now := time.Unix(1700000000, 0)
	handler := newFixedLimiter(10, 10, &now).Handler(okHandler)

	rec := doFrom(handler, "192.168.1.1")
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "9" {
		t.Errorf("expected X-RateLimit-Remaining 9, got %q", got)
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Error("expected X-RateLimit-Reset header")
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	now := time.Unix(1700000000, 0)
	handler := newFixedLimiter(1, 2, &now).Handler(okHandler)

	for range 2 {
		doFrom(handler, "10.0.0.1")
	}
	if rec := doFrom(handler, "10.0.0.1"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("IP 10.0.0.1: expected 429, got %d", rec.Code)
	}
	if rec := doFrom(handler, "10.0.0.2"); rec.Code != http.StatusOK {
		t.Errorf("IP 10.0.0.2: expected 200, got %d", rec.Code)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rl := newFixedLimiter(10, 10, &now)
	handler := rl.Handler(okHandler)

	doFrom(handler, "10.0.0.1")
	now = now.Add(time.Minute)
	doFrom(handler, "10.0.0.2")

	rl.cleanup(30 * time.Second)

	if rl.Len() != 1 {
		t.Errorf("expected 1 tracked client after cleanup, got %d", rl.Len())
	}
}
