package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Close()
	now := time.Date(2024, 7, 25, 15, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("expected burst of two")
	}
	if rl.Allow("a") {
		t.Fatal("expected empty bucket")
	}
	if !rl.Allow("b") {
		t.Fatal("expected separate bucket per client")
	}
	now = now.Add(time.Second)
	if !rl.Allow("a") {
		t.Fatal("expected one token after a second")
	}

	now = now.Add(time.Hour)
	rl.evict()
	if len(rl.buckets) != 0 {
		t.Fatalf("expected idle buckets evicted, got %d", len(rl.buckets))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	defer rl.Close()
	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := []int{}
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes: %v", codes)
	}
}
