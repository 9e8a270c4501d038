package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitDeniesOverBurst(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := RateLimit(1, 1)

	req := httptest.NewRequest(http.MethodPost, "/webchat/message", nil)
	req.RemoteAddr = "10.0.0.9:1234"

	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: expected %d, got %d", http.StatusOK, rec.Code)
	}

	rec = httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
}

func TestRateLimitKeysBySession(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := RateLimit(1, 1)

	// Two sessions behind one address each get their own bucket.
	for _, sid := range []string{"sess-a", "sess-b"} {
		req := httptest.NewRequest(http.MethodGet, "/webchat/history?session="+sid, nil)
		req.RemoteAddr = "10.0.0.9:1234"
		rec := httptest.NewRecorder()
		mw(handler).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("session %s: expected %d, got %d", sid, http.StatusOK, rec.Code)
		}
	}

	// The header form shares the bucket with the query form.
	req := httptest.NewRequest(http.MethodPost, "/webchat/message", nil)
	req.Header.Set("X-Session-Id", "sess-a")
	req.RemoteAddr = "172.16.0.3:9000"
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected %d for exhausted session bucket, got %d", http.StatusTooManyRequests, rec.Code)
	}
}
