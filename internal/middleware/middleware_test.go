package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akolanti/ogtriage/pkg/logger_i"
)

func okHandler(seen *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*seen = logger_i.TraceID(r.Context())
		w.WriteHeader(http.StatusOK)
	}
}

func TestWrap_Auth(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		header   string
		wantCode int
	}{
		{"Valid_Token", Options{AuthToken: "secret"}, "Bearer secret", http.StatusOK},
		{"Wrong_Token", Options{AuthToken: "secret"}, "Bearer nope", http.StatusUnauthorized},
		{"Missing_Bearer_Prefix", Options{AuthToken: "secret"}, "secret", http.StatusUnauthorized},
		{"Empty_Header", Options{AuthToken: "secret"}, "", http.StatusUnauthorized},
		{"No_Token_Configured", Options{}, "Bearer anything", http.StatusUnauthorized},
		{"Bypass", Options{NoAuthBypass: true}, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := New(tt.opts).Wrap(okHandler(&seen))
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}

func TestWrap_TraceId(t *testing.T) {
	var seen string
	h := New(Options{NoAuthBypass: true}).Wrap(okHandler(&seen))

	t.Run("Propagates_Incoming", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Trace-Id", "trace-123")
		rec := httptest.NewRecorder()
		h(rec, req)
		if seen != "trace-123" || rec.Header().Get("X-Trace-Id") != "trace-123" {
			t.Errorf("trace not propagated: ctx=%q header=%q", seen, rec.Header().Get("X-Trace-Id"))
		}
	})

	t.Run("Generates_When_Missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if seen == "" || rec.Header().Get("X-Trace-Id") != seen {
			t.Errorf("expected generated trace id, got ctx=%q header=%q", seen, rec.Header().Get("X-Trace-Id"))
		}
	})
}

func TestWrap_RateLimit(t *testing.T) {
	var seen string
	h := New(Options{NoAuthBypass: true, RateLimit: 1, Burst: 2}).Wrap(okHandler(&seen))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected second client to pass, got %d", rec.Code)
	}
}

func TestIPRateLimiter_ReusesLimiter(t *testing.T) {
	l := NewIPRateLimiter(1, 1)
	if l.limiterFor("a") != l.limiterFor("a") {
		t.Error("expected the same limiter for the same ip")
	}
	if l.limiterFor("a") == l.limiterFor("b") {
		t.Error("expected distinct limiters per ip")
	}
}

func TestIPRateLimiter_EvictsIdleClients(t *testing.T) {
	now := time.Now()
	l := NewIPRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.2")
	if got := l.tracked(); got != 2 {
		t.Fatalf("expected 2 tracked clients, got %d", got)
	}

	now = now.Add(limiterIdleTTL + time.Second)
	l.Allow("10.0.0.3")
	if got := l.tracked(); got != 1 {
		t.Errorf("expected idle clients to be swept, %d remain", got)
	}
}
