package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flux/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Output: &buf})
	m := NewMiddleware(logger, func(*http.Request) string { return "10.0.0.1" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		log.FromContext(r.Context()).InfoContext(r.Context(), "inside handler")
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/goals", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("request id = %q, want req_ prefix", seen)
	}
	if got := rec.Header().Get(HeaderRequestID); got != seen {
		t.Errorf("response header = %q, want %q", got, seen)
	}
	out := buf.String()
	for _, want := range []string{"inside handler", "request_id=" + seen, "HTTP request completed", "status_code=201"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if got := m.GetMetrics().TotalRequests; got != 1 {
		t.Errorf("TotalRequests = %d, want 1", got)
	}
}

func TestMiddlewareKeepsCallerRequestID(t *testing.T) {
	m := NewMiddleware(nil, nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		header string
		keep   bool
	}{
		{"abc-123", true},
		{"", false},
		{"bad id with spaces", false},
		{strings.Repeat("x", 65), false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		if tt.header != "" {
			req.Header.Set(HeaderRequestID, tt.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		got := rec.Header().Get(HeaderRequestID)
		if tt.keep && got != tt.header {
			t.Errorf("header %q: got %q, want it kept", tt.header, got)
		}
		if !tt.keep && !strings.HasPrefix(got, "req_") {
			t.Errorf("header %q: got %q, want a generated id", tt.header, got)
		}
	}
}
