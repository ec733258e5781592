package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractClientIP(t *testing.T) {
	d := NewDetector(nil)

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"direct", "203.0.113.7:4000", "", "", "203.0.113.7"},
		{"untrusted proxy ignores headers", "203.0.113.7:4000", "198.51.100.1", "", "203.0.113.7"},
		{"trusted proxy uses first forwarded", "10.0.0.2:4000", "198.51.100.1, 10.0.0.3", "", "198.51.100.1"},
		{"trusted proxy falls back to real ip", "127.0.0.1:4000", "garbage", "198.51.100.9", "198.51.100.9"},
		{"unparsable remote addr", "not-an-ip", "", "", "not-an-ip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/month", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectorMiddleware(t *testing.T) {
	d := NewDetector(nil)
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		method, target, agent string
		wantStatus            int
	}{
		{http.MethodGet, "/api/transactions", "flux-cli", http.StatusNoContent},
		{http.MethodGet, "/.env", "", http.StatusNoContent},
		{http.MethodGet, "/api/goals", "sqlmap/1.7", http.StatusNoContent},
		{"TRACE", "/api/goals", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(tt.method, tt.target, nil)
		r.Header.Set("User-Agent", tt.agent)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		if rec.Code != tt.wantStatus {
			t.Errorf("%s %s: status = %d, want %d", tt.method, tt.target, rec.Code, tt.wantStatus)
		}
	}

	m := d.GetMetrics()
	if m.SuspiciousRequests != 2 || m.BlockedRequests != 1 {
		t.Errorf("metrics = %+v, want 2 suspicious and 1 blocked", m)
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	for key, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := rec.Header().Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS sent over plain HTTP")
	}

	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	r.TLS = &tls.ConnectionState{}
	h.ServeHTTP(rec, r)
	if got := rec.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}
