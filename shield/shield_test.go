package shield_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hazyhaar/tamis/shield"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})
}

func TestSecurityHeaders(t *testing.T) {
	h := shield.SecurityHeaders(shield.DefaultHeaders())(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		"Permissions-Policy":      "camera=(), microphone=(), geolocation=()",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestRequestID(t *testing.T) {
	var ctxID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = shield.GetRequestID(r.Context())
	})
	rec := httptest.NewRecorder()
	shield.RequestID(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sift", nil))

	header := rec.Header().Get("X-Request-ID")
	if len(header) != 8 {
		t.Errorf("X-Request-ID = %q, want 8 hex chars", header)
	}
	if ctxID != header {
		t.Errorf("context ID %q != header ID %q", ctxID, header)
	}
}

func TestGetRequestIDUnset(t *testing.T) {
	if id := shield.GetRequestID(context.Background()); id != "" {
		t.Errorf("GetRequestID = %q, want empty", id)
	}
}

func TestGetLoggerDefault(t *testing.T) {
	if shield.GetLogger(context.Background()) == nil {
		t.Error("GetLogger returned nil for bare context")
	}
}

func TestMaxBody(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			var maxErr *http.MaxBytesError
			if !errors.As(err, &maxErr) {
				t.Errorf("read error = %v, want MaxBytesError", err)
			}
			http.Error(w, "too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	h := shield.MaxBody(16)(inner)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sift", strings.NewReader("tiny")))
	if rec.Code != http.StatusOK {
		t.Errorf("small body: status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sift", strings.NewReader(strings.Repeat("x", 64))))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("large body: status = %d, want 413", rec.Code)
	}
}

func TestHeadToGet(t *testing.T) {
	var method string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { method = r.Method })
	rec := httptest.NewRecorder()
	shield.HeadToGet(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/v1/health", nil))
	if method != http.MethodGet {
		t.Errorf("inner method = %s, want GET", method)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := shield.NewRateLimiter(2, time.Minute)
	h := rl.Middleware(okHandler())

	do := func(ip, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = ip + ":12345"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := do("10.0.0.1", "/v1/sift"); rec.Code != http.StatusOK {
		t.Fatalf("request 1: status = %d, want 200", rec.Code)
	}
	if rec := do("10.0.0.1", "/v1/sift"); rec.Code != http.StatusOK {
		t.Fatalf("request 2: status = %d, want 200", rec.Code)
	}

	rec := do("10.0.0.1", "/v1/sift")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("request 3: status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
	}

	// Another IP and another endpoint keep their own buckets.
	if rec := do("10.0.0.2", "/v1/sift"); rec.Code != http.StatusOK {
		t.Errorf("other IP: status = %d, want 200", rec.Code)
	}
	if rec := do("10.0.0.1", "/v1/runs"); rec.Code != http.StatusOK {
		t.Errorf("other endpoint: status = %d, want 200", rec.Code)
	}
}

func TestRateLimiterExclude(t *testing.T) {
	rl := shield.NewRateLimiter(1, time.Minute, "/v1/health")
	h := rl.Middleware(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("excluded request %d: status = %d, want 200", i, rec.Code)
		}
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"remote addr with port", "192.0.2.7:43210", "", "192.0.2.7"},
		{"remote addr bare", "192.0.2.7", "", "192.0.2.7"},
		{"single forwarded", "10.0.0.1:80", "203.0.113.9", "203.0.113.9"},
		{"forwarded chain takes first", "10.0.0.1:80", "203.0.113.9, 10.0.0.2, 10.0.0.3", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := shield.ExtractIP(req); got != tt.want {
				t.Errorf("ExtractIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	h := shield.BasicAuth("ops", string(hash), "/v1/health")(okHandler())

	do := func(path, user, pass string, withCreds bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if withCreds {
			req.SetBasicAuth(user, pass)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := do("/v1/runs", "ops", "s3cret", true); rec.Code != http.StatusOK {
		t.Errorf("valid creds: status = %d, want 200", rec.Code)
	}
	if rec := do("/v1/runs", "ops", "wrong", true); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status = %d, want 401", rec.Code)
	}
	if rec := do("/v1/runs", "intruder", "s3cret", true); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad user: status = %d, want 401", rec.Code)
	}

	rec := do("/v1/runs", "", "", false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no creds: status = %d, want 401", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); !strings.Contains(got, "Basic") {
		t.Errorf("WWW-Authenticate = %q, want Basic challenge", got)
	}

	if rec := do("/v1/health", "", "", false); rec.Code != http.StatusOK {
		t.Errorf("exempt path: status = %d, want 200", rec.Code)
	}
}

func TestStack(t *testing.T) {
	// The composed default stack tags responses with both the security
	// headers and a request ID.
	var h http.Handler = okHandler()
	stack := shield.Stack(1 << 20)
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing from stack")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("request ID missing from stack")
	}
}
