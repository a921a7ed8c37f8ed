package http

import (
	"bufio"
	"bytes"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type hijackableRecorder struct {
	*httptest.ResponseRecorder
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return nil, nil, nil
}

func TestStatusRecorderHijack(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: &hijackableRecorder{httptest.NewRecorder()}, status: http.StatusOK}
	if _, _, err := rec.Hijack(); err != nil {
		t.Fatalf("Hijack: %v", err)
	}
	if rec.status != http.StatusSwitchingProtocols {
		t.Errorf("expected 101 after hijack, got %d", rec.status)
	}

	plain := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	if _, _, err := plain.Hijack(); err == nil {
		t.Fatal("expected error when upstream cannot hijack")
	}
}

func TestStatusRecorderFlushAndBytes(t *testing.T) {
	inner := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: inner, status: http.StatusOK}
	_, _ = rec.Write([]byte("hello"))
	_, _ = rec.Write([]byte(" world"))
	rec.Flush()

	if rec.bytes != 11 {
		t.Errorf("expected 11 bytes, got %d", rec.bytes)
	}
	if !inner.Flushed {
		t.Error("expected inner recorder to be flushed")
	}
	rec.WriteHeader(http.StatusTeapot)
	if rec.status != http.StatusOK {
		t.Errorf("status after body write must stay 200, got %d", rec.status)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origin     string
		method     string
		wantCode   int
		wantCreds  string
		wantMethod bool
	}{
		{"preflight", "https://admin.example.com", http.MethodOptions, http.StatusNoContent, "true", true},
		{"simple request", "https://admin.example.com", http.MethodGet, http.StatusOK, "true", false},
		{"wildcard drops credentials", "*", http.MethodGet, http.StatusOK, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := CORS(tt.origin)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(tt.method, "/api/v1/sections", http.NoBody))

			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, w.Code)
			}
			if called == (tt.method == http.MethodOptions) {
				t.Errorf("handler called=%v for %s", called, tt.method)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.origin {
				t.Errorf("unexpected origin header %q", got)
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCreds {
				t.Errorf("unexpected credentials header %q", got)
			}
			if got := w.Header().Get("Access-Control-Allow-Methods") != ""; got != tt.wantMethod {
				t.Errorf("allow-methods present=%v", got)
			}
		})
	}
}

func TestLoggerLevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	for _, code := range []int{http.StatusOK, http.StatusNotFound, http.StatusBadGateway} {
		h := Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(code)
		}))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
		if w.Code != code {
			t.Fatalf("expected %d, got %d", code, w.Code)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d: %q", len(lines), buf.String())
	}
	for i, want := range []string{"level=INFO", "level=WARN", "level=ERROR"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d: expected %s in %q", i, want, lines[i])
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/", http.NoBody))
	if w.Header().Get("X-Content-Type-Options") != "nosniff" || w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("missing security headers: %v", w.Header())
	}
}
