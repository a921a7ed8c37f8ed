package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Strob0t/folio/internal/config"
)

func TestNew(t *testing.T) {
	cfg := config.Logging{Level: "debug", Service: "test-svc", Format: "json"}
	l, closer := New(cfg)
	defer closer.Close()
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewAsync(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Logging{Level: "info", Service: "test-svc", Format: "json", Async: true}
	l, closer := NewWithWriter(cfg, &buf)
	l.Info("section saved", "section", "home/hero")
	closer.Close()

	if !strings.Contains(buf.String(), `"msg":"section saved"`) {
		t.Errorf("expected flushed record, got %q", buf.String())
	}
}

func TestNewWithWriter_JSONCarriesServiceAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	l, closer := NewWithWriter(config.Logging{Level: "info", Service: "folio", Format: "json"}, &buf)
	defer closer.Close()

	ctx := WithRequestID(context.Background(), "req-42")
	l.InfoContext(ctx, "section updated")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["service"] != "folio" {
		t.Errorf("expected service folio, got %v", rec["service"])
	}
	if rec["request_id"] != "req-42" {
		t.Errorf("expected request_id req-42, got %v", rec["request_id"])
	}
}

func TestNewWithWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	l, closer := NewWithWriter(config.Logging{Level: "warn", Service: "folio-cli", Format: "text"}, &buf)
	defer closer.Close()

	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "service=folio-cli") {
		t.Errorf("unexpected text output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"unknown", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input).String()
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()

	if got := RequestID(ctx); got != "" {
		t.Errorf("expected empty request ID, got %q", got)
	}

	ctx = WithRequestID(ctx, "req-123")
	if got := RequestID(ctx); got != "req-123" {
		t.Errorf("expected req-123, got %q", got)
	}
}

func TestWithSectionTagsRecords(t *testing.T) {
	var buf bytes.Buffer
	l, closer := NewWithWriter(config.Logging{Level: "info", Service: "folio", Format: "json"}, &buf)
	defer closer.Close()

	l.InfoContext(WithSection(context.Background(), "home", "faq_1700000000000"), "section created")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["page_key"] != "home" || rec["section_key"] != "faq_1700000000000" {
		t.Errorf("unexpected section attrs %v / %v", rec["page_key"], rec["section_key"])
	}
	if _, ok := rec["request_id"]; ok {
		t.Error("request_id should be absent without one in the context")
	}
}
