package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/neomorfeo/siteclone/internal/config"
)

func TestNew_WritesJSONWithService(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.Logging{Level: "debug"}, "test-svc", &buf)

	l.Debug("hello", "k", "v")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decoding record: %v (%s)", err, buf.String())
	}
	if rec["service"] != "test-svc" || rec["msg"] != "hello" || rec["k"] != "v" {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.Logging{Level: "warn"}, "svc", &buf)

	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info record should be filtered, got %s", buf.String())
	}
}

func TestNew_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.Logging{}, "svc", &buf).With("component", "http")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	l.InfoContext(ctx, "handled")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decoding record: %v", err)
	}
	if rec["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", rec["request_id"])
	}
	if rec["component"] != "http" {
		t.Errorf("component = %v, want http", rec["component"])
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
		{"ERROR", "ERROR"},
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
