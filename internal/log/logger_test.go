// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConfigureSetsServiceName(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf, Service: "test-svc", Version: "v1"})

	Base().Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["service"] != "test-svc" {
		t.Errorf("service = %v, want test-svc", entry["service"])
	}
}

func TestMiddlewareStampsRequestID(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})

	handler := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RequestIDFromContext(r.Context()) == "" {
			t.Error("expected request id in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id response header")
	}
}

func TestAuditInfoBypassesLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf, Level: "error"})

	AuditInfo(context.Background(), "ratelimit.window_reset", "daily window rolled over", map[string]any{
		"window": "2026-07-31",
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected audit entry despite error-level filter, got: %v", err)
	}
	if entry["event"] != "ratelimit.window_reset" {
		t.Errorf("event = %v, want ratelimit.window_reset", entry["event"])
	}
}
