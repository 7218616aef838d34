// SPDX-License-Identifier: MIT

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMemoryGatePrecheckUnderBound(t *testing.T) {
	g := NewMemoryGate(3, time.UTC)
	st := g.Precheck()
	if st.Limited {
		t.Fatal("expected not limited with empty counter")
	}
}

func TestMemoryGateCommitReachesBound(t *testing.T) {
	g := NewMemoryGate(2, time.UTC)

	ok, st := g.Commit()
	if !ok || st.Count != 1 {
		t.Fatalf("first commit: ok=%v st=%+v", ok, st)
	}
	ok, st = g.Commit()
	if !ok || st.Count != 2 {
		t.Fatalf("second commit: ok=%v st=%+v", ok, st)
	}
	ok, st = g.Commit()
	if ok {
		t.Fatal("expected third commit to be rejected at bound=2")
	}
	if !st.Limited {
		t.Error("expected status.Limited=true once bound is reached")
	}
}

func TestMemoryGatePrecheckDoesNotMutate(t *testing.T) {
	g := NewMemoryGate(1, time.UTC)
	for i := 0; i < 5; i++ {
		g.Precheck()
	}
	ok, _ := g.Commit()
	if !ok {
		t.Fatal("expected precheck calls to never themselves consume budget")
	}
}

func TestMemoryGateWindowResetOnDateRollover(t *testing.T) {
	g := NewMemoryGate(1, time.UTC)
	ok, _ := g.Commit()
	if !ok {
		t.Fatal("expected first commit to succeed")
	}

	g.window = civilDate(time.Now().Add(-48*time.Hour), time.UTC)

	ok, st := g.Commit()
	if !ok {
		t.Fatalf("expected stale window to reset and allow a fresh commit, got %+v", st)
	}
	if st.Count != 1 {
		t.Errorf("expected counter to restart at 1 after reset, got %d", st.Count)
	}
}

func TestGetClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	r.RemoteAddr = "10.0.0.1:4000"

	if got := GetClientIP(r); got != "203.0.113.7" {
		t.Errorf("GetClientIP() = %q, want 203.0.113.7", got)
	}
}

func TestGetClientIPFallsBackToRemoteAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.4:5000"

	if got := GetClientIP(r); got != "198.51.100.4" {
		t.Errorf("GetClientIP() = %q, want 198.51.100.4", got)
	}
}
