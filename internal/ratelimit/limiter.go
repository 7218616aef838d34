// SPDX-License-Identifier: MIT

// Package ratelimit implements the civil-date daily-window budget gate
// guarding new upstream analyses.
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var rateLimitExceeded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "happyscroll",
		Name:      "ratelimit_exceeded_total",
		Help:      "Total rate-limit gate rejections",
	},
	[]string{"limit_type"},
)

// Status is the outcome of a Precheck or Commit call.
type Status struct {
	Limited bool
	Count   int
	Limit   int
}

// Gate is the civil-date daily-window budget gate guarding new upstream
// analyses. The counter store must support atomic check-and-increment and
// must detect and reset a stale window (date rollover) on access.
type Gate interface {
	// Precheck reports whether the current window is already at or over
	// bound. It never mutates the counter ("precheck... does
	// not reject on hit").
	Precheck() Status
	// Commit atomically increments the current window's counter. ok is
	// false (and the counter is left unchanged) once bound is reached.
	Commit() (ok bool, status Status)
}

// MemoryGate is the in-process fallback: a mutex-guarded counter keyed by
// civil date in a designated timezone.
type MemoryGate struct {
	mu     sync.Mutex
	bound  int
	loc    *time.Location
	window string
	count  int
}

// NewMemoryGate builds an in-process Gate. bound is the global daily
// analysis budget (default 150); loc is the window's timezone (default
// UTC).
func NewMemoryGate(bound int, loc *time.Location) *MemoryGate {
	if loc == nil {
		loc = time.UTC
	}
	return &MemoryGate{bound: bound, loc: loc, window: civilDate(time.Now(), loc)}
}

func civilDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// resetIfStale implements window_reset: detects the stored window no
// longer matches today's date and atomically resets. Callers must hold mu.
func (g *MemoryGate) resetIfStale() {
	now := civilDate(time.Now(), g.loc)
	if now != g.window {
		g.window = now
		g.count = 0
	}
}

func (g *MemoryGate) Precheck() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetIfStale()

	limited := g.count >= g.bound
	if limited {
		rateLimitExceeded.WithLabelValues("global_precheck").Inc()
	}
	return Status{Limited: limited, Count: g.count, Limit: g.bound}
}

func (g *MemoryGate) Commit() (bool, Status) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetIfStale()

	if g.count >= g.bound {
		rateLimitExceeded.WithLabelValues("global_commit").Inc()
		return false, Status{Limited: true, Count: g.count, Limit: g.bound}
	}
	g.count++
	return true, Status{Limited: false, Count: g.count, Limit: g.bound}
}

// GetClientIP extracts the real client IP from a request, for optional
// per-client enforcement when a client identity is supplied.
func GetClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		if idx := findComma(xff); idx > 0 {
			xff = xff[:idx]
		}
		xff = trimSpace(xff)
		if xff != "" {
			return xff
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func findComma(s string) int {
	for i, c := range s {
		if c == ',' {
			return i
		}
	}
	return -1
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] == ' ' {
		start++
	}
	for end > start && s[end-1] == ' ' {
		end--
	}
	return s[start:end]
}
