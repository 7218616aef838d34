// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/BrooCode/happy-scroll-ai/internal/api/middleware"
	"github.com/BrooCode/happy-scroll-ai/internal/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig controls the deployment-specific parts of the HTTP surface.
type RouterConfig struct {
	AllowedOrigins         []string
	CSP                    string
	RequestsPerMinutePerIP int
}

// NewRouter assembles the chi router: request-id stamping, panic recovery,
// security headers, CORS, structured logging, the four public endpoints, and
// a Prometheus scrape endpoint.
func NewRouter(h *Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(log.Middleware())
	r.Use(middleware.SecurityHeaders(cfg.CSP))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.RequestsPerMinutePerIP > 0 {
		r.Use(middleware.EdgeRateLimit(cfg.RequestsPerMinutePerIP))
	}

	r.Method(http.MethodPost, "/api/happyScroll/v1/verdict", http.HandlerFunc(h.PostVerdict))
	r.Method(http.MethodGet, "/api/happyScroll/v1/cache/stats", http.HandlerFunc(h.GetCacheStats))
	r.Method(http.MethodPost, "/api/happyScroll/v1/cache/clear", http.HandlerFunc(h.PostCacheClear))
	r.Method(http.MethodGet, "/api/health", http.HandlerFunc(h.GetHealth))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
