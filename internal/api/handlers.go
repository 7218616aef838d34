// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BrooCode/happy-scroll-ai/internal/cache"
	"github.com/BrooCode/happy-scroll-ai/internal/core/urlutil"
	"github.com/BrooCode/happy-scroll-ai/internal/health"
	"github.com/BrooCode/happy-scroll-ai/internal/log"
	"github.com/BrooCode/happy-scroll-ai/internal/metadata"
	"github.com/BrooCode/happy-scroll-ai/internal/orchestrator"
)

// Handlers holds the dependencies backing the HTTP surface.
type Handlers struct {
	orchestrator *orchestrator.Orchestrator
	store        *cache.Store
	health       *health.Manager
}

// NewHandlers builds a Handlers bound to a live orchestrator, cache store,
// and health manager.
func NewHandlers(o *orchestrator.Orchestrator, store *cache.Store, healthMgr *health.Manager) *Handlers {
	return &Handlers{orchestrator: o, store: store, health: healthMgr}
}

type verdictRequest struct {
	VideoURL string `json:"video_url"`
}

// PostVerdict handles POST /api/happyScroll/v1/verdict.
func (h *Handlers) PostVerdict(w http.ResponseWriter, r *http.Request) {
	var req verdictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondClientError(w, "request body must be valid JSON with a video_url field")
		return
	}
	if req.VideoURL == "" {
		respondClientError(w, "video_url must not be empty")
		return
	}

	v, err := h.orchestrator.GetVerdict(r.Context(), req.VideoURL)
	if err != nil {
		h.respondVerdictError(w, r, req.VideoURL, err)
		return
	}
	respondJSON(w, v)
}

// respondVerdictError maps an orchestrator error to the HTTP surface's error
// taxonomy: client errors are 400, budget exhaustion is 429, everything else
// (metadata fetch failure) is 500.
func (h *Handlers) respondVerdictError(w http.ResponseWriter, r *http.Request, rawURL string, err error) {
	var inputErr *orchestrator.InputError
	if errors.As(err, &inputErr) {
		log.WithComponentFromContext(r.Context(), "api").Warn().
			Err(err).Str("video_url", urlutil.SanitizeURL(rawURL)).Msg("invalid video url")
		respondClientError(w, inputErr.Error())
		return
	}

	var budgetErr *orchestrator.BudgetError
	if errors.As(err, &budgetErr) {
		respondBudgetExhausted(w, budgetErr.Count, budgetErr.Limit)
		return
	}

	var metaErr *orchestrator.MetadataError
	if errors.As(err, &metaErr) {
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).Msg("metadata fetch failed")
		respondUpstreamError(w, metadataFailureMessage(metaErr))
		return
	}

	log.WithComponentFromContext(r.Context(), "api").Error().Err(err).Msg("unclassified verdict failure")
	respondUpstreamError(w, "an internal error occurred")
}

// metadataFailureMessage renders a terse, user-facing message for a metadata
// failure without leaking upstream identifiers beyond the video id.
func metadataFailureMessage(metaErr *orchestrator.MetadataError) string {
	if errors.Is(metaErr.Err, metadata.ErrVideoNotFound) {
		return "video not found"
	}
	if errors.Is(metaErr.Err, metadata.ErrPermissionDenied) {
		return "access to this video is restricted"
	}
	return "could not fetch video metadata"
}

type cacheStatsResponse struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Sets        int64 `json:"sets"`
	Evictions   int64 `json:"evictions"`
	CurrentSize int   `json:"current_size"`
}

// GetCacheStats handles GET /api/happyScroll/v1/cache/stats.
func (h *Handlers) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	stats := h.store.Stats()
	respondJSON(w, cacheStatsResponse{
		Hits:        stats.Hits,
		Misses:      stats.Misses,
		Sets:        stats.Sets,
		Evictions:   stats.Evictions,
		CurrentSize: stats.CurrentSize,
	})
}

type cacheClearResponse struct {
	EntriesRemoved int `json:"entries_removed"`
}

// PostCacheClear handles POST /api/happyScroll/v1/cache/clear.
func (h *Handlers) PostCacheClear(w http.ResponseWriter, r *http.Request) {
	n := h.store.Clear()
	respondJSON(w, cacheClearResponse{EntriesRemoved: n})
}

// GetHealth handles GET /api/health: always 200, with the current status of
// any registered dependency probes (e.g. shared cache backend reachability)
// reported in the body.
func (h *Handlers) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.health.ServeHTTP(w, r)
}
