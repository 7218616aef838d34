// SPDX-License-Identifier: MIT

// Command server runs the happyScroll verdict-core HTTP service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BrooCode/happy-scroll-ai/internal/api"
	"github.com/BrooCode/happy-scroll-ai/internal/cache"
	"github.com/BrooCode/happy-scroll-ai/internal/config"
	"github.com/BrooCode/happy-scroll-ai/internal/health"
	"github.com/BrooCode/happy-scroll-ai/internal/log"
	"github.com/BrooCode/happy-scroll-ai/internal/metadata"
	"github.com/BrooCode/happy-scroll-ai/internal/orchestrator"
	"github.com/BrooCode/happy-scroll-ai/internal/ratelimit"
	"github.com/BrooCode/happy-scroll-ai/internal/thumbnail"
	"github.com/BrooCode/happy-scroll-ai/internal/transcript"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	log.Configure(log.Config{Level: "info", Service: "happy-scroll-ai", Version: version})
	logger := log.WithComponent("main")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Str("event", "config.load_failed").Msg("failed to load configuration")
	}

	log.Configure(log.Config{Level: cfg.LogLevel, Service: "happy-scroll-ai", Version: version})
	logger = log.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	youtubeClient, err := metadata.NewYouTubeClient(ctx, cfg.YouTubeAPIKey)
	if err != nil {
		logger.Fatal().Err(err).Str("event", "metadata.client_failed").Msg("failed to build YouTube metadata client")
	}

	thumbnailClient := thumbnail.NewClient(thumbnail.Config{
		Endpoint:  cfg.ImageClassifierURL,
		APIKey:    cfg.ImageClassifierKey,
		Threshold: cfg.ImageSafetyThreshold,
	})

	transcriptClient := transcript.NewClient(transcript.Config{
		Endpoint: cfg.TextClassifierURL,
		APIKey:   cfg.TextClassifierKey,
		Model:    cfg.TextClassifierModel,
	})

	redisOpts := parseCacheBackendURL(cfg.CacheBackendURL, logger)

	var backendAddr, backendPassword string
	var backendDB int
	if redisOpts != nil {
		backendAddr, backendPassword, backendDB = redisOpts.Addr, redisOpts.Password, redisOpts.DB
	}
	backend := cache.SelectBackend(backendAddr, backendPassword, backendDB, logger)
	store := cache.NewStore(backend, cfg.CacheTTL())

	healthMgr := health.NewManager()
	if hc, ok := backend.(backendHealthChecker); ok {
		healthMgr.RegisterChecker(health.NewBackendChecker("cache_backend", hc.HealthCheck))
	}

	gate := buildGate(redisOpts, cfg.GlobalDailyLimit, cfg.RateLimitLocation(logger), logger)

	o := orchestrator.New(orchestrator.Config{
		MetadataClient:     youtubeClient,
		ThumbnailAnalyzer:  thumbnailClient,
		TranscriptAnalyzer: transcriptClient,
		Store:              store,
		Gate:               gate,
	})

	handlers := api.NewHandlers(o, store, healthMgr)
	router := api.NewRouter(handlers, api.RouterConfig{
		AllowedOrigins:         []string{"*"},
		RequestsPerMinutePerIP: cfg.EdgeRateLimitPerMinute,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("event", "startup").Str("version", version).Str("commit", commit).Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		logger.Error().Err(err).Str("event", "server.failed").Msg("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	logger.Info().Msg("stopped cleanly")
}

// parseCacheBackendURL parses the shared-backend connection string once so
// the cache and the rate-limit gate agree on the same Redis target. Returns
// nil when no shared backend is configured or the string does not parse.
func parseCacheBackendURL(raw string, logger zerolog.Logger) *redis.Options {
	if raw == "" {
		return nil
	}
	opts, err := redis.ParseURL(raw)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid CACHE_BACKEND_URL, falling back to in-process cache and rate-limit gate")
		return nil
	}
	return opts
}

// buildGate selects a Redis-backed rate-limit gate when a shared cache
// backend is configured, otherwise an in-process gate. loc is the civil-date
// window's timezone (RATE_LIMIT_TIMEZONE, default UTC).
func buildGate(redisOpts *redis.Options, bound int, loc *time.Location, logger zerolog.Logger) ratelimit.Gate {
	if redisOpts == nil {
		return ratelimit.NewMemoryGate(bound, loc)
	}
	client := redis.NewClient(redisOpts)
	return ratelimit.NewRedisGate(client, bound, loc, logger)
}

// backendHealthChecker is implemented by cache.RedisCache; a memory-backed
// cache has nothing to probe and is simply not registered with the health
// manager.
type backendHealthChecker interface {
	HealthCheck(ctx context.Context) error
}
