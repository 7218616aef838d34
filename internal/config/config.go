// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"time"

	"github.com/BrooCode/happy-scroll-ai/internal/thumbnail"
	"github.com/rs/zerolog"
)

// AppConfig is the fully resolved, immutable process configuration. It is
// read once at startup; there is no live reload.
type AppConfig struct {
	Port     string
	LogLevel string

	ImageSafetyThreshold   thumbnail.Likelihood
	GlobalDailyLimit       int
	RateLimitTimezone      string
	CacheTTLDays           int
	CacheBackendURL        string
	EdgeRateLimitPerMinute int

	YouTubeAPIKey       string
	TextClassifierURL   string
	TextClassifierKey   string
	TextClassifierModel string
	ImageClassifierURL  string
	ImageClassifierKey  string
}

// CacheTTL is CacheTTLDays expressed as a time.Duration.
func (c AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLDays) * 24 * time.Hour
}

// UsesSharedCache reports whether a shared cache backend connection string
// was configured; its absence selects the in-process cache.
func (c AppConfig) UsesSharedCache() bool {
	return c.CacheBackendURL != ""
}

// RateLimitLocation resolves RateLimitTimezone into a *time.Location for the
// rate-limit gate's civil-date window, falling back to UTC (and logging a
// warning) on an unrecognized IANA zone name.
func (c AppConfig) RateLimitLocation(logger zerolog.Logger) *time.Location {
	loc, err := time.LoadLocation(c.RateLimitTimezone)
	if err != nil {
		logger.Warn().Err(err).Str("rate_limit_timezone", c.RateLimitTimezone).
			Msg("invalid RATE_LIMIT_TIMEZONE, falling back to UTC")
		return time.UTC
	}
	return loc
}

// Load reads AppConfig from the process environment, applying defaults for
// every key that is absent, and validates the result.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		Port:                   ParseString("PORT", "8080"),
		LogLevel:               ParseString("LOG_LEVEL", "info"),
		ImageSafetyThreshold:   thumbnail.ParseLikelihood(ParseString("IMAGE_SAFETY_THRESHOLD", "POSSIBLE")),
		GlobalDailyLimit:       ParseInt("GLOBAL_DAILY_LIMIT", 150),
		RateLimitTimezone:      ParseString("RATE_LIMIT_TIMEZONE", "UTC"),
		CacheTTLDays:           ParseInt("CACHE_TTL_DAYS", 7),
		CacheBackendURL:        ParseString("CACHE_BACKEND_URL", ""),
		EdgeRateLimitPerMinute: ParseInt("EDGE_RATE_LIMIT_PER_MINUTE", 60),
		YouTubeAPIKey:          ParseString("YOUTUBE_API_KEY", ""),
		TextClassifierURL:      ParseString("TEXT_CLASSIFIER_URL", ""),
		TextClassifierKey:      ParseString("TEXT_CLASSIFIER_API_KEY", ""),
		TextClassifierModel:    ParseString("TEXT_CLASSIFIER_MODEL", ""),
		ImageClassifierURL:     ParseString("IMAGE_CLASSIFIER_URL", ""),
		ImageClassifierKey:     ParseString("IMAGE_CLASSIFIER_API_KEY", ""),
	}
	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c AppConfig) validate() error {
	if c.GlobalDailyLimit < 0 {
		return fmt.Errorf("config: GLOBAL_DAILY_LIMIT must be non-negative, got %d", c.GlobalDailyLimit)
	}
	if c.CacheTTLDays <= 0 {
		return fmt.Errorf("config: CACHE_TTL_DAYS must be positive, got %d", c.CacheTTLDays)
	}
	if c.YouTubeAPIKey == "" {
		return fmt.Errorf("config: YOUTUBE_API_KEY must be set")
	}
	if c.TextClassifierURL == "" {
		return fmt.Errorf("config: TEXT_CLASSIFIER_URL must be set")
	}
	if c.ImageClassifierURL == "" {
		return fmt.Errorf("config: IMAGE_CLASSIFIER_URL must be set")
	}
	return nil
}
