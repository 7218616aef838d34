// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/BrooCode/happy-scroll-ai/internal/thumbnail"
	"github.com/rs/zerolog"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("YOUTUBE_API_KEY", "test-key")
	t.Setenv("TEXT_CLASSIFIER_URL", "https://text.example/classify")
	t.Setenv("IMAGE_CLASSIFIER_URL", "https://image.example/classify")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GlobalDailyLimit != 150 {
		t.Errorf("GlobalDailyLimit = %d, want 150", cfg.GlobalDailyLimit)
	}
	if cfg.CacheTTLDays != 7 {
		t.Errorf("CacheTTLDays = %d, want 7", cfg.CacheTTLDays)
	}
	if cfg.ImageSafetyThreshold != thumbnail.Possible {
		t.Errorf("ImageSafetyThreshold = %v, want Possible", cfg.ImageSafetyThreshold)
	}
	if cfg.UsesSharedCache() {
		t.Error("UsesSharedCache() = true, want false with no CACHE_BACKEND_URL")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.RateLimitTimezone != "UTC" {
		t.Errorf("RateLimitTimezone = %q, want UTC", cfg.RateLimitTimezone)
	}
	if cfg.RateLimitLocation(zerolog.Nop()) != time.UTC {
		t.Error("RateLimitLocation() default = not UTC")
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GLOBAL_DAILY_LIMIT", "42")
	t.Setenv("CACHE_TTL_DAYS", "3")
	t.Setenv("CACHE_BACKEND_URL", "redis://localhost:6379/0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_TIMEZONE", "America/New_York")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GlobalDailyLimit != 42 {
		t.Errorf("GlobalDailyLimit = %d, want 42", cfg.GlobalDailyLimit)
	}
	if cfg.CacheTTL().Hours() != 72 {
		t.Errorf("CacheTTL() = %v, want 72h", cfg.CacheTTL())
	}
	if !cfg.UsesSharedCache() {
		t.Error("UsesSharedCache() = false, want true")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	loc := cfg.RateLimitLocation(zerolog.Nop())
	if loc.String() != "America/New_York" {
		t.Errorf("RateLimitLocation() = %v, want America/New_York", loc)
	}
}

func TestRateLimitLocationFallsBackToUTCOnInvalidZone(t *testing.T) {
	cfg := AppConfig{RateLimitTimezone: "Not/AZone"}
	if loc := cfg.RateLimitLocation(zerolog.Nop()); loc != time.UTC {
		t.Errorf("RateLimitLocation() = %v, want UTC fallback", loc)
	}
}

func TestLoadMissingCredentialFails(t *testing.T) {
	t.Setenv("TEXT_CLASSIFIER_URL", "https://text.example/classify")
	t.Setenv("IMAGE_CLASSIFIER_URL", "https://image.example/classify")
	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error for missing YOUTUBE_API_KEY")
	}
}

func TestLoadNegativeLimitFails(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GLOBAL_DAILY_LIMIT", "-1")
	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error for negative GLOBAL_DAILY_LIMIT")
	}
}
