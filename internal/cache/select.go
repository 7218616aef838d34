// SPDX-License-Identifier: MIT

package cache

import (
	"time"

	"github.com/rs/zerolog"
)

// memoryCleanupInterval is the in-process fallback's janitor sweep period.
const memoryCleanupInterval = 1 * time.Minute

// SelectBackend picks the cache backend: if addr is
// configured and the shared Redis backend is reachable at initialization,
// it is used; otherwise the in-process fallback is used. A runtime
// failure afterward is the backend's own concern (degrades that request
// to a cache miss) and never fails the caller.
func SelectBackend(addr, password string, db int, logger zerolog.Logger) Cache {
	if addr == "" {
		logger.Info().Msg("no shared cache backend configured, using in-process cache")
		return NewMemoryCache(memoryCleanupInterval)
	}

	backend, err := NewRedisCache(RedisConfig{Addr: addr, Password: password, DB: db}, logger)
	if err != nil {
		logger.Warn().Err(err).Str("addr", addr).Msg("shared cache backend unreachable, falling back to in-process cache")
		return NewMemoryCache(memoryCleanupInterval)
	}
	return backend
}
