// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/BrooCode/happy-scroll-ai/internal/verdict"
)

// keyPrefix namespaces verdict entries within a shared backend.
const keyPrefix = "verdict:"

// Store is the verdict-typed cache layer: a pluggable byte/any backend
// plus a single-flight build discipline per key.
type Store struct {
	backend Cache
	group   singleflight.Group
	ttl     time.Duration
}

// NewStore wraps a Cache backend (memory or Redis) with verdict semantics.
func NewStore(backend Cache, ttl time.Duration) *Store {
	return &Store{backend: backend, ttl: ttl}
}

func namespacedKey(videoID string) string {
	return keyPrefix + videoID
}

// Get returns the cached verdict for videoID, if present and unexpired.
func (s *Store) Get(videoID string) (verdict.Verdict, bool) {
	raw, ok := s.backend.Get(namespacedKey(videoID))
	if !ok {
		return verdict.Verdict{}, false
	}
	v, err := decodeVerdict(raw)
	if err != nil {
		return verdict.Verdict{}, false
	}
	return v, true
}

// Put stores v under videoID with the Store's configured TTL.
func (s *Store) Put(videoID string, v verdict.Verdict) {
	s.backend.Set(namespacedKey(videoID), v, s.ttl)
}

// Invalidate removes a single entry (admin op).
func (s *Store) Invalidate(videoID string) {
	s.backend.Delete(namespacedKey(videoID))
}

// Clear removes all cached verdicts and returns the count removed.
func (s *Store) Clear() int {
	before := s.backend.Stats().CurrentSize
	s.backend.Clear()
	return before
}

// Stats returns the backend's counters, unchanged. They are for operator
// visibility only and are never load-bearing for correctness.
func (s *Store) Stats() CacheStats {
	return s.backend.Stats()
}

// BuildFunc produces a fresh Verdict for a cache miss. It must be safe to
// call from exactly one goroutine per key at a time (GetOrCompute enforces
// this); it may itself fail, in which case no failure sentinel is cached
// and the next caller for the same key becomes the new builder.
type BuildFunc func(ctx context.Context) (verdict.Verdict, error)

// GetOrCompute implements the single-flight contract: a miss elects
// exactly one builder per process per key; concurrent callers for the
// same key wait for the builder and observe its result. The cache is
// re-checked inside the single-flight critical section, which closes the
// race between an outer cache read and this call.
func (s *Store) GetOrCompute(ctx context.Context, videoID string, build BuildFunc) (verdict.Verdict, error) {
	if v, ok := s.Get(videoID); ok {
		return v, nil
	}

	result, err, _ := s.group.Do(videoID, func() (any, error) {
		if v, ok := s.Get(videoID); ok {
			return v, nil
		}
		v, err := build(ctx)
		if err != nil {
			return verdict.Verdict{}, err
		}
		s.Put(videoID, v)
		return v, nil
	})
	if err != nil {
		return verdict.Verdict{}, err
	}
	return result.(verdict.Verdict), nil
}

// decodeVerdict normalizes a value retrieved from the backend into a
// verdict.Verdict. A memory-backed store returns the original struct; a
// Redis-backed store returns a generic JSON value, so the round trip
// through json.Marshal/Unmarshal below is what actually types it.
func decodeVerdict(raw any) (verdict.Verdict, error) {
	if v, ok := raw.(verdict.Verdict); ok {
		return v, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return verdict.Verdict{}, fmt.Errorf("cache: re-encode cached value: %w", err)
	}
	var v verdict.Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		return verdict.Verdict{}, fmt.Errorf("cache: decode cached value: %w", err)
	}
	return v, nil
}
