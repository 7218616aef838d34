// SPDX-License-Identifier: MIT

package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisGate is the shared-backend implementation: a Redis INCR with an
// expiration set to the end of the current civil-date window.
type RedisGate struct {
	client *redis.Client
	bound  int
	loc    *time.Location
	logger zerolog.Logger
}

// NewRedisGate builds a shared Gate backed by client.
func NewRedisGate(client *redis.Client, bound int, loc *time.Location, logger zerolog.Logger) *RedisGate {
	if loc == nil {
		loc = time.UTC
	}
	return &RedisGate{client: client, bound: bound, loc: loc, logger: logger}
}

func (g *RedisGate) key() string {
	return "ratelimit:global:" + civilDate(time.Now(), g.loc)
}

func (g *RedisGate) endOfWindow() time.Time {
	now := time.Now().In(g.loc)
	y, m, d := now.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, g.loc)
}

func (g *RedisGate) Precheck() Status {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	count, err := g.client.Get(ctx, g.key()).Int()
	if err != nil && err != redis.Nil {
		g.logger.Warn().Err(err).Msg("ratelimit precheck: redis unavailable, treating as not limited")
		return Status{Limited: false, Count: 0, Limit: g.bound}
	}

	limited := count >= g.bound
	if limited {
		rateLimitExceeded.WithLabelValues("global_precheck").Inc()
	}
	return Status{Limited: limited, Count: count, Limit: g.bound}
}

// Commit increments the window counter atomically via INCR, arming the
// expiration on first write of the window. A Redis failure fails open
// (ok=true), since a cache failure or rate-limiter outage must never
// itself fail the request.
func (g *RedisGate) Commit() (bool, Status) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := g.key()
	count, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		g.logger.Warn().Err(err).Msg("ratelimit commit: redis unavailable, failing open")
		return true, Status{Limited: false, Count: 0, Limit: g.bound}
	}
	if count == 1 {
		g.client.ExpireAt(ctx, key, g.endOfWindow())
	}

	if int(count) > g.bound {
		g.client.Decr(ctx, key)
		rateLimitExceeded.WithLabelValues("global_commit").Inc()
		return false, Status{Limited: true, Count: g.bound, Limit: g.bound}
	}
	return true, Status{Limited: false, Count: int(count), Limit: g.bound}
}
