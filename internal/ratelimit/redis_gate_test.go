// SPDX-License-Identifier: MIT

package ratelimit

import (
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestRedisGate(t *testing.T, bound int) (*RedisGate, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisGate(client, bound, time.UTC, zerolog.New(io.Discard)), mr
}

func TestRedisGateCommitUnderBound(t *testing.T) {
	gate, _ := newTestRedisGate(t, 3)
	for i := 0; i < 3; i++ {
		ok, status := gate.Commit()
		if !ok {
			t.Fatalf("Commit() #%d ok = false, want true", i)
		}
		if status.Count != i+1 {
			t.Errorf("Commit() #%d count = %d, want %d", i, status.Count, i+1)
		}
	}
}

func TestRedisGateCommitRejectsAtBound(t *testing.T) {
	gate, _ := newTestRedisGate(t, 2)
	gate.Commit()
	gate.Commit()
	ok, status := gate.Commit()
	if ok {
		t.Fatal("Commit() ok = true at bound, want false")
	}
	if !status.Limited {
		t.Error("status.Limited = false, want true")
	}
}

func TestRedisGatePrecheckDoesNotIncrement(t *testing.T) {
	gate, _ := newTestRedisGate(t, 2)
	gate.Commit()
	before := gate.Precheck()
	after := gate.Precheck()
	if before.Count != after.Count {
		t.Errorf("Precheck() mutated count: %d -> %d", before.Count, after.Count)
	}
}

func TestRedisGateCommitDecrementsOnRejection(t *testing.T) {
	gate, mr := newTestRedisGate(t, 1)
	gate.Commit()
	gate.Commit()

	val, err := mr.Get(gate.key())
	if err != nil {
		t.Fatalf("miniredis Get: %v", err)
	}
	if val != "1" {
		t.Errorf("stored count = %s, want 1 (rejected commit must decrement back)", val)
	}
}

func TestRedisGateFailsOpenWhenRedisUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	gate := NewRedisGate(client, 1, time.UTC, zerolog.New(io.Discard))
	ok, status := gate.Commit()
	if !ok {
		t.Error("Commit() ok = false on redis failure, want true (fail open)")
	}
	if status.Limited {
		t.Error("status.Limited = true on redis failure, want false")
	}
}
