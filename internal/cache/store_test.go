// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BrooCode/happy-scroll-ai/internal/verdict"
)

func TestStoreGetOrComputeCachesResult(t *testing.T) {
	store := NewStore(NewMemoryCache(0), time.Minute)

	var builds int32
	build := func(ctx context.Context) (verdict.Verdict, error) {
		atomic.AddInt32(&builds, 1)
		return verdict.Verdict{VideoID: "aaaaaaaaaaa", IsSafe: true}, nil
	}

	v1, err := store.GetOrCompute(context.Background(), "aaaaaaaaaaa", build)
	if err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}
	v2, err := store.GetOrCompute(context.Background(), "aaaaaaaaaaa", build)
	if err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}

	if builds != 1 {
		t.Errorf("expected exactly 1 build, got %d", builds)
	}
	if v1 != v2 {
		t.Errorf("expected identical cached verdicts, got %+v and %+v", v1, v2)
	}
}

func TestStoreGetOrComputeSingleFlightsConcurrentCallers(t *testing.T) {
	store := NewStore(NewMemoryCache(0), time.Minute)

	var builds int32
	release := make(chan struct{})
	build := func(ctx context.Context) (verdict.Verdict, error) {
		atomic.AddInt32(&builds, 1)
		<-release
		return verdict.Verdict{VideoID: "bbbbbbbbbbb", IsSafe: true}, nil
	}

	const callers = 20
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, _ = store.GetOrCompute(context.Background(), "bbbbbbbbbbb", build)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if builds != 1 {
		t.Errorf("expected exactly 1 build across %d concurrent callers, got %d", callers, builds)
	}
}

func TestStoreGetOrComputeBuilderFailureDoesNotCacheFailure(t *testing.T) {
	store := NewStore(NewMemoryCache(0), time.Minute)

	buildErr := errors.New("upstream unavailable")
	calls := 0
	build := func(ctx context.Context) (verdict.Verdict, error) {
		calls++
		if calls == 1 {
			return verdict.Verdict{}, buildErr
		}
		return verdict.Verdict{VideoID: "ccccccccccc", IsSafe: true}, nil
	}

	_, err := store.GetOrCompute(context.Background(), "ccccccccccc", build)
	if !errors.Is(err, buildErr) {
		t.Fatalf("expected first call to surface build error, got %v", err)
	}

	v, err := store.GetOrCompute(context.Background(), "ccccccccccc", build)
	if err != nil {
		t.Fatalf("expected second call to succeed as the new builder, got %v", err)
	}
	if !v.IsSafe {
		t.Errorf("expected the retried build's result, got %+v", v)
	}
	if calls != 2 {
		t.Errorf("expected 2 build attempts, got %d", calls)
	}
}

func TestStorePutGetInvalidate(t *testing.T) {
	store := NewStore(NewMemoryCache(0), time.Minute)

	store.Put("ddddddddddd", verdict.Verdict{VideoID: "ddddddddddd", IsSafe: false, OverallReason: "flagged"})

	v, ok := store.Get("ddddddddddd")
	if !ok {
		t.Fatal("expected cached entry")
	}
	if v.OverallReason != "flagged" {
		t.Errorf("OverallReason = %q", v.OverallReason)
	}

	store.Invalidate("ddddddddddd")
	if _, ok := store.Get("ddddddddddd"); ok {
		t.Fatal("expected entry to be gone after Invalidate")
	}
}

func TestStoreClearReturnsCount(t *testing.T) {
	store := NewStore(NewMemoryCache(0), time.Minute)

	store.Put("v1", verdict.Verdict{VideoID: "v1"})
	store.Put("v2", verdict.Verdict{VideoID: "v2"})

	n := store.Clear()
	if n != 2 {
		t.Errorf("Clear() = %d, want 2", n)
	}
	if _, ok := store.Get("v1"); ok {
		t.Error("expected v1 to be cleared")
	}
}
