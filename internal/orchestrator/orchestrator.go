// Package orchestrator implements the single public verdict-core
// operation: resolving a user-supplied video reference into a cached,
// combined safety verdict.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/BrooCode/happy-scroll-ai/internal/cache"
	"github.com/BrooCode/happy-scroll-ai/internal/metadata"
	"github.com/BrooCode/happy-scroll-ai/internal/metrics"
	"github.com/BrooCode/happy-scroll-ai/internal/ratelimit"
	"github.com/BrooCode/happy-scroll-ai/internal/thumbnail"
	"github.com/BrooCode/happy-scroll-ai/internal/transcript"
	"github.com/BrooCode/happy-scroll-ai/internal/verdict"
	"github.com/BrooCode/happy-scroll-ai/internal/videoid"
)

// reasonLabel extracts a stable metrics label from a branch error,
// preferring the wrapped sentinel when one is present.
func reasonLabel(err error) string {
	if sentinel := errors.Unwrap(err); sentinel != nil {
		return sentinel.Error()
	}
	return err.Error()
}

// Sentinel errors
var (
	ErrInvalidInput    = errors.New("orchestrator: could not resolve a video id from the input")
	ErrBudgetExhausted = errors.New("orchestrator: daily analysis budget exhausted")
	ErrMetadataFailed  = errors.New("orchestrator: could not fetch video metadata")
)

// BudgetError carries the fields the transport returns for a
// budget-exhausted response.
type BudgetError struct {
	Count int
	Limit int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("%v: %d/%d (cached videos are not counted)", ErrBudgetExhausted, e.Count, e.Limit)
}

func (e *BudgetError) Unwrap() error { return ErrBudgetExhausted }

// InputError wraps a video-id extraction failure as a client error.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return fmt.Sprintf("%v: %v", ErrInvalidInput, e.Err) }
func (e *InputError) Unwrap() error { return ErrInvalidInput }

// MetadataError wraps a metadata-fetch failure.
type MetadataError struct {
	Err error
}

func (e *MetadataError) Error() string { return fmt.Sprintf("%v: %v", ErrMetadataFailed, e.Err) }
func (e *MetadataError) Unwrap() error { return ErrMetadataFailed }

// Orchestrator wires the metadata client, the two classifier branches,
// the cache, and the rate-limit gate into the get_verdict algorithm.
type Orchestrator struct {
	metadataClient     metadata.Client
	thumbnailAnalyzer  thumbnail.Analyzer
	transcriptAnalyzer transcript.Analyzer
	store              *cache.Store
	gate               ratelimit.Gate
}

// Config collects the Orchestrator's dependencies.
type Config struct {
	MetadataClient     metadata.Client
	ThumbnailAnalyzer  thumbnail.Analyzer
	TranscriptAnalyzer transcript.Analyzer
	Store              *cache.Store
	Gate               ratelimit.Gate
}

// New builds an Orchestrator.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{
		metadataClient:     cfg.MetadataClient,
		thumbnailAnalyzer:  cfg.ThumbnailAnalyzer,
		transcriptAnalyzer: cfg.TranscriptAnalyzer,
		store:              cfg.Store,
		gate:               cfg.Gate,
	}
}

// GetVerdict resolves input into a verdict by:
//  1. extract video id (client error on failure)
//  2. precheck the budget gate; short-circuit only when limited AND no
//     cache entry exists
//  3. consult the cache; a hit returns immediately without touching the
//     budget
//  4. commit against the budget; a miss-path failure is budget-exhausted
//  5. get_or_compute under single-flight: fetch metadata, fan out the two
//     classifier branches concurrently, combine
func (o *Orchestrator) GetVerdict(ctx context.Context, inputURL string) (verdict.Verdict, error) {
	start := time.Now()
	defer func() { metrics.VerdictDuration.Observe(time.Since(start).Seconds()) }()

	id, err := videoid.Extract(inputURL)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("invalid_input").Inc()
		return verdict.Verdict{}, &InputError{Err: err}
	}
	key := string(id)

	precheck := o.gate.Precheck()
	if cached, ok := o.store.Get(key); ok {
		metrics.RequestsTotal.WithLabelValues("cache_hit").Inc()
		metrics.CacheResultTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	if precheck.Limited {
		metrics.RequestsTotal.WithLabelValues("budget_exhausted").Inc()
		return verdict.Verdict{}, &BudgetError{Count: precheck.Count, Limit: precheck.Limit}
	}

	ok, status := o.gate.Commit()
	if !ok {
		metrics.RequestsTotal.WithLabelValues("budget_exhausted").Inc()
		return verdict.Verdict{}, &BudgetError{Count: status.Count, Limit: status.Limit}
	}

	metrics.CacheResultTotal.WithLabelValues("miss").Inc()
	v, err := o.store.GetOrCompute(ctx, key, func(ctx context.Context) (verdict.Verdict, error) {
		return o.build(ctx, id)
	})
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("metadata_failed").Inc()
		return verdict.Verdict{}, &MetadataError{Err: err}
	}

	metrics.RequestsTotal.WithLabelValues("built").Inc()
	return v, nil
}

// build fetches metadata and fans out the two classifier branches. No
// branch is cancelled on the other's failure: both reasons are needed in
// the response even when one is negative.
func (o *Orchestrator) build(ctx context.Context, videoID videoid.ID) (verdict.Verdict, error) {
	meta, err := o.metadataClient.Fetch(ctx, videoID)
	if err != nil {
		return verdict.Verdict{}, err
	}

	var (
		wg               sync.WaitGroup
		transcriptBranch verdict.Branch
		thumbnailBranch  verdict.Branch
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		start := time.Now()
		res, err := o.transcriptAnalyzer.Analyze(ctx, meta.Caption, meta.Title, meta.Channel)
		metrics.BranchDuration.WithLabelValues("transcript").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.BranchErrorsTotal.WithLabelValues("transcript", reasonLabel(err)).Inc()
			transcriptBranch = verdict.ErrBranch(err, err.Error())
			return
		}
		transcriptBranch = verdict.OkBranch(res.Safe, res.Reason)
	}()

	go func() {
		defer wg.Done()
		start := time.Now()
		res, err := o.thumbnailAnalyzer.Analyze(ctx, meta.ThumbnailURL)
		metrics.BranchDuration.WithLabelValues("thumbnail").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.BranchErrorsTotal.WithLabelValues("thumbnail", reasonLabel(err)).Inc()
			thumbnailBranch = verdict.ErrBranch(err, err.Error())
			return
		}
		thumbnailBranch = verdict.OkBranch(res.Safe, res.Reason)
	}()

	wg.Wait()

	return verdict.Combine(string(videoID), transcriptBranch, thumbnailBranch, meta.Title, meta.Channel), nil
}
