// SPDX-License-Identifier: MIT

// Package metrics exposes the Prometheus collectors for the verdict core
// request pipeline: request outcomes, cache hit/miss results, and the
// orchestrator's fan-out. Rate-limit rejections are counted by the
// ratelimit package itself.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts completed get_verdict calls by outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "happyscroll",
			Name:      "requests_total",
			Help:      "Total verdict requests by outcome",
		},
		[]string{"outcome"},
	)

	// CacheResultTotal counts get_verdict calls by whether the verdict
	// was served from cache or freshly built.
	CacheResultTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "happyscroll",
			Name:      "cache_result_total",
			Help:      "Verdict requests by cache result",
		},
		[]string{"result"},
	)

	// BranchDuration observes each classifier branch's latency.
	BranchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "happyscroll",
			Name:      "branch_duration_seconds",
			Help:      "Upstream classifier branch call latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"branch"},
	)

	// BranchErrorsTotal counts branch failures by branch and sentinel.
	BranchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "happyscroll",
			Name:      "branch_errors_total",
			Help:      "Upstream classifier branch failures",
		},
		[]string{"branch", "reason"},
	)

	// VerdictDuration observes the full get_verdict call, hit or miss.
	VerdictDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "happyscroll",
			Name:      "verdict_duration_seconds",
			Help:      "End-to-end get_verdict call latency",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
