// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

// Package metrics holds the Prometheus metrics of card runs and of the
// HTTP API. The metrics register themselves with the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts finished card runs by outcome.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rxcards_runs_total",
		Help: "Total number of finished card runs",
	}, []string{"card", "outcome"}) // outcome: complete, error, cancelled, timeout

	// EmissionsTotal counts the items emitted by card runs.
	EmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rxcards_emissions_total",
		Help: "Total number of items emitted by card runs",
	}, []string{"card"})

	// ActiveRuns tracks the runs that have started but not terminated.
	ActiveRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rxcards_active_runs",
		Help: "Current number of running cards",
	})

	// LoopTasks is the number of timers and posted tasks queued on the
	// runner's event loop.
	LoopTasks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rxcards_loop_tasks",
		Help: "Current number of tasks queued on the event loop",
	})

	// RunDuration tracks how long card runs take from start to termination.
	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rxcards_run_duration_seconds",
		Help:    "Card run duration distribution",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 9), // 1ms to ~65s
	}, []string{"card"})

	// HTTPRequests counts API requests by route and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rxcards_http_requests_total",
		Help: "Total number of HTTP API requests",
	}, []string{"method", "route", "status"})

	// RateLimited counts run requests rejected by the rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rxcards_rate_limited_total",
		Help: "Total number of run requests rejected by the rate limiter",
	})
)
