package xsearch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for crawl progress and retry behavior.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xsearch_pages_fetched_total",
		Help: "Total number of search pages fetched by outcome",
	}, []string{"outcome"})

	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xsearch_retries_total",
		Help: "Total number of backoff retries for transient fetch failures",
	})

	retryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "xsearch_retry_backoff_seconds",
		Help:    "Backoff wait before retrying a failed fetch",
		Buckets: []float64{1, 2, 4, 8, 16},
	})

	entriesHarvestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xsearch_entries_harvested_total",
		Help: "Total number of result entries accumulated across all queries",
	})
)
