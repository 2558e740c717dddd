// Package metrics exposes Prometheus instrumentation for the scanner and
// the size cache.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts completed project size calculations, labeled by
	// how the result was obtained.
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "projsweep",
		Name:      "scans_total",
		Help:      "Completed project size calculations by source (scan or cache).",
	}, []string{"source"})

	// ScanDuration observes how long full project size calculations take.
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "projsweep",
		Name:      "scan_duration_seconds",
		Help:      "Duration of project size calculations.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	// BytesScanned counts the total bytes attributed to scanned projects.
	BytesScanned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "projsweep",
		Name:      "bytes_scanned_total",
		Help:      "Total bytes attributed to scanned projects.",
	})

	// CacheHits counts size-cache lookups answered from the store.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "projsweep",
		Name:      "cache_hits_total",
		Help:      "Size cache lookups answered from the store.",
	})

	// CacheMisses counts size-cache lookups that required a fresh scan,
	// labeled by the miss reason.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "projsweep",
		Name:      "cache_misses_total",
		Help:      "Size cache misses by reason (absent, expired, stale).",
	}, []string{"reason"})

	// CacheEvictions counts entries evicted to respect the entry limit.
	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "projsweep",
		Name:      "cache_evictions_total",
		Help:      "Size cache entries evicted by the entry limit.",
	})
)
