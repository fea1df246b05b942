package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRuns counts completed reconciliation passes by outcome
	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jellywatch_sync_runs_total",
		Help: "Completed reconciliation passes by outcome.",
	}, []string{"outcome"})

	// ItemsProcessed counts watchlist items updated by the sync
	ItemsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jellywatch_sync_items_processed_total",
		Help: "Watchlist items successfully reconciled.",
	})

	// ItemsSkipped counts watchlist items skipped due to per-item failures
	ItemsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jellywatch_sync_items_skipped_total",
		Help: "Watchlist items skipped due to per-item failures.",
	})

	// SyncDuration observes how long a full reconciliation pass takes
	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jellywatch_sync_duration_seconds",
		Help:    "Duration of a full reconciliation pass.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)
