package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service-level Prometheus collectors
type Metrics struct {
	SubmissionsTotal   *prometheus.CounterVec
	NewBestsTotal      prometheus.Counter
	IndexSyncFailures  prometheus.Counter
	IndexRepairsTotal  prometheus.Counter
	IndexRebuildsTotal prometheus.Counter
	SubmitDuration     prometheus.Histogram
}

// New registers the service collectors with the given registerer
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		SubmissionsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaderboard",
			Name:      "submissions_total",
			Help:      "Score submissions by outcome.",
		}, []string{"result"}),
		NewBestsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "leaderboard",
			Name:      "new_bests_total",
			Help:      "Submissions that set a new personal best.",
		}),
		IndexSyncFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "leaderboard",
			Name:      "index_sync_failures_total",
			Help:      "Rank index upserts that failed after a committed ledger write.",
		}),
		IndexRepairsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "leaderboard",
			Name:      "index_repairs_total",
			Help:      "Per-player rank index repairs applied by the reconciler.",
		}),
		IndexRebuildsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "leaderboard",
			Name:      "index_rebuilds_total",
			Help:      "Full rank index rebuilds from the ledger.",
		}),
		SubmitDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "leaderboard",
			Name:      "submit_duration_seconds",
			Help:      "End-to-end submit latency including the index upsert.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
