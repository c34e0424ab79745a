package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// CacheHits counts classification requests answered from the response cache.
	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "disastersheet",
		Subsystem: "classifier",
		Name:      "cache_hits_total",
		Help:      "Total number of classification requests served from the response cache.",
	})

	// CacheMisses counts classification requests that had to call the provider.
	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "disastersheet",
		Subsystem: "classifier",
		Name:      "cache_misses_total",
		Help:      "Total number of classification requests that required an upstream LLM call.",
	})

	// CacheEntries tracks the size of the response cache. The cache is
	// unbounded, so this is the gauge to watch in production.
	CacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "disastersheet",
		Subsystem: "classifier",
		Name:      "cache_entries",
		Help:      "Current number of entries held by the in-memory response cache.",
	})

	// ClassifyTotal counts classification calls by outcome.
	ClassifyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "disastersheet",
		Subsystem: "classifier",
		Name:      "classify_total",
		Help:      "Total number of per-image classification calls, labeled by result.",
	}, []string{"result"})

	// ClassifyDurationSeconds is end-to-end time per classification call,
	// including cache lookups and the upstream request on a miss.
	ClassifyDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "disastersheet",
		Subsystem: "classifier",
		Name:      "classify_duration_seconds",
		Help:      "End-to-end time to classify one image.",
		Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	// DroppedRecordsTotal counts raw answers discarded by the normalizer.
	DroppedRecordsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "disastersheet",
		Subsystem: "normalizer",
		Name:      "dropped_records_total",
		Help:      "Total number of raw answers discarded because they could not be parsed.",
	})
)

// Register registers all collectors with the default registry. Safe to call
// more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			CacheHits,
			CacheMisses,
			CacheEntries,
			ClassifyTotal,
			ClassifyDurationSeconds,
			DroppedRecordsTotal,
		)
	})
}
