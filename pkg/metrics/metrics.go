// Package metrics holds the Prometheus collectors of the reader.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	LookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hanreader",
			Name:      "lookups_total",
			Help:      "Word lookups by stage and outcome",
		},
		[]string{"stage", "status"}, // stage: stem, dictionary
	)

	LookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hanreader",
			Name:      "lookup_duration_seconds",
			Help:      "Duration of stem and dictionary calls",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"stage"},
	)

	VocabularyWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hanreader",
			Name:      "vocabulary_writes_total",
			Help:      "Vocabulary store writes by operation and outcome",
		},
		[]string{"op", "status"}, // op: insert, remove
	)

	DictionaryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hanreader",
			Name:      "dictionary_cache_total",
			Help:      "Dictionary cache hits and misses",
		},
		[]string{"result"},
	)

	DroppedResultsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hanreader",
			Name:      "dropped_results_total",
			Help:      "Lookup results discarded because the word or session was gone",
		},
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			LookupsTotal,
			LookupDuration,
			VocabularyWritesTotal,
			DictionaryCacheTotal,
			DroppedResultsTotal,
		)
	})
}
