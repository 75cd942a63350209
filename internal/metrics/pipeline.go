package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Ingestion and query pipeline metrics.
var (
	DocumentsIngestedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "documents_ingested_total",
			Help:      "Documents embedded and persisted",
		},
	)

	IngestRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ingest_requests_total",
			Help:      "Ingestion requests by outcome",
		},
		[]string{"status"}, // "ok" or a failure kind
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_requests_total",
			Help:      "Search requests by outcome",
		},
		[]string{"status"},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_results",
			Help:      "Number of matches returned per successful search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)
)

var registerPipeline sync.Once

// RegisterPipelineMetrics registers the pipeline collectors. Safe to call more than once.
func RegisterPipelineMetrics() {
	registerPipeline.Do(func() {
		prometheus.MustRegister(
			DocumentsIngestedTotal,
			IngestRequestsTotal,
			SearchRequestsTotal,
			SearchResults,
		)
	})
}

// ObserveIngest records one ingestion outcome.
func ObserveIngest(status string) {
	IngestRequestsTotal.WithLabelValues(status).Inc()
	if status == StatusOK {
		DocumentsIngestedTotal.Inc()
	}
}

// ObserveSearch records one search outcome and, on success, its result count.
func ObserveSearch(status string, results int) {
	SearchRequestsTotal.WithLabelValues(status).Inc()
	if status == StatusOK {
		SearchResults.Observe(float64(results))
	}
}

// StatusOK labels successful pipeline runs.
const StatusOK = "ok"
