package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DiscoveryCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_discovery_cycles_total",
			Help: "Total discovery cycle iterations.",
		},
		[]string{"result"}, // success, skipped, error
	)

	TemplatesSavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_templates_saved_total",
			Help: "Total search URL templates accepted and persisted.",
		},
	)

	CandidatesDiscardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_candidates_discarded_total",
			Help: "Total discovered candidate URLs with no substitutable query term.",
		},
	)

	ExtractionCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_extraction_cycles_total",
			Help: "Total extraction cycle iterations.",
		},
		// success, skipped. Store errors propagate to the supervisor and show
		// up as worker restarts instead of an iteration result.
		[]string{"result"},
	)

	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_fetches_total",
			Help: "Total page fetch attempts.",
		},
		[]string{"status"}, // success, no_products, failed
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvester_fetch_duration_seconds",
			Help:    "Duration of page fetch and parse operations.",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		},
	)

	ProductsSavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_products_saved_total",
			Help: "Total product records persisted.",
		},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_errors_total",
			Help: "Total errors encountered.",
		},
		[]string{"type"}, // fetch_failed, discovery_failed, db_save_failed, malformed_template
	)

	WorkerRestartsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_worker_restarts_total",
			Help: "Total supervisor restarts per worker.",
		},
		[]string{"worker"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
