package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestionsTotal counts committed ingestion batches by outcome (success, fallback)
	// and, for fallbacks, the error kind that caused them.
	IngestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voluntrack_ingestions_total",
			Help: "Total number of committed ingestion batches",
		},
		[]string{"outcome", "error_kind"},
	)

	// StaleResultsTotal counts batches dropped because a newer request was issued.
	StaleResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voluntrack_ingestion_stale_results_total",
			Help: "Total number of ingestion results discarded as superseded",
		},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voluntrack_generation_duration_seconds",
			Help:    "Duration of text-generation calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"purpose", "result"},
	)

	RecordsNormalizedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voluntrack_records_normalized_total",
			Help: "Total number of raw records normalized into opportunities",
		},
	)

	// PlaceholdersTotal counts required fields that were missing and replaced.
	PlaceholdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voluntrack_normalizer_placeholders_total",
			Help: "Total number of required fields substituted with a placeholder",
		},
		[]string{"field"},
	)

	BreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voluntrack_generator_breaker_transitions_total",
			Help: "Circuit breaker state transitions for the text-generation provider",
		},
		[]string{"from", "to"},
	)

	HoursLoggedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voluntrack_hours_logged_total",
			Help: "Total volunteer hours logged through the API",
		},
	)
)

// RecordIngestion records one committed batch. errorKind is empty on success.
func RecordIngestion(outcome, errorKind string) {
	IngestionsTotal.WithLabelValues(outcome, errorKind).Inc()
}

func RecordGeneration(purpose string, took time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	GenerationDuration.WithLabelValues(purpose, result).Observe(took.Seconds())
}
