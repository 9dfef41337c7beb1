package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequestsTotal counts all HTTP requests processed by the service.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled by the service.",
		},
		[]string{"path", "method", "status"},
	)

	// HTTPRequestDuration measures how long HTTP handlers take to respond.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of latencies for HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// ResolveBatches counts batch resolutions performed.
	ResolveBatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "resolver_batches_total",
			Help: "Number of batch resolutions performed.",
		},
	)

	// ResolveRecords counts records entering the resolver by outcome:
	// fast_path, resolved, unresolved, invalid_key.
	ResolveRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolver_records_total",
			Help: "Count of records processed by the batch resolver, by outcome.",
		},
		[]string{"outcome"},
	)

	// LookupsSaved counts directory calls avoided by key deduplication
	// (records sharing a key beyond the first).
	LookupsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "resolver_lookups_saved_total",
			Help: "Directory lookups avoided because records shared a key.",
		},
	)

	// DirectoryRequests counts calls to the external name-lookup service.
	DirectoryRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_requests_total",
			Help: "Count of requests to the merchant directory service.",
		},
		[]string{"status"},
	)

	// DirectoryRequestDuration measures duration of directory calls.
	DirectoryRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "directory_request_duration_seconds",
			Help:    "Histogram of merchant directory request durations.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// PersistDispatches counts backfill persistence attempts by result:
	// success, error, abandoned.
	PersistDispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolver_persist_dispatches_total",
			Help: "Count of name backfill persistence dispatches, by result.",
		},
		[]string{"result"},
	)

	// ProviderOperations tracks operations performed by store providers.
	ProviderOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_provider_operations_total",
			Help: "Count of store provider operations.",
		},
		[]string{"provider", "operation", "status"},
	)

	// ProviderOperationDuration measures how long store provider
	// operations take to complete.
	ProviderOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_provider_operation_duration_seconds",
			Help:    "Histogram of latencies for store provider operations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)
)

// Register registers all metrics in the default registry.
func Register() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ResolveBatches,
		ResolveRecords,
		LookupsSaved,
		DirectoryRequests,
		DirectoryRequestDuration,
		PersistDispatches,
		ProviderOperations,
		ProviderOperationDuration,
	)
}

// RecordProviderOp increments ProviderOperations with result status.
func RecordProviderOp(provider, operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ProviderOperations.WithLabelValues(provider, operation, status).Inc()
}

// RecordProviderLatency records the duration of a provider operation.
func RecordProviderLatency(provider, operation string, durationSeconds float64) {
	ProviderOperationDuration.WithLabelValues(provider, operation).Observe(durationSeconds)
}

// RecordDirectoryRequest records metrics for one directory call.
func RecordDirectoryRequest(err error, durationSeconds float64) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DirectoryRequests.WithLabelValues(status).Inc()
	DirectoryRequestDuration.Observe(durationSeconds)
}

// RecordResolveOutcome counts resolution outcomes for n records.
func RecordResolveOutcome(outcome string, n int) {
	ResolveRecords.WithLabelValues(outcome).Add(float64(n))
}

// RecordPersistDispatch counts one backfill dispatch result.
func RecordPersistDispatch(result string) {
	PersistDispatches.WithLabelValues(result).Inc()
}
