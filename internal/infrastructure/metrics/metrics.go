package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransactionsAppended *prometheus.CounterVec
	TransactionsEdited   *prometheus.CounterVec
	LedgerReplacements   prometheus.Counter
	VersionConflicts     prometheus.Counter
	LedgerSize           prometheus.Histogram

	// Summary metrics
	SummaryCache    *prometheus.CounterVec
	SummaryDuration prometheus.Histogram
	ReportsRendered prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Storage metrics
	StorageOperations *prometheus.CounterVec
	StorageErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts  *prometheus.CounterVec
	UsersCreated  prometheus.Counter
	RateLimitHits *prometheus.CounterVec

	// Event metrics
	EventsPublished *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics and registers them on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransactionsAppended: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_transactions_appended_total",
				Help: "Total number of transactions appended by type",
			},
			[]string{"type"},
		),
		TransactionsEdited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_transactions_edited_total",
				Help: "Total number of transactions updated or deleted",
			},
			[]string{"operation"},
		),
		LedgerReplacements: factory.NewCounter(prometheus.CounterOpts{
			Name: "pocketledger_ledger_replacements_total",
			Help: "Total number of full ledger replacements",
		}),
		VersionConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "pocketledger_ledger_version_conflicts_total",
			Help: "Total number of optimistic version conflicts on ledger save",
		}),
		LedgerSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pocketledger_ledger_size",
			Help:    "Number of transactions in a ledger at save time",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000},
		}),

		SummaryCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_summary_cache_total",
				Help: "Summary cache lookups by result",
			},
			[]string{"result"},
		),
		SummaryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pocketledger_summary_duration_seconds",
			Help:    "Duration of summary computation",
			Buckets: prometheus.DefBuckets,
		}),
		ReportsRendered: factory.NewCounter(prometheus.CounterOpts{
			Name: "pocketledger_reports_rendered_total",
			Help: "Total number of PDF reports rendered",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pocketledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		StorageOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_storage_operations_total",
				Help: "Total storage operations by backend and operation",
			},
			[]string{"backend", "operation"},
		),
		StorageErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_storage_errors_total",
				Help: "Total storage errors by backend and operation",
			},
			[]string{"backend", "operation"},
		),

		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"action", "status"},
		),
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "pocketledger_users_created_total",
			Help: "Total number of registered users",
		}),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"path"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_events_published_total",
				Help: "Domain events handed to the broker by type and status",
			},
			[]string{"type", "status"},
		),
	}
}
