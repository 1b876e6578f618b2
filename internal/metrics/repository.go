package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	repositoryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "repository",
		Name:      "operations_total",
		Help:      "Count of metrics store operations.",
	}, []string{"backend", "operation", "status"})
	repositoryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of metrics store operations.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"backend", "operation", "status"})
)

// Repository tracks metrics for one metrics store backend.
type Repository struct {
	backend string
}

// NewRepository creates a Repository metrics collector for backend (clickhouse, postgres, memory).
func NewRepository(backend string) *Repository {
	if backend == "" {
		backend = "unknown"
	}
	return &Repository{backend: backend}
}

// Observe records duration and status of a repository operation.
func (m Repository) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)
	repositoryRequestsTotal.WithLabelValues(m.backend, operation, status).Inc()
	repositoryRequestDuration.WithLabelValues(m.backend, operation, status).Observe(time.Since(started).Seconds())
}
