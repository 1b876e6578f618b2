package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Count of read API requests.",
	}, []string{"route", "code"})
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of read API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "code"})
)

// HTTP tracks metrics for the read API.
type HTTP struct{}

// NewHTTP creates an HTTP metrics collector.
func NewHTTP() *HTTP {
	return &HTTP{}
}

// Observe records a served request.
func (HTTP) Observe(route string, code int, started time.Time) {
	c := strconv.Itoa(code)
	httpRequestsTotal.WithLabelValues(route, c).Inc()
	httpRequestDuration.WithLabelValues(route, c).Observe(time.Since(started).Seconds())
}
