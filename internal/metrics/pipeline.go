package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
)

var (
	pipelineStepTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "steps_total",
		Help:      "Count of ingestion steps by outcome.",
	}, []string{"network", "step", "status"})

	pipelineStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "step_duration_seconds",
		Help:      "Duration of ingestion steps.",
		Buckets:   []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"network", "step", "status"})

	pipelineRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Count of ingestion runs by outcome.",
	}, []string{"network", "status"})

	pipelineBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "blocks_total",
		Help:      "Count of blocks visited by the transaction aggregation, fetched or skipped.",
	}, []string{"network", "status"})

	pipelineDaysWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "days_written_total",
		Help:      "Count of daily transaction rows upserted.",
	}, []string{"network"})

	pipelineFeeTargetTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "fee_targets_total",
		Help:      "Count of fee estimation attempts per confirmation target.",
	}, []string{"network", "target", "status"})

	pipelineLastSuccess = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last ingestion run with at least one successful step.",
	}, []string{"network"})
)

// Pipeline tracks metrics for the ingestion pipeline.
type Pipeline struct {
	network model.Network
}

// NewPipeline constructs a Pipeline metrics collector.
func NewPipeline(network model.Network) *Pipeline {
	if network == "" {
		network = "unknown"
	}
	return &Pipeline{network: network}
}

// ObserveStep records the outcome and duration of one ingestion step.
func (m Pipeline) ObserveStep(step string, err error, started time.Time) {
	status := statusOf(err)
	pipelineStepTotal.WithLabelValues(string(m.network), step, status).Inc()
	pipelineStepDuration.WithLabelValues(string(m.network), step, status).Observe(time.Since(started).Seconds())
}

// ObserveRun records a finished run. healthy reports whether any step succeeded.
func (m Pipeline) ObserveRun(healthy bool, finished time.Time) {
	if !healthy {
		pipelineRunsTotal.WithLabelValues(string(m.network), "error").Inc()
		return
	}
	pipelineRunsTotal.WithLabelValues(string(m.network), "success").Inc()
	pipelineLastSuccess.WithLabelValues(string(m.network)).Set(float64(finished.Unix()))
}

// ObserveBlocks records how many blocks of a window were fetched and skipped.
func (m Pipeline) ObserveBlocks(fetched, skipped int) {
	pipelineBlocksTotal.WithLabelValues(string(m.network), "fetched").Add(float64(fetched))
	pipelineBlocksTotal.WithLabelValues(string(m.network), "skipped").Add(float64(skipped))
}

// ObserveDayWritten records an upserted daily transaction row.
func (m Pipeline) ObserveDayWritten() {
	pipelineDaysWrittenTotal.WithLabelValues(string(m.network)).Inc()
}

// ObserveFeeTarget records a fee estimation attempt for target.
func (m Pipeline) ObserveFeeTarget(target uint16, err error) {
	pipelineFeeTargetTotal.WithLabelValues(string(m.network), strconv.Itoa(int(target)), statusOf(err)).Inc()
}
