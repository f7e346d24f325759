package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineMetrics holds all Prometheus metrics for the logging pipeline.
type PipelineMetrics struct {
	EntriesEnqueued     prometheus.Counter
	EntriesDropped      prometheus.Counter
	EntriesFiltered     *prometheus.CounterVec
	EntriesDelivered    *prometheus.CounterVec
	RedactionsApplied   *prometheus.CounterVec
	DestinationErrors   *prometheus.CounterVec
	DestinationTimeouts *prometheus.CounterVec
	RateLimited         *prometheus.CounterVec
	QueueDepth          prometheus.Gauge
}

// NewPipelineMetrics registers the pipeline metrics on the default
// registerer.
func NewPipelineMetrics() *PipelineMetrics {
	return NewPipelineMetricsWith(prometheus.DefaultRegisterer)
}

// NewPipelineMetricsWith registers on an explicit registerer, which keeps
// tests free of global registry collisions.
func NewPipelineMetricsWith(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)
	return &PipelineMetrics{
		EntriesEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "privlog",
			Subsystem: "pipeline",
			Name:      "entries_enqueued_total",
			Help:      "Total number of entries accepted onto the pipeline queue.",
		}),
		EntriesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "privlog",
			Subsystem: "pipeline",
			Name:      "entries_dropped_total",
			Help:      "Total number of entries dropped because a queue was full.",
		}),
		EntriesFiltered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "privlog",
			Subsystem: "pipeline",
			Name:      "entries_filtered_total",
			Help:      "Total number of entries rejected per destination by reason.",
		}, []string{"destination", "reason"}), // reason: level_floor, rule, rate_limit
		EntriesDelivered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "privlog",
			Subsystem: "pipeline",
			Name:      "entries_delivered_total",
			Help:      "Total number of entries successfully written per destination.",
		}, []string{"destination"}),
		RedactionsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "privlog",
			Subsystem: "pipeline",
			Name:      "redactions_applied_total",
			Help:      "Total number of entries passed through a destination's redactor.",
		}, []string{"destination"}),
		DestinationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "privlog",
			Subsystem: "destination",
			Name:      "write_errors_total",
			Help:      "Total number of failed destination writes.",
		}, []string{"destination"}),
		DestinationTimeouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "privlog",
			Subsystem: "destination",
			Name:      "write_timeouts_total",
			Help:      "Total number of destination writes abandoned at the deadline.",
		}, []string{"destination"}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "privlog",
			Subsystem: "destination",
			Name:      "rate_limited_total",
			Help:      "Total number of entries dropped by a destination rate limit.",
		}, []string{"destination"}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "privlog",
			Subsystem: "pipeline",
			Name:      "queue_depth",
			Help:      "Current number of entries waiting on the pipeline queue.",
		}),
	}
}
