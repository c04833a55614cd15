package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	gradingPassesTotal  *prometheus.CounterVec
	gradingPassSeconds  *prometheus.HistogramVec
	gradingQueueDepth   prometheus.Gauge
	gradingDispatchErrs prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for the grading pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		gradingPassesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gradient",
			Subsystem: "grading",
			Name:      "passes_total",
			Help:      "Total number of grading passes by outcome.",
		}, []string{"outcome"})

		gradingPassSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gradient",
			Subsystem: "grading",
			Name:      "pass_seconds",
			Help:      "Duration distribution of grading passes.",
			Buckets:   []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		}, []string{"strictness"})

		gradingQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gradient",
			Subsystem: "grading",
			Name:      "queue_depth",
			Help:      "Number of grading tasks waiting in the in-process queue.",
		})

		gradingDispatchErrs = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gradient",
			Subsystem: "grading",
			Name:      "dispatch_errors_total",
			Help:      "Total number of failed grading task dispatches.",
		})

		prometheus.MustRegister(gradingPassesTotal, gradingPassSeconds, gradingQueueDepth, gradingDispatchErrs)
	})
}

// GradingPasses exposes the counter for grading pass outcomes.
func GradingPasses() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingPassesTotal
}

// GradingPassDuration exposes the latency histogram for grading passes.
func GradingPassDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return gradingPassSeconds
}

// GradingQueueDepth exposes the in-process queue gauge.
func GradingQueueDepth() prometheus.Gauge {
	RegisterMetrics()
	return gradingQueueDepth
}

// GradingDispatchErrors exposes the dispatch failure counter.
func GradingDispatchErrors() prometheus.Counter {
	RegisterMetrics()
	return gradingDispatchErrs
}
