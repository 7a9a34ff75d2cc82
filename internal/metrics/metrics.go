// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GRPCServerHandlingSeconds is a histogram for gRPC server request latencies
	GRPCServerHandlingSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grpc_server_handling_seconds",
			Help:    "Histogram of response latency (seconds) of gRPC that had been application-level handled by the server.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "code"},
	)

	// HTTPRequestSeconds is a histogram for HTTP API latencies
	HTTPRequestSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latency (seconds) by route and status.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"route", "status"},
	)

	// PipelineStageSeconds is a histogram for each classification stage
	PipelineStageSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_seconds",
			Help:    "Histogram of latency (seconds) of each pipeline stage: normalize, encode, infer, interpret.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"stage"},
	)

	// PredictionConfidence is a histogram of winning-class probabilities
	PredictionConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prediction_confidence",
			Help:    "Histogram of softmax probability of the predicted class.",
			Buckets: []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, .95, .99},
		},
	)

	// PipelineErrorsTotal counts failed runs by stage
	PipelineErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_errors_total",
			Help: "Total number of failed pipeline runs by stage.",
		},
		[]string{"stage"},
	)

	// CacheRequestsTotal counts prediction cache lookups by result
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_cache_requests_total",
			Help: "Total number of prediction cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)

	// HealthStatus is a gauge indicating the health status of the service
	HealthStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "health_status",
			Help: "Health status of the service (1 = healthy, 0 = unhealthy).",
		},
	)
)

// RecordGRPCLatency records the latency of a gRPC method call
func RecordGRPCLatency(method, code string, seconds float64) {
	GRPCServerHandlingSeconds.WithLabelValues(method, code).Observe(seconds)
}

// RecordHTTPLatency records the latency of an HTTP request
func RecordHTTPLatency(route, status string, seconds float64) {
	HTTPRequestSeconds.WithLabelValues(route, status).Observe(seconds)
}

// RecordStage records the latency of one pipeline stage
func RecordStage(stage string, seconds float64) {
	PipelineStageSeconds.WithLabelValues(stage).Observe(seconds)
}

// RecordStageError counts a pipeline failure in the given stage
func RecordStageError(stage string) {
	PipelineErrorsTotal.WithLabelValues(stage).Inc()
}

// RecordConfidence records the probability of a prediction
func RecordConfidence(p float64) {
	PredictionConfidence.Observe(p)
}

// RecordCache counts a cache lookup outcome
func RecordCache(result string) {
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

// SetHealthy sets the health status to healthy
func SetHealthy() {
	HealthStatus.Set(1)
}

// SetUnhealthy sets the health status to unhealthy
func SetUnhealthy() {
	HealthStatus.Set(0)
}
