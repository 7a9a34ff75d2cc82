// internal/metrics/metrics_test.go
package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordStageError(t *testing.T) {
	before := testutil.ToFloat64(PipelineErrorsTotal.WithLabelValues("infer"))
	RecordStageError("infer")
	RecordStageError("infer")

	if got := testutil.ToFloat64(PipelineErrorsTotal.WithLabelValues("infer")); got != before+2 {
		t.Errorf("Expected %v infer errors, got %v", before+2, got)
	}
}

func TestRecordCache(t *testing.T) {
	before := testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("hit"))
	RecordCache("hit")

	if got := testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("hit")); got != before+1 {
		t.Errorf("Expected %v cache hits, got %v", before+1, got)
	}
}

func TestHealthStatus(t *testing.T) {
	SetHealthy()
	if got := testutil.ToFloat64(HealthStatus); got != 1 {
		t.Errorf("Expected healthy gauge 1, got %v", got)
	}

	SetUnhealthy()
	if got := testutil.ToFloat64(HealthStatus); got != 0 {
		t.Errorf("Expected unhealthy gauge 0, got %v", got)
	}
}

func TestHistogramsCollect(t *testing.T) {
	RecordStage("normalize", 0.002)
	RecordConfidence(0.66)
	RecordHTTPLatency("/api/v1/classify", "200", 0.01)
	RecordGRPCLatency("/cover.v1.CoverClassifier/Classify", "OK", 0.01)

	if n := testutil.CollectAndCount(PipelineStageSeconds); n == 0 {
		t.Error("Expected stage histogram series")
	}
	if n := testutil.CollectAndCount(PredictionConfidence); n != 1 {
		t.Errorf("Expected 1 confidence series, got %d", n)
	}
	if n := testutil.CollectAndCount(HTTPRequestSeconds); n == 0 {
		t.Error("Expected HTTP histogram series")
	}
	if n := testutil.CollectAndCount(GRPCServerHandlingSeconds); n == 0 {
		t.Error("Expected gRPC histogram series")
	}
}
