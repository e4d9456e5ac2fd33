package monitoring

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRecordPrediction(t *testing.T) {
	before := counterValue(t, PredictionsTotal.WithLabelValues("Eligible"))
	RecordPrediction("Eligible")
	RecordPrediction("Eligible")
	if got := counterValue(t, PredictionsTotal.WithLabelValues("Eligible")) - before; got != 2 {
		t.Fatalf("expected 2 increments, got %v", got)
	}
}

func TestRecordDeletedIgnoresZero(t *testing.T) {
	before := counterValue(t, PredictionsDeletedTotal)
	RecordDeleted(0)
	RecordDeleted(4)
	if got := counterValue(t, PredictionsDeletedTotal) - before; got != 4 {
		t.Fatalf("expected 4, got %v", got)
	}
}

func TestRecordRequestUnmatchedRoute(t *testing.T) {
	RecordRequest("GET", "", 404, 3*time.Millisecond)

	var m dto.Metric
	observer := RequestDuration.WithLabelValues("GET", "unmatched", "404")
	if err := observer.(prometheus.Metric).Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if m.GetHistogram().GetSampleCount() == 0 {
		t.Fatal("expected an observation under the unmatched route")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordValidationError("CGPA")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `eligibility_validation_errors_total{field="CGPA"}`) {
		t.Fatalf("metric missing from exposition:\n%s", body)
	}
}
