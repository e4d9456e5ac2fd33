// Package monitoring exposes Prometheus metrics and the live prediction feed.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PredictionsTotal counts stored predictions by eligibility label.
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_predictions_total",
			Help: "Total number of stored predictions",
		},
		[]string{"label"},
	)

	// ValidationErrorsTotal counts rejected requests by offending feature.
	ValidationErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_validation_errors_total",
			Help: "Total number of prediction requests rejected for a non-numeric feature",
		},
		[]string{"field"},
	)

	// OperationalErrorsTotal counts internal failures by operation.
	OperationalErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_operational_errors_total",
			Help: "Total number of requests that failed with an internal error",
		},
		[]string{"op"},
	)

	// PredictionsDeletedTotal counts records removed by bulk delete.
	PredictionsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eligibility_predictions_deleted_total",
			Help: "Total number of prediction records removed by bulk delete",
		},
	)

	// RequestDuration measures handler latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eligibility_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "status"},
	)

	// FeedClients is the number of connected feed subscribers.
	FeedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eligibility_feed_clients",
			Help: "Number of connected prediction feed clients",
		},
	)
)

func RecordPrediction(label string) {
	PredictionsTotal.WithLabelValues(label).Inc()
}

func RecordValidationError(field string) {
	ValidationErrorsTotal.WithLabelValues(field).Inc()
}

func RecordOperationalError(op string) {
	OperationalErrorsTotal.WithLabelValues(op).Inc()
}

func RecordDeleted(n int64) {
	if n > 0 {
		PredictionsDeletedTotal.Add(float64(n))
	}
}

func RecordRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
