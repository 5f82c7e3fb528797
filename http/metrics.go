package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docclassifier",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docclassifier",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docclassifier",
			Name:      "predictions_total",
			Help:      "Predictions served, by category",
		},
		[]string{"category"},
	)

	predictionConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docclassifier",
			Name:      "prediction_confidence",
			Help:      "Confidence of served predictions",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration, httpRequestsTotal, predictionsTotal, predictionConfidence)
}

// MetricsMiddleware records request count and duration. Paths outside the
// known routes collapse into "other" to bound label cardinality.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		status := strconv.Itoa(ww.statusCode)
		path := normalizePath(r.URL.Path)
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
	})
}

func normalizePath(path string) string {
	switch path {
	case "/predict", "/api/health", "/metrics":
		return path
	default:
		return "other"
	}
}

func observePrediction(category string, confidence float64) {
	predictionsTotal.WithLabelValues(category).Inc()
	predictionConfidence.Observe(confidence)
}

func metricsHandler() http.Handler {
	return promhttp.Handler()
}
