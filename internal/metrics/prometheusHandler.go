package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var documentsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "documents_ingested_total",
	Help: "Documents processed by the ingest pipeline, labelled by outcome",
}, []string{"status"})

var indexVectors = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "index_vectors",
	Help: "Number of vectors held by the local index",
})

var answersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "answers_total",
	Help: "Answers produced, labelled by mode (llm, cached, context_only, fallback)",
}, []string{"mode"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "process_request_duration_seconds",
	Help:    "Total time spent answering or ingesting, by operation.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"operation"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of pipeline steps and external service calls.",
	Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureRequestMetrics(operation string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(operation).Observe(timeElapsed.Seconds())
}

func CountIngest(status string) {
	documentsIngested.WithLabelValues(status).Inc()
}

func SetIndexSize(vectors int) {
	indexVectors.Set(float64(vectors))
}

func CountAnswer(mode string) {
	answersTotal.WithLabelValues(mode).Inc()
}
