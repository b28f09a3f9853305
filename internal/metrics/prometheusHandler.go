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

var streamedFragments = promauto.NewCounter(prometheus.CounterOpts{
	Name: "streamed_fragments_total",
	Help: "Number of answer fragments written to clients",
})

var indexEntries = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "index_entries",
	Help: "Number of chunks in the serving vector index",
})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls and pipeline steps.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

var answerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "answer_stream_duration_seconds",
	Help:    "Total time from question received to stream close.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60},
}, []string{"status"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps the recorder usable for streamed responses.
func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func IncrementStreamedFragments() {
	streamedFragments.Inc()
}

func SetIndexEntries(n int) {
	indexEntries.Set(float64(n))
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureAnswerMetrics(status string, timeElapsed time.Duration) {
	answerDuration.WithLabelValues(status).Observe(timeElapsed.Seconds())
}
