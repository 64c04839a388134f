package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
)

const namespace = "iawashing"

// Recorder owns a private registry so that several instances can coexist
// in tests.
type Recorder struct {
	registry     *prometheus.Registry
	submissions  *prometheus.CounterVec
	scores       prometheus.Histogram
	httpRequests *prometheus.CounterVec
	wsClients    prometheus.Gauge
}

var _ interfaces.MetricsRecorder = &Recorder{}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Total number of scored submissions by risk level",
			},
			[]string{"level"},
		),
		scores: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "submission_score",
				Help:      "Distribution of IAwashing risk scores",
				Buckets:   prometheus.LinearBuckets(10, 10, 10),
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		wsClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_clients",
				Help:      "Number of connected dashboard websocket clients",
			},
		),
	}

	r.registry.MustRegister(
		r.submissions,
		r.scores,
		r.httpRequests,
		r.wsClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) RecordSubmission(level string, score int) {
	r.submissions.WithLabelValues(level).Inc()
	r.scores.Observe(float64(score))
}

func (r *Recorder) RecordHTTPRequest(method, route string, status int) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (r *Recorder) WebSocketConnected() {
	r.wsClients.Inc()
}

func (r *Recorder) WebSocketDisconnected() {
	r.wsClients.Dec()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// SubmissionCounter exposes the counter for a level, used by tests.
func (r *Recorder) SubmissionCounter(level string) prometheus.Counter {
	return r.submissions.WithLabelValues(level)
}
