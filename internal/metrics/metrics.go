package metrics

import (
	"net/http"
	"strconv"
	"time"

	"trading-supervisor/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements supervisor.Recorder and the HTTP request metrics
// using Prometheus.
type Recorder struct {
	registry        *prometheus.Registry
	recommendations *prometheus.CounterVec
	toolFailures    *prometheus.CounterVec
	queryLatency    *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil reg gets a fresh registry
// with the Go and process collectors attached.
func New(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		recommendations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supervisor_recommendations_total",
				Help: "Recommendations produced, by action",
			},
			[]string{"action"},
		),
		toolFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supervisor_tool_failures_total",
				Help: "Analysis tool failures, by tool and error code",
			},
			[]string{"tool", "code"},
		),
		queryLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "supervisor_query_duration_seconds",
				Help:    "End-to-end query latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
			},
			[]string{"action"},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

func (r *Recorder) ObserveQuery(action domain.Action, elapsed time.Duration) {
	r.recommendations.WithLabelValues(string(action)).Inc()
	r.queryLatency.WithLabelValues(string(action)).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveToolFailure(tool domain.Tool, code domain.ErrorCode) {
	r.toolFailures.WithLabelValues(string(tool), string(code)).Inc()
}

// ObserveHTTP records one request. Route should be the templated path to
// keep label cardinality low.
func (r *Recorder) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
