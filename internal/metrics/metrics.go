// Package metrics exposes Prometheus collectors for the HTTP API and the
// assessment service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quizengine"

// Metrics holds every collector on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	AttemptsSubmitted *prometheus.CounterVec
	AttemptsDenied    *prometheus.CounterVec
	LateSubmissions   prometheus.Counter
	AttemptScore      prometheus.Histogram
	AttemptDuration   prometheus.Histogram
}

// New creates and registers the collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
		AttemptsSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attempts_submitted_total",
				Help:      "Graded attempts by outcome",
			},
			[]string{"outcome"},
		),
		AttemptsDenied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attempts_denied_total",
				Help:      "Attempts rejected by the gatekeeper",
			},
			[]string{"reason"},
		),
		LateSubmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "late_submissions_total",
			Help:      "Timed attempts submitted after the limit and grace period",
		}),
		AttemptScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attempt_score_percent",
			Help:      "Distribution of attempt scores",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		AttemptDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attempt_duration_seconds",
			Help:      "Authoritative time spent per attempt",
			Buckets:   []float64{15, 30, 60, 120, 300, 600, 1200, 1800, 3600},
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.RequestDuration,
		m.AttemptsSubmitted,
		m.AttemptsDenied,
		m.LateSubmissions,
		m.AttemptScore,
		m.AttemptDuration,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one HTTP request. route is the matched pattern,
// not the raw path.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.RequestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// AttemptSubmitted records a graded attempt.
func (m *Metrics) AttemptSubmitted(score int, passed bool, spent time.Duration) {
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	m.AttemptsSubmitted.WithLabelValues(outcome).Inc()
	m.AttemptScore.Observe(float64(score))
	m.AttemptDuration.Observe(spent.Seconds())
}

// AttemptDenied records a gatekeeper denial.
func (m *Metrics) AttemptDenied(reason string) {
	m.AttemptsDenied.WithLabelValues(reason).Inc()
}

// LateSubmission records a timed attempt that arrived after its grace period.
func (m *Metrics) LateSubmission() {
	m.LateSubmissions.Inc()
}
