// Package metrics exposes Prometheus collectors for the ideas server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "brainiac"

// Hierarchy build outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"
	OutcomeStale    = "stale"
)

// Login outcomes.
const (
	LoginSuccess     = "success"
	LoginFailure     = "failure"
	LoginRateLimited = "rate_limited"
)

// Registry holds every collector of this package plus the Go and process
// collectors. It is served by Handler.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	hierarchyBuildsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hierarchy",
			Name:      "builds_total",
			Help:      "Hierarchy builds by outcome.",
		},
		[]string{"outcome"},
	)

	hierarchyBuildDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "hierarchy",
			Name:      "build_duration_seconds",
			Help:      "Time to build a hierarchy, including failed builds.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	hierarchyTagFailuresTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hierarchy",
			Name:      "tag_failures_total",
			Help:      "Per-tag idea fetches that failed during hierarchy builds.",
		},
	)

	hierarchyGeneration = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hierarchy",
			Name:      "published_generation",
			Help:      "Generation of the currently published hierarchy.",
		},
	)

	loginAttemptsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "One-time-code login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// ObserveHierarchyBuild records one finished build.
func ObserveHierarchyBuild(outcome string, took time.Duration) {
	hierarchyBuildsTotal.WithLabelValues(outcome).Inc()
	hierarchyBuildDuration.Observe(took.Seconds())
}

// HierarchyTagFailed counts one failed per-tag fetch.
func HierarchyTagFailed() {
	hierarchyTagFailuresTotal.Inc()
}

// HierarchyPublished records the generation now being served.
func HierarchyPublished(generation uint64) {
	hierarchyGeneration.Set(float64(generation))
}

// LoginAttempt counts one login attempt.
func LoginAttempt(outcome string) {
	loginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest records one served request. route is the matched
// pattern, never the raw path, to keep label cardinality bounded.
func ObserveHTTPRequest(method, route string, status int, took time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}
