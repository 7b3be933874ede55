package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "farsha_web"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		},
		[]string{"route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	backendCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_calls_total",
			Help:      "Remote API calls by endpoint group and outcome.",
		},
		[]string{"group", "outcome"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_call_duration_seconds",
			Help:      "Remote API latency by endpoint group.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"group"},
	)

	sessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Session state transitions by namespace and event.",
		},
		[]string{"namespace", "event"},
	)

	guardDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_decisions_total",
			Help:      "Route guard decisions by namespace.",
		},
		[]string{"namespace", "decision"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			backendCalls,
			backendDuration,
			sessionTransitions,
			guardDecisions,
		)
	})
}

// ObserveHTTP records one served request.
func ObserveHTTP(route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveBackend records one remote API call. Outcome is "ok",
// "unauthorized", "error" or "transport".
func ObserveBackend(group, outcome string, elapsed time.Duration) {
	backendCalls.WithLabelValues(group, outcome).Inc()
	backendDuration.WithLabelValues(group).Observe(elapsed.Seconds())
}

func IncSession(ns, event string) {
	sessionTransitions.WithLabelValues(ns, event).Inc()
}

func IncGuard(ns, decision string) {
	guardDecisions.WithLabelValues(ns, decision).Inc()
}
