package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "launchpad"

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	tokensCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "created_total",
			Help:      "Tokens registered.",
		},
	)

	graduations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "graduations_total",
			Help:      "Tokens graduated to a Raydium pool.",
		},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "status_transitions_total",
			Help:      "Graduation status changes.",
		},
		[]string{"from", "to"},
	)

	rpcCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana_rpc",
			Name:      "calls_total",
			Help:      "Solana RPC calls by method and result.",
		},
		[]string{"method", "result"},
	)

	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana_rpc",
			Name:      "call_duration_seconds",
			Help:      "Duration of Solana RPC calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"method"},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Lifecycle events by sink and result.",
		},
		[]string{"sink", "result"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		tokensCreated,
		graduations,
		statusTransitions,
		rpcCalls,
		rpcDuration,
		eventsPublished,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes Registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route, status string, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func TokenCreated() {
	tokensCreated.Inc()
}

func TokenGraduated() {
	graduations.Inc()
}

func StatusTransition(from, to string) {
	statusTransitions.WithLabelValues(from, to).Inc()
}

// ObserveRPC records a chain call.
func ObserveRPC(method string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	rpcCalls.WithLabelValues(method, result).Inc()
	rpcDuration.WithLabelValues(method).Observe(d.Seconds())
}

// EventPublished records a delivery attempt to sink.
func EventPublished(sink string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	eventsPublished.WithLabelValues(sink, result).Inc()
}
