package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	sessionReconnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zkctl",
			Subsystem: "session",
			Name:      "reconnects_total",
			Help:      "Connection attempts by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)
	sessionHeartbeats = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zkctl",
			Subsystem: "session",
			Name:      "heartbeats_total",
			Help:      "Pings sent to keep the session alive.",
		},
	)
	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zkctl",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Client operations by opcode and outcome.",
		},
		[]string{"op", "outcome"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zkctl",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Client operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	watchEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zkctl",
			Subsystem: "watch",
			Name:      "events_total",
			Help:      "Watch notifications received from the server.",
		},
		[]string{"type"},
	)
	parseFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zkctl",
			Subsystem: "persistence",
			Name:      "parse_failures_total",
			Help:      "Snapshot and txnlog parse failures by kind.",
		},
		[]string{"kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			sessionReconnects, sessionHeartbeats,
			requests, requestDuration,
			watchEvents, parseFailures,
		)
	})
}

func RecordReconnect(endpoint, outcome string) {
	RegisterMetrics()
	sessionReconnects.WithLabelValues(endpoint, outcome).Inc()
}

func RecordHeartbeat() {
	RegisterMetrics()
	sessionHeartbeats.Inc()
}

func RecordRequest(op, outcome string, duration time.Duration) {
	RegisterMetrics()
	requests.WithLabelValues(op, outcome).Inc()
	requestDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func RecordWatchEvent(eventType string) {
	RegisterMetrics()
	watchEvents.WithLabelValues(eventType).Inc()
}

func RecordParseFailure(kind string) {
	RegisterMetrics()
	parseFailures.WithLabelValues(kind).Inc()
}
