package orchestrator

import "github.com/prometheus/client_golang/prometheus"

var (
	orchestrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastgate_orchestrations_total",
			Help: "Orchestration outcomes by kind",
		},
		[]string{"kind"},
	)

	upstreamFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastgate_upstream_failures_total",
			Help: "Call-level upstream generator failures by class",
		},
		[]string{"class"},
	)

	upstreamLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forecastgate_upstream_latency_seconds",
			Help:    "Latency of upstream generator calls",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	quotaResets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastgate_quota_resets_total",
			Help: "Quota reset attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(orchestrations)
	prometheus.MustRegister(upstreamFailures)
	prometheus.MustRegister(upstreamLatency)
	prometheus.MustRegister(quotaResets)
}
