package ratelimit

import "github.com/prometheus/client_golang/prometheus"

var limiterDecisions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "forecastgate_limiter_decisions_total",
		Help: "Rate limiter acquisition outcomes",
	},
	[]string{"kind"},
)

func init() {
	prometheus.MustRegister(limiterDecisions)
}
