package cache

import "github.com/prometheus/client_golang/prometheus"

var (
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "forecastgate_cache_hits_total",
		Help: "Total prediction cache hits",
	})

	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "forecastgate_cache_misses_total",
		Help: "Total prediction cache misses, including expired entries",
	})

	cacheEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "forecastgate_cache_evictions_total",
		Help: "Total entries lazily evicted on lookup after TTL expiry",
	})
)

func init() {
	prometheus.MustRegister(cacheHits)
	prometheus.MustRegister(cacheMisses)
	prometheus.MustRegister(cacheEvictions)
}
