package rate

import "github.com/prometheus/client_golang/prometheus"

var (
	remainingGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gotado_rate_limit_remaining",
			Help: "Remaining requests announced by the API for the window",
		},
		[]string{"name", "window"},
	)
	retryAfterGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gotado_rate_limit_retry_after_seconds",
			Help: "Last Retry-After announced by the API",
		},
		[]string{"name"},
	)
	lastStatusGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gotado_rate_limit_last_status_code",
			Help: "Last HTTP status code observed by the rate-limit wrapper",
		},
		[]string{"name"},
	)
	blockedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gotado_rate_limit_blocked_total",
			Help: "Requests held back by the rate-limit wrapper",
		},
		[]string{"name", "reason"},
	)
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gotado_rate_limit_cache_hits_total",
			Help: "Blocked requests answered from the response cache",
		},
		[]string{"name"},
	)
)

// MetricsCollectors exposes the rate-limit collectors.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		remainingGauge,
		retryAfterGauge,
		lastStatusGauge,
		blockedTotal,
		cacheHits,
	}
}
