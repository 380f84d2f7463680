package tado

import "github.com/prometheus/client_golang/prometheus"

var (
	refreshSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gotado_token_refresh_success_total",
		Help: "Successful access token refreshes",
	})
	refreshFailure = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gotado_token_refresh_failure_total",
		Help: "Failed access token refreshes",
	})
	tokenValid = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gotado_token_valid",
		Help: "Access token validity (1=valid, 0=invalid)",
	})
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gotado_requests_total",
			Help: "API requests by endpoint, method and status code (0=transport error)",
		},
		[]string{"endpoint", "method", "code"},
	)
)

// MetricsCollectors returns the collectors shared by every Client.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		refreshSuccess,
		refreshFailure,
		tokenValid,
		requestsTotal,
	}
}
