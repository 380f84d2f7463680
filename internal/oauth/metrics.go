package oauth

import "github.com/prometheus/client_golang/prometheus"

var (
	persistFailure = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gotado_state_persist_failure_total",
		Help: "Failed writes of the local token state file",
	})
	remotePersistOK = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gotado_state_remote_persist_ok",
		Help: "Remote blob persistence health (1=ok, 0=error)",
	})
	remoteConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gotado_state_remote_conflict_total",
		Help: "Saves skipped because the blob copy was newer",
	})
)

// MetricsCollectors returns collectors for token state persistence.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		persistFailure,
		remotePersistOK,
		remoteConflicts,
	}
}
