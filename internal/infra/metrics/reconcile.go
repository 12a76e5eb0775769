package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		reconcileIntentsTotal,
		reconcileLastRun,
	)
}

var (
	reconcileIntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_intents_total",
			Help: "Stale pending intents processed by the reconcile worker, labeled by outcome.",
		},
		[]string{"outcome"}, // 'settled', 'still_pending', 'error'
	)

	reconcileLastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reconcile_last_run_timestamp_seconds",
			Help: "Unix time of the last completed reconcile sweep.",
		},
	)
)

func IncReconcileIntent(outcome string) {
	reconcileIntentsTotal.WithLabelValues(norm(outcome)).Inc()
}

func SetReconcileLastRun(unixSeconds float64) {
	reconcileLastRun.Set(unixSeconds)
}
