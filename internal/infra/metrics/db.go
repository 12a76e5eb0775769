package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolConns) }

var dbPoolConns = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "ledger_db_pool_connections",
		Help: "Connections in the purchase-ledger pgx pool by state.",
	},
	[]string{"state"},
)

// SetDBPoolStats mirrors pgxpool.Stat; acquired counts connections
// currently serving queries.
func SetDBPoolStats(total, idle, acquired int32) {
	dbPoolConns.WithLabelValues("total").Set(float64(total))
	dbPoolConns.WithLabelValues("idle").Set(float64(idle))
	dbPoolConns.WithLabelValues("acquired").Set(float64(acquired))
}
