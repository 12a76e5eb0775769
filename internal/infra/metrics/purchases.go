package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		purchasesTotal,
		purchasesRevenueTotal,
		promoRedemptionsTotal,
	)
}

var (
	purchasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_total",
			Help: "Purchase intents by item kind and payment status transition.",
		},
		[]string{"kind", "status"},
	)

	purchasesRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_revenue_total",
			Help: "The total monetary value of completed purchases, labeled by currency.",
		},
		[]string{"currency"},
	)

	promoRedemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_redemptions_total",
			Help: "Completed purchases that consumed a promo code.",
		},
		[]string{"code"},
	)
)

func IncPurchase(kind, status string) {
	purchasesTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}

func AddPurchaseRevenue(currency string, amount int64) {
	purchasesRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}

func IncPromoRedemption(code string) {
	promoRedemptionsTotal.WithLabelValues(code).Inc()
}
