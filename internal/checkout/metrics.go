package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkouts_total",
			Help: "Checkout attempts by result",
		},
		[]string{"result"},
	)

	unitsSoldTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_checkout_units_total",
			Help: "Units sold through completed checkouts",
		},
	)

	revenueCentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_checkout_revenue_cents_total",
			Help: "Revenue in cents from completed checkouts",
		},
	)
)

const (
	resultCompleted = "completed"
	resultFailed    = "failed"
	resultEmptyCart = "empty_cart"
)
