package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart mutations by operation",
		},
		[]string{"operation"},
	)

	noticesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cart_notices_total",
			Help: "Shopper notices emitted for stock-bounded cart operations",
		},
	)
)
