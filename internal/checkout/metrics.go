package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catrink_orders_placed_total",
			Help: "Orders placed, by shipping method",
		},
		[]string{"shipping"},
	)

	notificationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catrink_notifications_failed_total",
			Help: "Operator notifications that could not be delivered",
		},
	)
)
