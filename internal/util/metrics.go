package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of rejected order creations",
	}, []string{"reason"})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	OrderStatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_updates_total",
		Help: "Total number of order status transitions",
	}, []string{"status"})

	NearbyQueryLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nearby_query_latency_seconds",
		Help:    "Latency of nearby-shop geo queries",
		Buckets: prometheus.DefBuckets,
	})

	NearbyQueryResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nearby_query_results",
		Help:    "Number of shops returned by nearby queries",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	NearbyFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nearby_fallback_total",
		Help: "Nearby queries answered by the database fallback path",
	})

	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart operations",
	}, []string{"op"})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logins_total",
		Help: "Total number of login attempts",
	}, []string{"result"})

	ShopsRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shops_registered_total",
		Help: "Total number of shops registered",
	})

	ProductsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "Total number of products created",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
