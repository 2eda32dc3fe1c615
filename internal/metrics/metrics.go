// Package metrics holds the Prometheus collectors the server exports on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuel_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fuel_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PaymentsConfirmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuel_payments_confirmed_total",
			Help: "Payments moved from pending to confirmed, by kind (order or truck).",
		},
		[]string{"kind"},
	)

	StatementsBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuel_statements_built_total",
			Help: "Client statements built, by output format.",
		},
		[]string{"format"},
	)

	DualWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuel_dual_write_failures_total",
			Help: "Multi-document writes that were rolled back, by operation.",
		},
		[]string{"operation"},
	)

	OrdersApproved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fuel_orders_approved_total",
		Help: "Orders priced and approved.",
	})

	OverdueSweeps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuel_overdue_sweep_changes_total",
			Help: "Client status changes made by the overdue sweep, by new status.",
		},
		[]string{"status"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuel_cache_lookups_total",
			Help: "Product cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)
)
