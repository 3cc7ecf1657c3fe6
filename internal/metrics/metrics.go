// Package metrics holds the prometheus collectors shared across packages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	PricingCalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_calculations_total",
			Help: "Per-service calculator outcomes",
		},
		[]string{"service", "outcome"},
	)

	DistanceLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distance_lookups_total",
			Help: "Distance estimates by source",
		},
		[]string{"source"},
	)

	QuotesSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quotes_submitted_total",
			Help: "Quote requests stored",
		},
	)

	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Outbox deliveries by channel and result",
		},
		[]string{"channel", "result"},
	)
)
