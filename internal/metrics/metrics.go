package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// TicketsIssued counts committed tickets by payment method.
	TicketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Tickets issued by payment method",
		},
		[]string{"method"},
	)

	// PurchaseRejections counts failed purchase attempts by method and reason.
	PurchaseRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_rejections_total",
			Help: "Rejected purchase attempts by payment method and reason",
		},
		[]string{"method", "reason"},
	)

	PromoRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_rejections_total",
			Help: "Rejected promo validations by reason",
		},
		[]string{"reason"},
	)

	// ExchangeRateFallbacks counts price-feed failures answered with the fallback rate.
	ExchangeRateFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exchange_rate_fallbacks_total",
			Help: "Price feed failures answered with the fallback rate",
		},
	)

	ExchangeRateCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exchange_rate_cache_hits_total",
			Help: "Exchange rates served from cache",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Telegram notifications by outcome",
		},
		[]string{"outcome"},
	)
)
