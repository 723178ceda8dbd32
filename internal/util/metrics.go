package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RedemptionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "redemptions_total",
		Help: "Total number of successful reward redemptions",
	})

	RedemptionsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redemptions_failed_total",
		Help: "Total number of failed reward redemptions",
	}, []string{"reason"})

	RedemptionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "redemption_latency_seconds",
		Help:    "Latency of the redemption transaction",
		Buckets: prometheus.DefBuckets,
	})

	RedemptionPointsSpent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "redemption_points_spent_total",
		Help: "Total carbon credits spent on redemptions",
	})

	PostsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posts_created_total",
		Help: "Total number of posts created",
	})

	PostsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posts_deleted_total",
		Help: "Total number of posts deleted",
	})

	PointsCreditedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "points_credited_total",
		Help: "Total carbon credits awarded for posts",
	})

	ScoringFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scoring_fallback_total",
		Help: "Total number of posts scored with the fallback point value",
	})

	ScoringLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scoring_latency_seconds",
		Help:    "Latency of the external scoring call",
		Buckets: prometheus.DefBuckets,
	})

	FulfillmentEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_events_total",
		Help: "Total redemption events handled by the fulfillment worker",
	}, []string{"status"})

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
