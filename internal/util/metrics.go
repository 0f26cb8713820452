package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "combo_recommendations_total",
		Help: "Total number of combo recommendation requests by outcome",
	}, []string{"outcome"})

	RecommendationSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "combo_recommendation_size",
		Help:    "Number of items returned per combo recommendation",
		Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
	})

	ForecastRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingredient_forecast_runs_total",
		Help: "Total number of ingredient forecast runs by outcome",
	}, []string{"outcome"})

	ForecastLines = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ingredient_forecast_lines",
		Help: "Ingredients per status in the latest forecast",
	}, []string{"status"})

	PipelineLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analytics_pipeline_latency_seconds",
		Help:    "Latency of analytics pipelines",
		Buckets: prometheus.DefBuckets,
	}, []string{"pipeline"})

	OrdersScanned = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analytics_orders_scanned",
		Help:    "Number of order documents read per pipeline run",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"pipeline"})

	ItemCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "item_cache_hits_total",
		Help: "Total number of item metadata lookups served from Redis",
	})

	ItemCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "item_cache_misses_total",
		Help: "Total number of item metadata lookups that went to the store",
	})

	StoreBreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_breaker_transitions_total",
		Help: "Total number of store circuit breaker state changes by target state",
	}, []string{"state"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_events_published_total",
		Help: "Total number of analytics events published",
	}, []string{"event_type"})

	EventsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_events_failed_total",
		Help: "Total number of consumed events whose handler failed and were skipped",
	}, []string{"topic"})

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
