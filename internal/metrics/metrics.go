package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	// Domain events
	RecipesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_written_total",
			Help: "Recipes created, updated or deleted",
		},
		[]string{"action"},
	)
	RatingsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ratings_submitted_total",
			Help: "Ratings created or overwritten",
		},
	)
	CookbookChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookbook_changes_total",
			Help: "Cookbook entries saved or removed",
		},
		[]string{"action"},
	)
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Image predictions forwarded to the classifier",
		},
		[]string{"outcome"},
	)

	registerOnce sync.Once
)

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestLatency,
			RecipesWritten,
			RatingsSubmitted,
			CookbookChanges,
			Predictions,
		)
	})
}

// Handler serves the /metrics endpoint.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
