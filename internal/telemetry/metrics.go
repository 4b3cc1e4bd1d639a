package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route template and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of http requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests.",
		},
		[]string{"method", "path"},
	)

	// RelationLookups counts game detail secondary lookups by outcome
	// ("ok", "error", "timeout").
	RelationLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crimson_relation_lookups_total",
			Help: "Secondary lookups issued while assembling game details.",
		},
		[]string{"relation", "outcome"},
	)
)
