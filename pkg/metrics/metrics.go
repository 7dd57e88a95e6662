package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Global collectors, registered on the default registry by promauto.

var (
	// HttpRequestsTotal counts requests, labeled by method, path and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globalroute_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HttpRequestDuration measures server response time.
	// The classifier round trip dominates when it is enabled.
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "globalroute_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	// SearchesTotal counts route searches by outcome
	// (ok, node_not_found, banned_endpoint, no_path_found, error).
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globalroute_searches_total",
			Help: "Total number of route searches by outcome",
		},
		[]string{"outcome"},
	)

	// SearchDuration measures the search and pricing alone, classifier excluded.
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "globalroute_search_duration_seconds",
			Help:    "Duration of the path search in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)

	// NodesExpanded tracks how much of the network a search had to open.
	NodesExpanded = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "globalroute_search_nodes_expanded",
			Help:    "Number of nodes expanded per search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	// ClassifierCalls counts classifier lookups by outcome (ok, unavailable).
	ClassifierCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globalroute_classifier_calls_total",
			Help: "Total number of cargo classifier calls by outcome",
		},
		[]string{"outcome"},
	)

	// GraphSize reports the loaded network size (kind = nodes | edges).
	GraphSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "globalroute_graph_size",
			Help: "Number of nodes and edges in the loaded transport network",
		},
		[]string{"kind"},
	)
)
