// Package metrics provides the centralized Prometheus registry for the
// Graph API client. All metrics are defined in their respective packages
// (graph, cache) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/graph):
//   - graph_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - graph_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - graph_errors_total{class} (Counter): Errors by class (service, oauth, transport)
//   - graph_retries_total{endpoint} (Counter): Retry attempts by endpoint
//
// Cache Metrics (pkg/cache):
//   - graph_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - graph_cache_misses_total (Counter): Cache misses
//   - graph_cache_size_bytes{layer="redis"} (Gauge): Bytes written to the cache
//   - graph_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(graph_cache_hits_total[5m])) /
//   (sum(rate(graph_cache_hits_total[5m])) + sum(rate(graph_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(graph_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(graph_request_duration_seconds_bucket[5m]))
