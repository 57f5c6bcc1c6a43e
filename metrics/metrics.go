// ABOUTME: Prometheus instrumentation for entity operations and HTTP requests
// ABOUTME: Collectors register with the default registry served at /metrics

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crmsync_operations_total",
		Help: "Entity operations by kind, operation, and result",
	}, []string{"kind", "op", "result"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crmsync_operation_duration_seconds",
		Help:    "Duration of entity operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind", "op"})

	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crmsync_workspace_loads_total",
		Help: "Workspace refreshes by result",
	}, []string{"result"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crmsync_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crmsync_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// Result labels.
const (
	ResultSuccess   = "success"
	ResultError     = "error"
	ResultDiscarded = "discarded"
)

// ObserveOperation records one facade call.
func ObserveOperation(kind, op string, err error, duration time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	operationsTotal.WithLabelValues(kind, op, result).Inc()
	operationDuration.WithLabelValues(kind, op).Observe(duration.Seconds())
}

// ObserveLoad records the outcome of a workspace refresh.
func ObserveLoad(result string) {
	loadsTotal.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
