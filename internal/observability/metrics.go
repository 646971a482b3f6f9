package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helperd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "helperd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	actionExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helperd",
			Subsystem: "actions",
			Name:      "executions_total",
			Help:      "Catalog action executions by action and outcome.",
		},
		[]string{"action", "kind", "success"},
	)
	reportFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "helperd",
			Subsystem: "report",
			Name:      "failures_total",
			Help:      "Outcome reports that the authority never acknowledged.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, actionExecutions, reportFailures)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RecordExecution counts one engine run. kind is "execute" or
// "rollback".
func RecordExecution(action, kind string, success bool) {
	RegisterMetrics()
	actionExecutions.WithLabelValues(action, kind, strconv.FormatBool(success)).Inc()
}

func RecordReportFailure() {
	RegisterMetrics()
	reportFailures.Inc()
}
