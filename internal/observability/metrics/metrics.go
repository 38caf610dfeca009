package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolshare_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "toolshare_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	borrowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolshare_borrows_total",
		Help: "Count of borrow attempts by result",
	}, []string{"result"})

	returnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolshare_returns_total",
		Help: "Count of return attempts by result",
	}, []string{"result"})

	availableTools = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "toolshare_available_tools",
		Help: "Number of tools currently free to borrow",
	})

	openLoans = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "toolshare_open_loans",
		Help: "Number of pending borrowing transactions",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveBorrow increments the borrow counter for the given result
func ObserveBorrow(result string) {
	borrowsTotal.WithLabelValues(result).Inc()
}

// ObserveReturn increments the return counter for the given result
func ObserveReturn(result string) {
	returnsTotal.WithLabelValues(result).Inc()
}

// SetAvailableTools sets the available tools gauge
func SetAvailableTools(count int) {
	if count < 0 {
		count = 0
	}
	availableTools.Set(float64(count))
}

// SetOpenLoans sets the open loans gauge
func SetOpenLoans(count int) {
	if count < 0 {
		count = 0
	}
	openLoans.Set(float64(count))
}
