package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ContentMetrics records calls made to the content backend.
type ContentMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewContentMetrics registers the content backend metrics on the provided registerer.
func NewContentMetrics(reg prometheus.Registerer) *ContentMetrics {
	if reg == nil {
		return &ContentMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "content_request_duration_seconds",
		Help:    "Latency of content backend requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "method"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "content_requests_total",
		Help: "Content backend requests by outcome status.",
	}, []string{"collection", "method", "status"})
	reg.MustRegister(duration, requests)
	return &ContentMetrics{
		duration: duration,
		requests: requests,
	}
}

// Observe records one completed request. status 0 marks a transport failure.
func (c *ContentMetrics) Observe(collection, method string, status int, elapsed time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	collection = normalizeLabel(collection)
	c.duration.WithLabelValues(collection, method).Observe(elapsed.Seconds())
	c.requests.WithLabelValues(collection, method, statusLabel(status)).Inc()
}

func statusLabel(status int) string {
	if status == 0 {
		return "transport_error"
	}
	return strconv.Itoa(status)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
