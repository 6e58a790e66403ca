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
			Namespace: "shrink",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shrink",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	codecOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shrink",
			Subsystem: "codec",
			Name:      "operations_total",
			Help:      "Codec operations by outcome.",
		},
		[]string{"op", "success"},
	)
	codecBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shrink",
			Subsystem: "codec",
			Name:      "processed_bytes_total",
			Help:      "Payload bytes processed by successful codec operations.",
		},
		[]string{"op"},
	)
	storeOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shrink",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Buffer store operations by backend and outcome.",
		},
		[]string{"backend", "op", "success"},
	)
	storeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shrink",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Buffer store operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "op", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, codecOps, codecBytes, storeOps, storeDuration)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordCodecOp(op string, payloadBytes int, success bool) {
	RegisterMetrics()
	codecOps.WithLabelValues(op, strconv.FormatBool(success)).Inc()
	if success {
		codecBytes.WithLabelValues(op).Add(float64(payloadBytes))
	}
}

func RecordStoreOp(backend, op string, duration time.Duration, success bool) {
	RegisterMetrics()
	successLabel := strconv.FormatBool(success)
	storeOps.WithLabelValues(backend, op, successLabel).Inc()
	storeDuration.WithLabelValues(backend, op, successLabel).Observe(duration.Seconds())
}
