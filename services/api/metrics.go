package apisvc

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gyaanbuddy",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API requests sent.",
			},
			[]string{"method", "group", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gyaanbuddy",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Duration of API requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"method", "group"},
		),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// observe records a request; status 0 means no response was received.
func (m *metrics) observe(method, path string, status int, elapsed time.Duration) {
	group := pathGroup(path)
	m.requests.WithLabelValues(method, group, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, group).Observe(elapsed.Seconds())
}

// pathGroup keeps the first segment of path so that ids do not explode label cardinality.
func pathGroup(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}
