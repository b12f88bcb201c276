package cache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opGet = "get"
	opSet = "set"
	opDel = "del"

	resultOK      = "ok"
	resultMiss    = "miss"
	resultError   = "error"
	resultInvalid = "invalid"
)

type metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	connected  prometheus.Gauge
}

// newMetrics builds the collectors; with a nil registerer they are live but
// unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kvcache",
			Name:      "operations_total",
			Help:      "Store operations by type and outcome.",
		}, []string{"op", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kvcache",
			Name:      "operation_duration_seconds",
			Help:      "Round trip time of store operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"op"}),
		connected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "kvcache",
			Name:      "connected",
			Help:      "1 while the store connection is up.",
		}),
	}
}

func (m *metrics) record(op, result string, start time.Time) {
	m.operations.WithLabelValues(op, result).Inc()
	if result != resultInvalid {
		m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
