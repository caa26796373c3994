// Package metrics defines the Prometheus instruments for the push pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every instrument registered for this service.
type Metrics struct {
	Delivered       prometheus.Counter
	Failed          prometheus.Counter
	Skipped         prometheus.Counter
	DeliveryLatency prometheus.Histogram
}

// New registers all instruments on reg. queueLen feeds a live queue-depth
// gauge so a stalled gateway is visible before the queue sheds load.
func New(reg *prometheus.Registry, queueLen func() int) *Metrics {
	m := &Metrics{
		Delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "push_notifications_delivered_total",
			Help: "Notifications accepted by the push gateway.",
		}),
		Failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "push_notifications_failed_total",
			Help: "Delivery attempts that failed (transport or gateway rejection).",
		}),
		Skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "push_notifications_skipped_total",
			Help: "Items discarded because the user had no device token.",
		}),
		DeliveryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "push_delivery_latency_seconds",
			Help:    "Latency of one delivery attempt, lookup included.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	queueDepth := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "push_queue_depth",
		Help: "Items currently waiting in the in-memory queue.",
	}, func() float64 { return float64(queueLen()) })

	reg.MustRegister(m.Delivered, m.Failed, m.Skipped, m.DeliveryLatency, queueDepth)
	return m
}

// DispatchHooks returns the callbacks the dispatcher invokes per outcome.
func (m *Metrics) DispatchHooks() (onDelivered func(time.Duration), onFailed, onSkipped func()) {
	onDelivered = func(latency time.Duration) {
		m.Delivered.Inc()
		m.DeliveryLatency.Observe(latency.Seconds())
	}
	onFailed = func() { m.Failed.Inc() }
	onSkipped = func() { m.Skipped.Inc() }
	return onDelivered, onFailed, onSkipped
}
