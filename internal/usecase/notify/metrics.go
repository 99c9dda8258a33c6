package notify

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons of notification_dropped_total.
const (
	dropPoolFull    = "pool_full"
	dropCircuitOpen = "circuit_open"
)

type serviceMetrics struct {
	dispatched *prometheus.CounterVec
	sent       *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	dropped    *prometheus.CounterVec
	active     prometheus.Gauge
	enabled    prometheus.Gauge
}

func newServiceMetrics(reg prometheus.Registerer) *serviceMetrics {
	f := promauto.With(reg)
	return &serviceMetrics{
		dispatched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_dispatched_total",
			Help: "Digest notifications handed to a channel",
		}, []string{"channel"}),
		sent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_sent_total",
			Help: "Digest notifications by outcome",
		}, []string{"channel", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notification_duration_seconds",
			Help:    "Time spent posting one notification, retries included",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		}, []string{"channel"}),
		dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_dropped_total",
			Help: "Digest notifications never sent",
		}, []string{"channel", "reason"}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Name: "notification_active_goroutines",
			Help: "Notification sends in flight or waiting for a worker slot",
		}),
		enabled: f.NewGauge(prometheus.GaugeOpts{
			Name: "notification_channels_enabled",
			Help: "Enabled notification channels",
		}),
	}
}

var defaultServiceMetrics = sync.OnceValue(func() *serviceMetrics {
	return newServiceMetrics(prometheus.DefaultRegisterer)
})

func (m *serviceMetrics) recordResult(channel string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.sent.WithLabelValues(channel, status).Inc()
	m.duration.WithLabelValues(channel).Observe(d.Seconds())
}

func (m *serviceMetrics) recordDropped(channel, reason string) {
	m.dropped.WithLabelValues(channel, reason).Inc()
}
