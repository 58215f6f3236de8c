package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors the service exports on /metrics.
type Metrics struct {
	Allocations         *prometheus.CounterVec
	Releases            *prometheus.CounterVec
	Notifications       *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg. Tests pass a fresh prometheus.NewRegistry().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Allocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "slotbook_allocations_total",
			Help: "Slot allocation attempts by outcome.",
		}, []string{"outcome"}),
		Releases: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "slotbook_releases_total",
			Help: "Booking releases by outcome.",
		}, []string{"outcome"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "slotbook_notifications_total",
			Help: "Notification emits by type and outcome.",
		}, []string{"type", "outcome"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slotbook_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// ObserveAllocation counts an allocation outcome; nil receivers are ignored.
func (m *Metrics) ObserveAllocation(outcome string) {
	if m == nil {
		return
	}
	m.Allocations.WithLabelValues(outcome).Inc()
}

// ObserveRelease counts a release outcome; nil receivers are ignored.
func (m *Metrics) ObserveRelease(outcome string) {
	if m == nil {
		return
	}
	m.Releases.WithLabelValues(outcome).Inc()
}

// ObserveNotification counts an emit outcome; nil receivers are ignored.
func (m *Metrics) ObserveNotification(kind, outcome string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(kind, outcome).Inc()
}
