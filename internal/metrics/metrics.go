// Package metrics defines the Prometheus collectors of the service.
// Every method is safe on a nil *Metrics so tests and tools can run
// without a registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors and the registry they live in.
type Metrics struct {
	Registry *prometheus.Registry

	bookings  *prometheus.CounterVec
	conflicts *prometheus.CounterVec
	statuses  *prometheus.CounterVec
	sessions  *prometheus.CounterVec
	requests  *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry together with the
// Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Name:      "bookings_committed_total",
			Help:      "Bookings and schedule blocks committed, by type.",
		}, []string{"type"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Name:      "booking_rejections_total",
			Help:      "Booking writes rejected at commit, by reason.",
		}, []string{"reason"}),
		statuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Name:      "booking_status_changes_total",
			Help:      "Booking status transitions, by target status.",
		}, []string{"status"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Name:      "ticket_sessions_total",
			Help:      "Ticket sessions consumed or restored.",
		}, []string{"op"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salon",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.bookings, m.conflicts, m.statuses, m.sessions, m.requests,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) BookingCommitted(bookingType string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(bookingType).Inc()
}

// BookingRejected counts a write refused by a scheduling rule.  reason
// is staff, bed, shift or invalid.
func (m *Metrics) BookingRejected(reason string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(reason).Inc()
}

func (m *Metrics) StatusChanged(status string) {
	if m == nil {
		return
	}
	m.statuses.WithLabelValues(status).Inc()
}

// TicketSessions counts n sessions consumed or restored.
func (m *Metrics) TicketSessions(op string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sessions.WithLabelValues(op).Add(float64(n))
}

func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Observe(d.Seconds())
}
