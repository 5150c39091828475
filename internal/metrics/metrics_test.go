package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()
	m.BookingCommitted("booking")
	m.BookingCommitted("booking")
	m.BookingRejected("staff")
	m.TicketSessions("consumed", 2)
	m.TicketSessions("restored", 0)
	m.StatusChanged("cancelled")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookings.WithLabelValues("booking")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflicts.WithLabelValues("staff")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessions.WithLabelValues("consumed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessions.WithLabelValues("restored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statuses.WithLabelValues("cancelled")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BookingCommitted("booking")
		m.BookingRejected("bed")
		m.StatusChanged("completed")
		m.TicketSessions("consumed", 1)
		m.ObserveRequest("GET", "/healthz", 200, time.Millisecond)
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/v1/bookings", 200, 20*time.Millisecond)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "salon_http_request_duration_seconds")
}
