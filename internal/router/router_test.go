package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/metrics"
	"github.com/iliyamo/salon-booking/internal/service"
)

func newAPI(m *metrics.Metrics) *echo.Echo {
	bookings := service.NewBookingService(service.BookingDeps{})
	customers := service.NewCustomerService(nil, nil)
	tickets := service.NewTicketService(nil, nil, nil, nil)
	salon := config.SalonConfig{}
	h := Handlers{
		Bookings:  handler.NewBookingHandler(bookings, service.NewLedgerService("", nil, nil, nil), nil),
		Catalog:   &handler.CatalogHandler{},
		Customers: &handler.CustomerHandler{Customers: customers, Tickets: tickets},
		Staff:     handler.NewStaffHandler(service.NewStaffService(nil, nil, nil, salon), service.NewShiftService(nil, nil, nil, nil, salon), nil),
		Payments:  &handler.PaymentHandler{Checkout: service.NewCheckoutService(nil, nil, nil, bookings, nil, nil)},
		Analytics: handler.NewAnalyticsHandler(service.NewAnalyticsService(nil), nil),
		Health:    handler.Health(nil),
	}
	e := echo.New()
	Register(e, h, Guards{}, m)
	return e
}

func TestRegisterRoutes(t *testing.T) {
	e := newAPI(metrics.New())
	routes := lo.Map(e.Routes(), func(r *echo.Route, _ int) string { return r.Method + " " + r.Path })

	for _, want := range []string{
		"GET /healthz",
		"GET /metrics",
		"GET /v1/staff",
		"POST /v1/staff",
		"PUT /v1/staff/:id/wage",
		"GET /v1/shifts",
		"POST /v1/shifts",
		"PUT /v1/shifts/month",
		"GET /v1/catalog/services",
		"GET /v1/catalog/options",
		"GET /v1/catalog/coupons",
		"GET /v1/catalog/limited-offers",
		"GET /v1/catalog/ticket-plans",
		"POST /v1/customers",
		"GET /v1/customers/search",
		"GET /v1/customers/:id",
		"GET /v1/customers/:id/visits",
		"POST /v1/tickets/purchase",
		"POST /v1/tickets/:id/payments",
		"GET /v1/bookings",
		"GET /v1/bookings/:id",
		"POST /v1/bookings",
		"PUT /v1/bookings/:id",
		"PATCH /v1/bookings/:id/status",
		"DELETE /v1/bookings/:id",
		"POST /v1/bookings/resolve-end-time",
		"GET /v1/availability",
		"POST /v1/bookings/:id/ledger",
		"POST /v1/payments",
		"DELETE /v1/payments/:id",
		"GET /v1/analytics/summary",
		"GET /v1/analytics/cancellations",
	} {
		assert.Contains(t, routes, want)
	}
}

func TestRoutesServe(t *testing.T) {
	e := newAPI(nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "no registry, no endpoint")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analytics/summary?from=bad&to=2025-03-01", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/shifts?year=2025&month=13", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "shift month view is routed to the staff handler")
}
