package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/metrics"
)

// Handlers bundles every handler the API exposes.
type Handlers struct {
	Bookings  *handler.BookingHandler
	Catalog   *handler.CatalogHandler
	Customers *handler.CustomerHandler
	Staff     *handler.StaffHandler
	Payments  *handler.PaymentHandler
	Analytics *handler.AnalyticsHandler
	Health    echo.HandlerFunc
}

// Guards are the middleware applied to route groups.  Writes pass
// through the rate limiter; catalog reads through the response cache.
type Guards struct {
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// RegisterRoutes registers the probes: /healthz for load balancers and
// /metrics for Prometheus.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc, m *metrics.Metrics) {
	e.GET("/healthz", health)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
}

// Register wires the whole API under /v1.
func Register(e *echo.Echo, h Handlers, g Guards, m *metrics.Metrics) {
	if g.RateLimit == nil {
		g.RateLimit = noop
	}
	if g.Cache == nil {
		g.Cache = noop
	}
	RegisterRoutes(e, h.Health, m)
	v1 := e.Group("/v1")
	RegisterCatalog(v1, h.Catalog, g.Cache)
	RegisterStaff(v1, h.Staff, g.RateLimit)
	RegisterCustomers(v1, h.Customers, g.RateLimit)
	RegisterBookings(v1, h.Bookings, g.RateLimit)
	RegisterPayments(v1, h.Payments, h.Analytics, g.RateLimit)
}

func noop(next echo.HandlerFunc) echo.HandlerFunc { return next }
