package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
)

// RegisterBookings registers the calendar endpoints.  Every write is
// rate limited.
func RegisterBookings(v1 *echo.Group, h *handler.BookingHandler, limit echo.MiddlewareFunc) {
	g := v1.Group("/bookings")
	g.GET("", h.List)
	g.POST("", h.Create, limit)
	g.POST("/resolve-end-time", h.ResolveEndTime)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update, limit)
	g.PATCH("/:id/status", h.SetStatus, limit)
	g.DELETE("/:id", h.Cancel, limit)
	g.GET("/:id/history", h.History)
	g.POST("/:id/ledger", h.RecordLedger, limit)

	v1.GET("/availability", h.Availability)
	v1.GET("/availability/check", h.CheckSlot)
}

// RegisterPayments registers the register and the reports.
func RegisterPayments(v1 *echo.Group, p *handler.PaymentHandler, a *handler.AnalyticsHandler, limit echo.MiddlewareFunc) {
	v1.GET("/payments", p.List)
	v1.POST("/payments", p.Create, limit)
	v1.DELETE("/payments/:id", p.Cancel, limit)

	v1.GET("/analytics/summary", a.Summary)
	v1.GET("/analytics/cancellations", a.Cancellations)
}
