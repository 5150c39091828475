package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
)

// RegisterCustomers registers the customer CRM and ticket sales.
// /customers/search is registered before /customers/:id so the static
// segment wins.
func RegisterCustomers(v1 *echo.Group, h *handler.CustomerHandler, limit echo.MiddlewareFunc) {
	v1.POST("/customers", h.Create, limit)
	v1.GET("/customers/search", h.Search)
	v1.GET("/customers/:id", h.Get)
	v1.GET("/customers/:id/visits", h.Visits)

	v1.POST("/tickets/purchase", h.PurchaseTicket, limit)
	v1.POST("/tickets/:id/payments", h.AddTicketPayment, limit)
	v1.GET("/tickets/:id/payments", h.TicketPaymentList)
}
