package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
)

// RegisterCatalog registers the read-only menu lists.  They change
// rarely, so every route sits behind the response cache.
func RegisterCatalog(v1 *echo.Group, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	g := v1.Group("/catalog", cache)
	g.GET("/services", h.Services)
	g.GET("/options", h.Options)
	g.GET("/coupons", h.Coupons)
	g.GET("/limited-offers", h.LimitedOffers)
	g.GET("/ticket-plans", h.TicketPlans)
}
