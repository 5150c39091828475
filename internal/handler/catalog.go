package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/model"
)

// Catalog lists the menu items; repository.CatalogRepo implements it.
type Catalog interface {
	ListServices(ctx context.Context) ([]model.Service, error)
	ListOptions(ctx context.Context) ([]model.Option, error)
	ListCoupons(ctx context.Context) ([]model.Coupon, error)
	ListLimitedOffers(ctx context.Context) ([]model.LimitedOffer, error)
	ListTicketPlans(ctx context.Context) ([]model.TicketPlan, error)
}

// CatalogHandler serves the read-only catalog.  Responses sit behind
// the Redis response cache.
type CatalogHandler struct {
	Catalog Catalog
	Log     *slog.Logger
}

func NewCatalogHandler(catalog Catalog, log *slog.Logger) *CatalogHandler {
	if catalog == nil {
		panic("nil catalog passed to NewCatalogHandler")
	}
	return &CatalogHandler{Catalog: catalog, Log: log}
}

// list writes a catalog list, turning a nil slice into [].
func list[T any](c echo.Context, log *slog.Logger, load func(context.Context) ([]T, error)) error {
	out, err := load(c.Request().Context())
	if err != nil {
		return fail(c, log, err)
	}
	if out == nil {
		out = []T{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) Services(c echo.Context) error {
	return list(c, h.Log, h.Catalog.ListServices)
}

func (h *CatalogHandler) Options(c echo.Context) error {
	return list(c, h.Log, h.Catalog.ListOptions)
}

func (h *CatalogHandler) Coupons(c echo.Context) error {
	return list(c, h.Log, h.Catalog.ListCoupons)
}

func (h *CatalogHandler) LimitedOffers(c echo.Context) error {
	return list(c, h.Log, h.Catalog.ListLimitedOffers)
}

// planView adds the derived prices the purchase screen shows.
type planView struct {
	model.TicketPlan
	PricePerSession int `json:"price_per_session"`
	DiscountRate    int `json:"discount_rate"`
}

// TicketPlans handles GET /v1/catalog/ticket-plans.
func (h *CatalogHandler) TicketPlans(c echo.Context) error {
	return list(c, h.Log, func(ctx context.Context) ([]planView, error) {
		plans, err := h.Catalog.ListTicketPlans(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]planView, len(plans))
		for i, p := range plans {
			out[i] = planView{TicketPlan: p, PricePerSession: p.PricePerSession(), DiscountRate: p.DiscountRate()}
		}
		return out, nil
	})
}
