package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/service"
)

type AnalyticsHandler struct {
	Analytics *service.AnalyticsService
	Log       *slog.Logger
}

func NewAnalyticsHandler(a *service.AnalyticsService, log *slog.Logger) *AnalyticsHandler {
	if a == nil {
		panic("nil service passed to NewAnalyticsHandler")
	}
	return &AnalyticsHandler{Analytics: a, Log: log}
}

func dateRange(c echo.Context) (model.Date, model.Date) {
	return model.Date(c.QueryParam("from")), model.Date(c.QueryParam("to"))
}

// Summary handles GET /v1/analytics/summary?from=&to=.
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	from, to := dateRange(c)
	s, err := h.Analytics.Summary(c.Request().Context(), from, to)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Cancellations handles GET /v1/analytics/cancellations?from=&to=.
func (h *AnalyticsHandler) Cancellations(c echo.Context) error {
	from, to := dateRange(c)
	s, err := h.Analytics.Cancellations(c.Request().Context(), from, to)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}
