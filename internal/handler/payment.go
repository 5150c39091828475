package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/service"
)

// DailyPayments lists the payments taken on a day.
type DailyPayments interface {
	ListByDate(ctx context.Context, date model.Date) ([]model.Payment, error)
}

// PaymentHandler is the register: checkout, voids and the day's takings.
type PaymentHandler struct {
	Checkout *service.CheckoutService
	Payments DailyPayments
	Log      *slog.Logger
}

func NewPaymentHandler(checkout *service.CheckoutService, payments DailyPayments, log *slog.Logger) *PaymentHandler {
	if checkout == nil || payments == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{Checkout: checkout, Payments: payments, Log: log}
}

// Create handles POST /v1/payments.
func (h *PaymentHandler) Create(c echo.Context) error {
	var req service.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Log, badRequest("invalid request body"))
	}
	p, err := h.Checkout.Checkout(c.Request().Context(), req)
	if err != nil {
		return failBody(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Cancel handles DELETE /v1/payments/:id?reason=.
func (h *PaymentHandler) Cancel(c echo.Context) error {
	p, err := h.Checkout.CancelPayment(c.Request().Context(), c.Param("id"), c.QueryParam("reason"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, p)
}

// List handles GET /v1/payments?date=.
func (h *PaymentHandler) List(c echo.Context) error {
	date, err := model.ParseDate(c.QueryParam("date"))
	if err != nil {
		return fail(c, h.Log, badRequest("date must be YYYY-MM-DD"))
	}
	out, err := h.Payments.ListByDate(c.Request().Context(), date)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if out == nil {
		out = []model.Payment{}
	}
	return c.JSON(http.StatusOK, out)
}
