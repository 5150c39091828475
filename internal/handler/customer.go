package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/service"
)

// TicketPayments lists the instalments of a ticket.
type TicketPayments interface {
	Payments(ctx context.Context, ticketID string) ([]model.TicketPayment, error)
}

// CustomerHandler is the customer CRM together with ticket sales.
type CustomerHandler struct {
	Customers *service.CustomerService
	Tickets   *service.TicketService
	Payments  TicketPayments
	Log       *slog.Logger
}

func NewCustomerHandler(customers *service.CustomerService, tickets *service.TicketService, payments TicketPayments, log *slog.Logger) *CustomerHandler {
	if customers == nil || tickets == nil || payments == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{Customers: customers, Tickets: tickets, Payments: payments, Log: log}
}

func limitParam(c echo.Context) int {
	n, _ := strconv.Atoi(c.QueryParam("limit"))
	return n
}

// Create handles POST /v1/customers.
func (h *CustomerHandler) Create(c echo.Context) error {
	var in service.CustomerInput
	if err := c.Bind(&in); err != nil {
		return fail(c, h.Log, badRequest("invalid request body"))
	}
	cu, err := h.Customers.Create(c.Request().Context(), in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, cu)
}

// Search handles GET /v1/customers/search?q=.  q may be a phone number
// in any common format or part of a name.
func (h *CustomerHandler) Search(c echo.Context) error {
	out, err := h.Customers.Search(c.Request().Context(), c.QueryParam("q"), limitParam(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	if out == nil {
		out = []model.Customer{}
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/customers/:id.
func (h *CustomerHandler) Get(c echo.Context) error {
	cu, err := h.Customers.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, cu)
}

// Visits handles GET /v1/customers/:id/visits.
func (h *CustomerHandler) Visits(c echo.Context) error {
	out, err := h.Customers.Visits(c.Request().Context(), c.Param("id"), limitParam(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"visits": out, "count": len(out)})
}

// PurchaseTicket handles POST /v1/tickets/purchase.
func (h *CustomerHandler) PurchaseTicket(c echo.Context) error {
	var req service.PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Log, badRequest("invalid request body"))
	}
	rc, err := h.Tickets.Purchase(c.Request().Context(), req)
	if err != nil {
		return failBody(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, rc)
}

// AddTicketPayment handles POST /v1/tickets/:id/payments.
func (h *CustomerHandler) AddTicketPayment(c echo.Context) error {
	var req service.InstalmentRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Log, badRequest("invalid request body"))
	}
	rc, err := h.Tickets.AddInstalment(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, rc)
}

// TicketPaymentList handles GET /v1/tickets/:id/payments.
func (h *CustomerHandler) TicketPaymentList(c echo.Context) error {
	out, err := h.Payments.Payments(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	if out == nil {
		out = []model.TicketPayment{}
	}
	return c.JSON(http.StatusOK, out)
}
