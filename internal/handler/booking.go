package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/scheduling"
	"github.com/iliyamo/salon-booking/internal/service"
)

// BookingHandler serves the calendar: bookings, schedule blocks, the
// availability grid and the visit ledger.
type BookingHandler struct {
	Bookings *service.BookingService
	Ledger   *service.LedgerService
	Log      *slog.Logger
}

// NewBookingHandler panics on a missing service, like every handler
// constructor.
func NewBookingHandler(bookings *service.BookingService, ledger *service.LedgerService, log *slog.Logger) *BookingHandler {
	if bookings == nil || ledger == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Ledger: ledger, Log: log}
}

// menuFields are the flat menu fields of a booking form.  At most one
// of them may be filled.
type menuFields struct {
	ServiceID       string   `json:"service_id"`
	CouponID        string   `json:"coupon_id"`
	TicketIDs       []string `json:"ticket_ids"`
	LimitedOfferIDs []string `json:"limited_offer_ids"`
	OptionIDs       []string `json:"option_ids"`
}

func (m menuFields) menu() (scheduling.MenuSelection, error) {
	return scheduling.MenuFromFields(m.ServiceID, m.CouponID, m.TicketIDs, m.LimitedOfferIDs)
}

type placement struct {
	StaffID string       `json:"staff_id"`
	BedID   *int         `json:"bed_id"`
	Date    model.Date   `json:"date"`
	Start   *model.Clock `json:"start_time"`
	End     *model.Clock `json:"end_time"`
	Notes   string       `json:"notes"`
}

type createBookingBody struct {
	placement
	menuFields
	Type        model.BookingType      `json:"type"`
	CustomerID  string                 `json:"customer_id"`
	NewCustomer *service.CustomerInput `json:"new_customer"`
}

func (b createBookingBody) request() (service.CreateBookingRequest, error) {
	if b.Start == nil {
		return service.CreateBookingRequest{}, badRequest("start_time is required")
	}
	menu, err := b.menu()
	if err != nil {
		return service.CreateBookingRequest{}, err
	}
	return service.CreateBookingRequest{
		Type:        b.Type,
		CustomerID:  strings.TrimSpace(b.CustomerID),
		NewCustomer: b.NewCustomer,
		StaffID:     strings.TrimSpace(b.StaffID),
		BedID:       b.BedID,
		Date:        b.Date,
		Start:       *b.Start,
		End:         b.End,
		Menu:        menu,
		OptionIDs:   b.OptionIDs,
		Notes:       b.Notes,
	}, nil
}

type updateBookingBody struct {
	placement
	menuFields
}

func (b updateBookingBody) request() (service.UpdateBookingRequest, error) {
	if b.Start == nil {
		return service.UpdateBookingRequest{}, badRequest("start_time is required")
	}
	menu, err := b.menu()
	if err != nil {
		return service.UpdateBookingRequest{}, err
	}
	return service.UpdateBookingRequest{
		StaffID:   strings.TrimSpace(b.StaffID),
		BedID:     b.BedID,
		Date:      b.Date,
		Start:     *b.Start,
		End:       b.End,
		Menu:      menu,
		OptionIDs: b.OptionIDs,
		Notes:     b.Notes,
	}, nil
}

// List handles GET /v1/bookings?date=YYYY-MM-DD.
func (h *BookingHandler) List(c echo.Context) error {
	date := model.Date(c.QueryParam("date"))
	if date == "" {
		return fail(c, h.Log, badRequest("date is required"))
	}
	out, err := h.Bookings.ListByDate(c.Request().Context(), date)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if out == nil {
		out = []model.BookingDetail{}
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	b, err := h.Bookings.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, b)
}

// History handles GET /v1/bookings/:id/history.
func (h *BookingHandler) History(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Bookings.Get(ctx, c.Param("id")); err != nil {
		return fail(c, h.Log, err)
	}
	out, err := h.Bookings.History(ctx, c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/bookings for bookings and schedule blocks.
func (h *BookingHandler) Create(c echo.Context) error {
	var body createBookingBody
	if err := c.Bind(&body); err != nil {
		return fail(c, h.Log, badRequest("invalid request body"))
	}
	req, err := body.request()
	if err != nil {
		return failBody(c, h.Log, err)
	}
	b, err := h.Bookings.Create(c.Request().Context(), req)
	if err != nil {
		return failBody(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Update handles PUT /v1/bookings/:id.
func (h *BookingHandler) Update(c echo.Context) error {
	var body updateBookingBody
	if err := c.Bind(&body); err != nil {
		return fail(c, h.Log, badRequest("invalid request body"))
	}
	req, err := body.request()
	if err != nil {
		return fail(c, h.Log, err)
	}
	b, err := h.Bookings.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return failBody(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, b)
}

// SetStatus handles PATCH /v1/bookings/:id/status.
func (h *BookingHandler) SetStatus(c echo.Context) error {
	var body struct {
		Status model.BookingStatus `json:"status"`
		Reason string              `json:"reason"`
	}
	if err := c.Bind(&body); err != nil || body.Status == "" {
		return fail(c, h.Log, badRequest("status is required"))
	}
	b, err := h.Bookings.SetStatus(c.Request().Context(), c.Param("id"), body.Status, body.Reason)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Cancel handles DELETE /v1/bookings/:id.  Ticket sessions go back to
// the customer; repeating the call is harmless.
func (h *BookingHandler) Cancel(c echo.Context) error {
	b, err := h.Bookings.Cancel(c.Request().Context(), c.Param("id"), c.QueryParam("reason"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, b)
}

// ResolveEndTime handles POST /v1/bookings/resolve-end-time, which the
// booking form calls whenever the menu changes.
func (h *BookingHandler) ResolveEndTime(c echo.Context) error {
	var body struct {
		menuFields
		Start       *model.Clock `json:"start_time"`
		PreviousEnd *model.Clock `json:"previous_end_time"`
	}
	if err := c.Bind(&body); err != nil || body.Start == nil {
		return fail(c, h.Log, badRequest("start_time is required"))
	}
	menu, err := body.menu()
	if err != nil {
		return fail(c, h.Log, err)
	}
	prev := *body.Start
	if body.PreviousEnd != nil {
		prev = *body.PreviousEnd
	}
	end, err := h.Bookings.ResolveEndTime(c.Request().Context(), *body.Start, prev, menu, body.OptionIDs)
	if err != nil {
		return failBody(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"end_time": end})
}

// Availability handles GET /v1/availability?date=YYYY-MM-DD.
func (h *BookingHandler) Availability(c echo.Context) error {
	g, err := h.Bookings.Availability(c.Request().Context(), model.Date(c.QueryParam("date")))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, g)
}

// CheckSlot handles GET /v1/availability/check.  A taken slot is still
// a 200 with available=false and the reason.
func (h *BookingHandler) CheckSlot(c echo.Context) error {
	var bedID *int
	if raw := c.QueryParam("bed_id"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fail(c, h.Log, badRequest("invalid bed_id"))
		}
		bedID = &n
	}
	start, err1 := model.ParseClock(c.QueryParam("start_time"))
	end, err2 := model.ParseClock(c.QueryParam("end_time"))
	if err1 != nil || err2 != nil {
		return fail(c, h.Log, badRequest("start_time and end_time must be HH:MM"))
	}
	err := h.Bookings.CheckSlot(c.Request().Context(), c.QueryParam("staff_id"), bedID, model.Date(c.QueryParam("date")), start, end)
	if err == nil {
		return c.JSON(http.StatusOK, echo.Map{"available": true})
	}
	if statusOf(err, false) != http.StatusConflict {
		return fail(c, h.Log, err)
	}
	body := errorBody(err, http.StatusConflict)
	body["available"] = false
	return c.JSON(http.StatusOK, body)
}

// RecordLedger handles POST /v1/bookings/:id/ledger.
func (h *BookingHandler) RecordLedger(c echo.Context) error {
	e, err := h.Ledger.Record(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, e)
}
