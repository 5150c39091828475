package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/service"
)

// StaffHandler manages staff members and their shift calendar.
type StaffHandler struct {
	Staff  *service.StaffService
	Shifts *service.ShiftService
	Log    *slog.Logger
}

func NewStaffHandler(staff *service.StaffService, shifts *service.ShiftService, log *slog.Logger) *StaffHandler {
	if staff == nil || shifts == nil {
		panic("nil service passed to NewStaffHandler")
	}
	return &StaffHandler{Staff: staff, Shifts: shifts, Log: log}
}

// List handles GET /v1/staff.  ?all=true includes inactive staff.
func (h *StaffHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		out []model.Staff
		err error
	)
	if all, _ := strconv.ParseBool(c.QueryParam("all")); all {
		out, err = h.Staff.All(ctx)
	} else {
		out, err = h.Staff.Active(ctx)
	}
	if err != nil {
		return fail(c, h.Log, err)
	}
	if out == nil {
		out = []model.Staff{}
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/staff.
func (h *StaffHandler) Create(c echo.Context) error {
	var in service.StaffInput
	if err := c.Bind(&in); err != nil {
		return fail(c, h.Log, badRequest("invalid request body"))
	}
	st, err := h.Staff.Create(c.Request().Context(), in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, st)
}

// UpdateWage handles PUT /v1/staff/:id/wage.  effective_from defaults
// to the first day of the current month.
func (h *StaffHandler) UpdateWage(c echo.Context) error {
	var body struct {
		HourlyWage    int        `json:"hourly_wage"`
		EffectiveFrom model.Date `json:"effective_from"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, h.Log, badRequest("invalid request body"))
	}
	if body.EffectiveFrom == "" {
		now := time.Now()
		body.EffectiveFrom = model.DateOf(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))
	}
	st, err := h.Staff.UpdateWage(c.Request().Context(), c.Param("id"), body.HourlyWage, body.EffectiveFrom)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, st)
}

// WageHistory handles GET /v1/staff/:id/wages.
func (h *StaffHandler) WageHistory(c echo.Context) error {
	out, err := h.Staff.WageHistory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	if out == nil {
		out = []model.WageChange{}
	}
	return c.JSON(http.StatusOK, out)
}

// yearMonth reads ?year=&month=, defaulting to the current month.
func yearMonth(c echo.Context) (int, time.Month, error) {
	now := time.Now()
	year, month := now.Year(), now.Month()
	if v := c.QueryParam("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, badRequest("invalid year")
		}
		year = n
	}
	if v := c.QueryParam("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			return 0, 0, badRequest("invalid month")
		}
		month = time.Month(n)
	}
	return year, month, nil
}

// ListShifts handles GET /v1/shifts?year=&month=&staff_id=.
func (h *StaffHandler) ListShifts(c echo.Context) error {
	year, month, err := yearMonth(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out, err := h.Shifts.Month(c.Request().Context(), year, month, c.QueryParam("staff_id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	if out == nil {
		out = []model.ShiftWindow{}
	}
	return c.JSON(http.StatusOK, out)
}

// UpsertShift handles POST /v1/shifts.  A body without times clears
// the day and answers 204.
func (h *StaffHandler) UpsertShift(c echo.Context) error {
	var in service.ShiftInput
	if err := c.Bind(&in); err != nil {
		return fail(c, h.Log, badRequest("invalid request body"))
	}
	sh, err := h.Shifts.Upsert(c.Request().Context(), in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if sh == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, sh)
}

// ReplaceMonth handles PUT /v1/shifts/month.
func (h *StaffHandler) ReplaceMonth(c echo.Context) error {
	var body struct {
		StaffID string               `json:"staff_id"`
		Year    int                  `json:"year"`
		Month   int                  `json:"month"`
		Shifts  []service.ShiftInput `json:"shifts"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, h.Log, badRequest("invalid request body"))
	}
	out, err := h.Shifts.ReplaceMonth(c.Request().Context(), body.StaffID, body.Year, time.Month(body.Month), body.Shifts)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if out == nil {
		out = []model.ShiftWindow{}
	}
	return c.JSON(http.StatusOK, out)
}
