package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
)

// RegisterStaff registers staff management and the shift calendar.
func RegisterStaff(v1 *echo.Group, h *handler.StaffHandler, limit echo.MiddlewareFunc) {
	// ---- Staff ----
	v1.GET("/staff", h.List)
	v1.POST("/staff", h.Create, limit)
	v1.PUT("/staff/:id/wage", h.UpdateWage, limit)
	v1.GET("/staff/:id/wages", h.WageHistory)

	// ---- Shifts ----
	v1.GET("/shifts", h.ListShifts)
	v1.POST("/shifts", h.UpsertShift, limit)
	v1.PUT("/shifts/month", h.ReplaceMonth, limit)
}
