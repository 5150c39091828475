package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/scheduling"
	"github.com/iliyamo/salon-booking/internal/service"
)

// statusOf maps a service error to an HTTP status.  inBody is true when
// the request created something from ids in its body; an id that does
// not resolve is then a semantic error rather than a missing resource.
func statusOf(err error, inBody bool) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, scheduling.ErrUnknownReference):
		if inBody {
			return http.StatusUnprocessableEntity
		}
		return http.StatusNotFound
	case errors.Is(err, scheduling.ErrInvalidSelection),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidPhone):
		return http.StatusBadRequest
	case errors.Is(err, scheduling.ErrSlotConflict),
		errors.Is(err, scheduling.ErrOutOfShift),
		errors.Is(err, scheduling.ErrInvalidTransition),
		errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrAlreadyCancelled),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, repository.ErrStaffNotFound),
		errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrCustomerNotFound),
		errors.Is(err, repository.ErrTicketNotFound),
		errors.Is(err, repository.ErrPlanNotFound),
		errors.Is(err, repository.ErrPaymentNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// errorBody is the JSON error envelope.  A slot conflict also names the
// booking in the way.
func errorBody(err error, status int) echo.Map {
	if status == http.StatusInternalServerError {
		return echo.Map{"error": "internal error"}
	}
	body := echo.Map{"error": err.Error()}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		body["error"] = he.Message
	}
	var ce *scheduling.ConflictError
	if errors.As(err, &ce) {
		body["conflict"] = echo.Map{
			"dimension":  ce.Dimension,
			"booking_id": ce.BookingID,
			"start_time": ce.Start,
			"end_time":   ce.End,
		}
	}
	return body
}

func fail(c echo.Context, log *slog.Logger, err error) error {
	return respond(c, log, err, false)
}

// failBody is fail for requests that write a resource from ids in
// their body, such as creating or moving a booking.
func failBody(c echo.Context, log *slog.Logger, err error) error {
	return respond(c, log, err, true)
}

func respond(c echo.Context, log *slog.Logger, err error, inBody bool) error {
	status := statusOf(err, inBody)
	if status == http.StatusInternalServerError && log != nil {
		log.Error("request failed", "method", c.Request().Method, "route", c.Path(), "err", err)
	}
	return c.JSON(status, errorBody(err, status))
}

func badRequest(msg string) error { return echo.NewHTTPError(http.StatusBadRequest, msg) }
