// Package scheduling holds the booking rules of the salon: how long an
// appointment lasts, whether a staff member is working at a given time,
// and whether a candidate range collides with existing bookings.  The
// package is free of I/O; callers pass in the staff, shift, catalog and
// booking data they loaded.
package scheduling

import (
	"errors"
	"fmt"

	"github.com/iliyamo/salon-booking/internal/model"
)

var (
	// ErrInvalidSelection means the request is malformed: more than one
	// menu kind, missing staff/date/time, or an unusable ticket.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrSlotConflict means the range overlaps an occupying booking.
	ErrSlotConflict = errors.New("slot conflict")
	// ErrOutOfShift means the range is outside the staff's shift window.
	ErrOutOfShift = errors.New("out of shift")
	// ErrUnknownReference means a catalog id did not resolve.
	ErrUnknownReference = errors.New("unknown reference")
	// ErrInvalidTransition means the status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Dimension names the resource a conflict was found on.
type Dimension string

const (
	DimensionStaff Dimension = "staff"
	DimensionBed   Dimension = "bed"
)

// ConflictError describes the first booking that blocks a candidate.
// errors.Is(err, ErrSlotConflict) holds for every ConflictError.
type ConflictError struct {
	Dimension Dimension
	BookingID string
	Start     model.Clock
	End       model.Clock
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot conflict on %s with booking %s (%s-%s)", e.Dimension, e.BookingID, e.Start, e.End)
}

func (e *ConflictError) Unwrap() error { return ErrSlotConflict }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSelection, fmt.Sprintf(format, args...))
}

func unknown(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownReference, kind, id)
}
