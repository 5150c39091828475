package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/scheduling"
)

var (
	// ErrInvalidInput covers malformed requests outside of booking
	// placement, such as an empty staff name or a negative amount.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidPhone means a phone number could not be parsed.
	ErrInvalidPhone = errors.New("invalid phone number")
	// ErrAlreadyCancelled is returned when a payment is cancelled twice.
	ErrAlreadyCancelled = errors.New("already cancelled")
	// ErrAlreadyPaid is returned by checkout for a booking that already
	// has a live payment.
	ErrAlreadyPaid = errors.New("booking already paid")
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func invalidSelection(format string, args ...any) error {
	return fmt.Errorf("%w: %s", scheduling.ErrInvalidSelection, fmt.Sprintf(format, args...))
}

// unknownStaff turns a missing staff row referenced by a write into an
// unknown reference.
func unknownStaff(err error, id string) error {
	if errors.Is(err, repository.ErrStaffNotFound) {
		return fmt.Errorf("%w: staff %q", scheduling.ErrUnknownReference, id)
	}
	return err
}

// rejectionReason labels a scheduling error for metrics.  Errors that
// are not rule violations return "".
func rejectionReason(err error) string {
	var ce *scheduling.ConflictError
	switch {
	case errors.As(err, &ce):
		return string(ce.Dimension)
	case errors.Is(err, scheduling.ErrOutOfShift):
		return "shift"
	case errors.Is(err, scheduling.ErrInvalidSelection):
		return "invalid"
	case errors.Is(err, scheduling.ErrUnknownReference):
		return "unknown"
	}
	return ""
}
