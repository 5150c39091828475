package scheduling

import "github.com/iliyamo/salon-booking/internal/model"

// InitialStatus is the status a new entry of the given type starts in.
func InitialStatus(t model.BookingType) model.BookingStatus {
	if t == model.TypeSchedule {
		return model.StatusBlocked
	}
	return model.StatusConfirmed
}

// CanTransition reports whether a booking of type t may move from one
// status to another.  A confirmed booking ends as completed, cancelled
// or no-show.  A schedule block only ever leaves blocked by being
// removed, which is recorded as cancelled.
func CanTransition(t model.BookingType, from, to model.BookingStatus) bool {
	if t == model.TypeSchedule {
		return from == model.StatusBlocked && to == model.StatusCancelled
	}
	if from != model.StatusConfirmed {
		return false
	}
	switch to {
	case model.StatusCompleted, model.StatusCancelled, model.StatusNoShow:
		return true
	}
	return false
}

// CheckTransition is CanTransition as an error.
func CheckTransition(t model.BookingType, from, to model.BookingStatus) error {
	if CanTransition(t, from, to) {
		return nil
	}
	return ErrInvalidTransition
}
