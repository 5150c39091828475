package scheduling

import (
	"github.com/iliyamo/salon-booking/internal/model"
)

// Overlaps reports whether [a0, a1) and [b0, b1) intersect.
func Overlaps(a0, a1, b0, b1 model.Clock) bool {
	return a0 < b1 && b0 < a1
}

// IsSlotAvailable is the grid-cell test: staff must be on shift at t and
// none of the staff member's occupying bookings may contain t.  Bookings
// of other staff in the slice are ignored.
func IsSlotAvailable(staff model.Staff, shift *model.ShiftWindow, bookings []model.Booking, t model.Clock) bool {
	if !IsSlotInShiftTime(staff, shift, t) {
		return false
	}
	for _, b := range bookings {
		if b.StaffID != staff.ID || !b.Status.Occupies() {
			continue
		}
		if b.Start <= t && t < b.End {
			return false
		}
	}
	return true
}

// Candidate is a booking placement under validation.  ID is set when an
// existing booking is being moved so it does not collide with itself.
type Candidate struct {
	ID      string
	StaffID string
	BedID   *int
	Date    model.Date
	Start   model.Clock
	End     model.Clock
}

// ValidateRange rejects empty, inverted or cross-midnight ranges.
func ValidateRange(start, end model.Clock) error {
	switch {
	case start < 0:
		return invalid("start time %s is negative", start)
	case end <= start:
		return invalid("end time %s must be after start time %s", end, start)
	case end > model.Midnight:
		return invalid("range %s-%s crosses midnight", start, end)
	}
	return nil
}

// CheckConflicts compares the candidate with the bookings of its staff
// and of its bed on the same date.  The two slices may come from
// separate locked reads and may share rows.  The first overlap found is
// returned as a *ConflictError, staff before bed.
func CheckConflicts(c Candidate, staffDay, bedDay []model.Booking) error {
	for _, b := range staffDay {
		if blocks(c, b) && b.StaffID == c.StaffID {
			return &ConflictError{Dimension: DimensionStaff, BookingID: b.ID, Start: b.Start, End: b.End}
		}
	}
	if c.BedID == nil {
		return nil
	}
	for _, b := range bedDay {
		if blocks(c, b) && b.BedID != nil && *b.BedID == *c.BedID {
			return &ConflictError{Dimension: DimensionBed, BookingID: b.ID, Start: b.Start, End: b.End}
		}
	}
	return nil
}

func blocks(c Candidate, b model.Booking) bool {
	if b.ID == c.ID && c.ID != "" {
		return false
	}
	if b.Date != c.Date || !b.Status.Occupies() {
		return false
	}
	return Overlaps(c.Start, c.End, b.Start, b.End)
}

// Slots lists grid cell start times from open (inclusive) to closing
// (exclusive) at the given step in minutes.
func Slots(open, closing model.Clock, step int) []model.Clock {
	if step <= 0 || closing <= open {
		return nil
	}
	out := make([]model.Clock, 0, (closing-open).Minutes()/step+1)
	for t := open; t < closing; t = t.Add(step) {
		out = append(out, t)
	}
	return out
}

// Cell is one grid cell of the availability view.
type Cell struct {
	Time      model.Clock `json:"time"`
	InShift   bool        `json:"in_shift"`
	Available bool        `json:"available"`
}

// StaffRow evaluates every slot for one staff member.
func StaffRow(staff model.Staff, shift *model.ShiftWindow, bookings []model.Booking, slots []model.Clock) []Cell {
	row := make([]Cell, 0, len(slots))
	for _, t := range slots {
		row = append(row, Cell{
			Time:      t,
			InShift:   IsSlotInShiftTime(staff, shift, t),
			Available: IsSlotAvailable(staff, shift, bookings, t),
		})
	}
	return row
}

// BedRow evaluates every slot for one bed.  Beds have no shifts, so a
// cell is in shift whenever the salon is open.
func BedRow(bedID int, bookings []model.Booking, slots []model.Clock) []Cell {
	row := make([]Cell, 0, len(slots))
	for _, t := range slots {
		free := true
		for _, b := range bookings {
			if b.BedID == nil || *b.BedID != bedID || !b.Status.Occupies() {
				continue
			}
			if b.Start <= t && t < b.End {
				free = false
				break
			}
		}
		row = append(row, Cell{Time: t, InShift: true, Available: free})
	}
	return row
}
