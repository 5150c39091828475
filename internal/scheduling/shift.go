package scheduling

import "github.com/iliyamo/salon-booking/internal/model"

// DefaultHourlyWage applies when a staff member has no wage on record.
const DefaultHourlyWage = 1500

// DayShifts indexes the shift windows of one date by staff id.
type DayShifts map[string]model.ShiftWindow

// NewDayShifts indexes shifts by staff id.  Later entries win, which
// cannot happen for rows coming from the (staff, date) unique key.
func NewDayShifts(shifts []model.ShiftWindow) DayShifts {
	out := make(DayShifts, len(shifts))
	for _, s := range shifts {
		out[s.StaffID] = s
	}
	return out
}

// For returns the staff member's window, or nil on a day off.
func (d DayShifts) For(staffID string) *model.ShiftWindow {
	s, ok := d[staffID]
	if !ok {
		return nil
	}
	return &s
}

// IsSlotInShiftTime reports whether staff is working at t.  Managers are
// always bookable.  Without a shift the staff member is off all day.
func IsSlotInShiftTime(staff model.Staff, shift *model.ShiftWindow, t model.Clock) bool {
	if staff.IsManager() {
		return true
	}
	if shift == nil {
		return false
	}
	return shift.Start <= t && t < shift.End
}

// RangeInShift reports whether the whole of [start, end) lies inside the
// shift window.
func RangeInShift(staff model.Staff, shift *model.ShiftWindow, start, end model.Clock) bool {
	if staff.IsManager() {
		return true
	}
	if shift == nil {
		return false
	}
	return shift.Start <= start && end <= shift.End
}

// CheckShift returns ErrOutOfShift when [start, end) is not covered.
func CheckShift(staff model.Staff, shift *model.ShiftWindow, start, end model.Clock) error {
	if RangeInShift(staff, shift, start, end) {
		return nil
	}
	return ErrOutOfShift
}

// DailyWage is floor((end - start - break) / 60 * hourlyWage).  A zero
// hourly wage falls back to DefaultHourlyWage and a non-positive working
// time earns nothing.
func DailyWage(start, end model.Clock, breakMinutes, hourlyWage int) int {
	if hourlyWage <= 0 {
		hourlyWage = DefaultHourlyWage
	}
	worked := end.Minutes() - start.Minutes() - breakMinutes
	if worked <= 0 {
		return 0
	}
	return worked * hourlyWage / 60
}
