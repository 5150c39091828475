package model

// ShiftWindow is the working interval of one staff member on one date.
// There is at most one window per (staff, date); a missing window means
// the staff member is off that day.
//
// Fields:
//  ID            - uuid primary key.
//  StaffID       - owner of the shift.
//  Date          - calendar date.
//  Start, End    - working hours, End exclusive.
//  BreakMinutes  - unpaid break inside the window.
//  TransportCost - transport allowance paid for the day.
//  HourlyWage    - wage snapshot at the time the shift was written.
//  DailyWage     - floor((End-Start-Break)/60 * HourlyWage).
//  Type          - "work" or another free-form kind.
//  Notes         - free text.
type ShiftWindow struct {
	ID            string `json:"shift_id"`       // shifts.shift_id
	StaffID       string `json:"staff_id"`       // shifts.staff_id
	Date          Date   `json:"date"`           // shifts.date
	Start         Clock  `json:"start_time"`     // shifts.start_time
	End           Clock  `json:"end_time"`       // shifts.end_time
	BreakMinutes  int    `json:"break_minutes"`  // shifts.break_minutes
	TransportCost int    `json:"transport_cost"` // shifts.transport_cost
	HourlyWage    int    `json:"hourly_wage"`    // shifts.hourly_wage
	DailyWage     int    `json:"daily_wage"`     // shifts.daily_wage
	Type          string `json:"type"`           // shifts.type
	Notes         string `json:"notes"`          // shifts.notes
}
