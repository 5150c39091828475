package model

import "time"

// StaffRole classifies a staff member.  Managers are always bookable
// regardless of shift windows.
type StaffRole string

const (
	RoleTherapist StaffRole = "therapist"
	RoleManager   StaffRole = "manager"
	RoleAssistant StaffRole = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r StaffRole) Valid() bool {
	switch r {
	case RoleTherapist, RoleManager, RoleAssistant:
		return true
	}
	return false
}

// Staff represents a row of the `staff` table.
//
// Fields:
//  ID                 - uuid primary key.
//  Name               - display name, unique.
//  Color              - calendar color tag (e.g. "#f9a8d4").
//  Role               - therapist, manager or assistant.
//  HourlyWage         - wage in yen used for shift daily wage.
//  TransportAllowance - per-shift transport allowance in yen.
//  IsActive           - inactive staff are hidden from the calendar.
type Staff struct {
	ID                 string    `json:"staff_id"`            // staff.staff_id
	Name               string    `json:"name"`                // staff.name
	Color              string    `json:"color"`               // staff.color
	Role               StaffRole `json:"role"`                // staff.role
	HourlyWage         int       `json:"hourly_wage"`         // staff.hourly_wage
	TransportAllowance int       `json:"transport_allowance"` // staff.transport_allowance
	IsActive           bool      `json:"is_active"`           // staff.is_active
	CreatedAt          time.Time `json:"created_at"`          // staff.created_at
}

// IsManager reports whether the shift-window rule is waived.
func (s Staff) IsManager() bool { return s.Role == RoleManager }

// WageChange is one row of `staff_wage_history`.
type WageChange struct {
	ID            string    `json:"id"`
	StaffID       string    `json:"staff_id"`
	HourlyWage    int       `json:"hourly_wage"`
	EffectiveFrom Date      `json:"effective_from"`
	CreatedAt     time.Time `json:"created_at"`
}
