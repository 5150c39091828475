// Package repository contains the MySQL data access code.  Every
// repository wraps a *sql.DB; methods with a Tx suffix run inside a
// transaction owned by the caller.
//
// The sentinel errors below let higher layers tell failure modes apart
// without inspecting driver errors.
package repository

import "errors"

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, for example a plan that still has tickets.
// Handlers translate it into 409.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when a unique key would be violated.
var ErrDuplicate = errors.New("duplicate")

var (
	ErrStaffNotFound    = errors.New("staff not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrPlanNotFound     = errors.New("ticket plan not found")
	ErrPaymentNotFound  = errors.New("payment not found")
)
