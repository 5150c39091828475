package model

import (
	"encoding/json"
	"time"
)

// BookingType distinguishes customer bookings from staff-internal blocks.
type BookingType string

const (
	TypeBooking  BookingType = "booking"
	TypeSchedule BookingType = "schedule"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusNoShow    BookingStatus = "no_show"
	StatusBlocked   BookingStatus = "blocked"
)

// Occupies reports whether a booking in this status holds its staff and
// bed.  Cancelled and no-show bookings release the slot.
func (s BookingStatus) Occupies() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// Terminal reports whether no further transition is allowed.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Booking represents a row of the `bookings` table together with its
// link tables.  A booking holds one staff member and optionally one bed
// for [Start, End) on Date.
//
// Fields:
//  ID              - uuid primary key.
//  CustomerID      - customer, nil for schedule blocks.
//  StaffID         - staff member held by the booking.
//  BedID           - bed held by the booking, nil when none.
//  Date            - calendar date.
//  Start, End      - time range, End exclusive.
//  Type            - booking or schedule.
//  Status          - lifecycle state.
//  ServiceID       - menu service, if the selection is a service.
//  CouponID        - coupon, if the selection is a coupon.
//  TicketIDs       - redeemed customer tickets (booking_tickets).
//  LimitedOfferIDs - selected limited offers (booking_limited_offers).
//  OptionIDs       - add-on options (booking_options).
//  Notes           - free text.
type Booking struct {
	ID              string        `json:"booking_id"`          // bookings.booking_id
	CustomerID      *string       `json:"customer_id"`         // bookings.customer_id (nullable)
	StaffID         string        `json:"staff_id"`            // bookings.staff_id
	BedID           *int          `json:"bed_id"`              // bookings.bed_id (nullable)
	Date            Date          `json:"date"`                // bookings.date
	Start           Clock         `json:"start_time"`          // bookings.start_time
	End             Clock         `json:"end_time"`            // bookings.end_time
	Type            BookingType   `json:"type"`                // bookings.type
	Status          BookingStatus `json:"status"`              // bookings.status
	ServiceID       *string       `json:"service_id"`          // bookings.service_id (nullable)
	CouponID        *string       `json:"coupon_id"`           // bookings.coupon_id (nullable)
	TicketIDs       []string      `json:"customer_ticket_ids"` // booking_tickets.customer_ticket_id
	LimitedOfferIDs []string      `json:"limited_offer_ids"`   // booking_limited_offers.offer_id
	OptionIDs       []string      `json:"option_ids"`          // booking_options.option_id
	Notes           string        `json:"notes"`               // bookings.notes
	CreatedAt       time.Time     `json:"created_at"`          // bookings.created_at
	UpdatedAt       time.Time     `json:"updated_at"`          // bookings.updated_at
}

// BookingDetail is a booking joined with display names for the calendar.
type BookingDetail struct {
	Booking
	CustomerName string `json:"customer_name"`
	PhoneNumber  string `json:"phone_number"`
	StaffName    string `json:"staff_name"`
	StaffColor   string `json:"staff_color"`
	ServiceName  string `json:"service_name"`
	CouponName   string `json:"coupon_name"`
}

// HistoryChange names the kind of change recorded in booking_history.
type HistoryChange string

const (
	HistoryCreate HistoryChange = "create"
	HistoryUpdate HistoryChange = "update"
	HistoryStatus HistoryChange = "status"
	HistoryCancel HistoryChange = "cancel"
)

// BookingHistory is one audit row.  Details holds a JSON snapshot.
type BookingHistory struct {
	ID         string          `json:"history_id"`
	BookingID  string          `json:"booking_id"`
	ChangeType HistoryChange   `json:"change_type"`
	Details    json.RawMessage `json:"details"`
	CreatedAt  time.Time       `json:"created_at"`
}
