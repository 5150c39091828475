// Package queue carries booking lifecycle events over RabbitMQ.  Each
// event type has its own durable queue named after the type.
package queue

import "time"

// Event types double as queue names.
const (
	BookingConfirmed   = "booking.confirmed"
	BookingRescheduled = "booking.rescheduled"
	BookingCancelled   = "booking.cancelled"
	BookingCompleted   = "booking.completed"
)

// Queues lists every queue the consumer listens on.
var Queues = []string{BookingConfirmed, BookingRescheduled, BookingCancelled, BookingCompleted}

// BookingEvent is published after a booking change has been committed.
// It carries enough for downstream consumers to log or notify without
// querying the primary database.
type BookingEvent struct {
	Type             string    `json:"type"`
	BookingID        string    `json:"booking_id"`
	CustomerID       string    `json:"customer_id,omitempty"`
	StaffID          string    `json:"staff_id"`
	BedID            *int      `json:"bed_id,omitempty"`
	Date             string    `json:"date"`
	Start            string    `json:"start_time"`
	End              string    `json:"end_time"`
	Status           string    `json:"status"`
	TicketIDs        []string  `json:"customer_ticket_ids,omitempty"`
	SessionsRestored int       `json:"sessions_restored,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}
