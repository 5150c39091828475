package model

import "time"

// Customer represents a row of the `customers` table.  PhoneNumber is
// stored in E.164 form so lookups by phone are exact.
type Customer struct {
	ID             string    `json:"customer_id"`      // customers.customer_id
	LastName       string    `json:"last_name"`        // customers.last_name
	FirstName      string    `json:"first_name"`       // customers.first_name
	LastNameKana   string    `json:"last_name_kana"`   // customers.last_name_kana
	FirstNameKana  string    `json:"first_name_kana"`  // customers.first_name_kana
	PhoneNumber    string    `json:"phone_number"`     // customers.phone_number
	Email          string    `json:"email"`            // customers.email
	BaseVisitCount int       `json:"base_visit_count"` // customers.base_visit_count
	Notes          string    `json:"notes"`            // customers.notes
	CreatedAt      time.Time `json:"created_at"`       // customers.created_at
}

// FullName joins last and first name the way receipts print it.
func (c Customer) FullName() string {
	switch {
	case c.LastName == "":
		return c.FirstName
	case c.FirstName == "":
		return c.LastName
	}
	return c.LastName + " " + c.FirstName
}

// CustomerTicket is a purchased ticket (session pass) owned by a
// customer.  Each redemption consumes one session.
//
// Fields:
//  ID                - uuid primary key.
//  CustomerID        - owner.
//  PlanID            - originating plan; the plan names the service.
//  ServiceID         - service redeemed by the plan (joined).
//  SessionsRemaining - sessions still available.
//  PurchaseDate      - date of purchase.
//  ExpiryDate        - last date the ticket can be redeemed.
//  PurchasePrice     - full price of the plan at purchase time.
type CustomerTicket struct {
	ID                string `json:"customer_ticket_id"` // customer_tickets.customer_ticket_id
	CustomerID        string `json:"customer_id"`        // customer_tickets.customer_id
	PlanID            string `json:"plan_id"`            // customer_tickets.plan_id
	ServiceID         string `json:"service_id"`         // ticket_plans.service_id
	PlanName          string `json:"plan_name"`          // ticket_plans.name
	SessionsRemaining int    `json:"sessions_remaining"` // customer_tickets.sessions_remaining
	PurchaseDate      Date   `json:"purchase_date"`      // customer_tickets.purchase_date
	ExpiryDate        Date   `json:"expiry_date"`        // customer_tickets.expiry_date
	PurchasePrice     int    `json:"purchase_price"`     // customer_tickets.purchase_price
	PaidAmount        int    `json:"paid_amount"`        // SUM(ticket_payments.amount_paid)
}

// Usable reports whether the ticket can be redeemed on the given date.
func (t CustomerTicket) Usable(on Date) bool {
	if t.SessionsRemaining <= 0 {
		return false
	}
	return t.ExpiryDate == "" || string(on) <= string(t.ExpiryDate)
}

// RemainingBalance is the unpaid part of the purchase price.
func (t CustomerTicket) RemainingBalance() int { return t.PurchasePrice - t.PaidAmount }

// TicketPayment is one instalment paid against a ticket.
type TicketPayment struct {
	ID               int64     `json:"id"`
	CustomerTicketID string    `json:"customer_ticket_id"`
	PaymentDate      time.Time `json:"payment_date"`
	AmountPaid       int       `json:"amount_paid"`
	PaymentMethod    string    `json:"payment_method"`
	Notes            string    `json:"notes"`
}
