package model

import "time"

// PaymentType classifies what a payment settled.
type PaymentType string

const (
	PaymentNormal       PaymentType = "normal"
	PaymentTicket       PaymentType = "ticket"
	PaymentCoupon       PaymentType = "coupon"
	PaymentLimitedOffer PaymentType = "limited_offer"
)

// Payment represents a row of the `payments` table.  Amounts are in yen.
// TotalAmount = ServiceSubtotal + OptionsTotal - DiscountAmount.
type Payment struct {
	ID                string       `json:"payment_id"`          // payments.payment_id
	CustomerID        string       `json:"customer_id"`         // payments.customer_id
	BookingID         *string      `json:"booking_id"`          // payments.booking_id (nullable)
	StaffID           string       `json:"staff_id"`            // payments.staff_id
	ServiceID         *string      `json:"service_id"`          // payments.service_id (nullable)
	ServiceName       string       `json:"service_name"`        // payments.service_name
	ServicePrice      int          `json:"service_price"`       // payments.service_price
	ServiceDuration   int          `json:"service_duration"`    // payments.service_duration
	PaymentType       PaymentType  `json:"payment_type"`        // payments.payment_type
	TicketID          *string      `json:"ticket_id"`           // payments.ticket_id (nullable)
	TicketSessionUsed bool         `json:"ticket_session_used"` // payments.ticket_session_used
	CouponID          *string      `json:"coupon_id"`           // payments.coupon_id (nullable)
	LimitedOfferID    *string      `json:"limited_offer_id"`    // payments.limited_offer_id (nullable)
	ServiceSubtotal   int          `json:"service_subtotal"`    // payments.service_subtotal
	OptionsTotal      int          `json:"options_total"`       // payments.options_total
	DiscountAmount    int          `json:"discount_amount"`     // payments.discount_amount
	TotalAmount       int          `json:"total_amount"`        // payments.total_amount
	PaymentMethod     string       `json:"payment_method"`      // payments.payment_method
	CashAmount        int          `json:"cash_amount"`         // payments.cash_amount
	CardAmount        int          `json:"card_amount"`         // payments.card_amount
	Notes             string       `json:"notes"`               // payments.notes
	IsCancelled       bool         `json:"is_cancelled"`        // payments.is_cancelled
	CancelledReason   string       `json:"cancelled_reason"`    // payments.cancelled_reason
	PaymentDate       time.Time    `json:"payment_date"`        // payments.payment_date

	Options []PaymentOption `json:"options"` // payment_options
}

// PaymentOption is an option line on a payment.  Free options are kept
// for analytics with a zero charge.
type PaymentOption struct {
	OptionID        string `json:"option_id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	Price           int    `json:"price"`
	DurationMinutes int    `json:"duration_minutes"`
	Quantity        int    `json:"quantity"`
	IsFree          bool   `json:"is_free"`
}

// Charge is what the customer pays for this line.
func (o PaymentOption) Charge() int {
	if o.IsFree {
		return 0
	}
	q := o.Quantity
	if q < 1 {
		q = 1
	}
	return o.Price * q
}
