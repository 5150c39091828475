package model

// Service is a bookable menu item.  DurationMinutes drives the end time
// of a booking that selects it.
//
// Fields:
//  ID                - uuid primary key.
//  Name, Category    - display fields.
//  DurationMinutes   - length of the treatment.
//  Price             - regular price in yen.
//  FirstTimePrice    - optional price for a customer's first visit.
//  FreeOptionChoices - number of options included at no charge.
type Service struct {
	ID                string `json:"service_id"`          // services.service_id
	Name              string `json:"name"`                // services.name
	Category          string `json:"category"`            // services.category
	DurationMinutes   int    `json:"duration_minutes"`    // services.duration_minutes
	Price             int    `json:"price"`               // services.price
	FirstTimePrice    *int   `json:"first_time_price"`    // services.first_time_price (nullable)
	FreeOptionChoices int    `json:"free_option_choices"` // services.free_option_choices
	IsActive          bool   `json:"is_active"`           // services.is_active
}

// Option is an add-on layered on top of any menu selection.
type Option struct {
	ID              string `json:"option_id"`        // options.option_id
	Name            string `json:"name"`             // options.name
	Category        string `json:"category"`         // options.category
	DurationMinutes int    `json:"duration_minutes"` // options.duration_minutes
	Price           int    `json:"price"`            // options.price
	IsActive        bool   `json:"is_active"`        // options.is_active
}

// Coupon bundles a fixed duration and price.  TotalDurationMinutes may be
// unset in which case the default menu duration applies.
type Coupon struct {
	ID                   string `json:"coupon_id"`              // coupons.coupon_id
	Name                 string `json:"name"`                   // coupons.name
	TotalDurationMinutes *int   `json:"total_duration_minutes"` // coupons.total_duration_minutes (nullable)
	TotalPrice           int    `json:"total_price"`            // coupons.total_price
	FreeOptionCount      int    `json:"free_option_count"`      // coupons.free_option_count
	IsActive             bool   `json:"is_active"`              // coupons.is_active
}

// LimitedOffer is a time-limited promotion.  Offers flagged IsTicketType
// may be combined in one booking; any other offer must be booked alone.
type LimitedOffer struct {
	ID              string `json:"offer_id"`         // limited_offers.offer_id
	Name            string `json:"name"`             // limited_offers.name
	DurationMinutes *int   `json:"duration_minutes"` // limited_offers.duration_minutes (nullable)
	SpecialPrice    int    `json:"special_price"`    // limited_offers.special_price
	TotalSessions   int    `json:"total_sessions"`   // limited_offers.total_sessions
	IsTicketType    bool   `json:"is_ticket_type"`   // limited_offers.is_ticket_type
	IsActive        bool   `json:"is_active"`        // limited_offers.is_active
}

// TicketPlan describes a purchasable bundle of sessions for one service.
type TicketPlan struct {
	ID               string `json:"plan_id"`            // ticket_plans.plan_id
	ServiceID        string `json:"service_id"`         // ticket_plans.service_id
	Name             string `json:"name"`               // ticket_plans.name
	TotalSessions    int    `json:"total_sessions"`     // ticket_plans.total_sessions
	Price            int    `json:"price"`              // ticket_plans.price
	ValidityDays     int    `json:"validity_days"`      // ticket_plans.validity_days
	ServiceName      string `json:"service_name"`       // services.name
	ServiceUnitPrice int    `json:"service_unit_price"` // services.price
}

// PricePerSession is the plan price divided evenly, rounded down.
func (p TicketPlan) PricePerSession() int {
	if p.TotalSessions <= 0 {
		return 0
	}
	return p.Price / p.TotalSessions
}

// DiscountRate is the percentage saved against buying each session at
// the service's unit price, rounded to the nearest integer.
func (p TicketPlan) DiscountRate() int {
	full := p.ServiceUnitPrice * p.TotalSessions
	if full <= 0 {
		return 0
	}
	saved := full - p.Price
	// round half away from zero on integers
	if saved >= 0 {
		return (saved*100 + full/2) / full
	}
	return -((-saved*100 + full/2) / full)
}
