package scheduling

import (
	"strings"

	"github.com/samber/lo"
)

// MenuKind tags which variant a MenuSelection holds.
type MenuKind int

const (
	MenuNone MenuKind = iota
	MenuService
	MenuTickets
	MenuCoupon
	MenuLimitedOffers
)

func (k MenuKind) String() string {
	switch k {
	case MenuService:
		return "service"
	case MenuTickets:
		return "tickets"
	case MenuCoupon:
		return "coupon"
	case MenuLimitedOffers:
		return "limited_offers"
	}
	return "none"
}

// MenuSelection is exactly one of Service(id), Tickets(ids), Coupon(id),
// LimitedOffers(ids) or None.  The fields are unexported so a value can
// only be built through the constructors below.
type MenuSelection struct {
	kind MenuKind
	ids  []string
}

func NoMenu() MenuSelection { return MenuSelection{} }

func ServiceMenu(id string) MenuSelection {
	return MenuSelection{kind: MenuService, ids: []string{id}}
}

func CouponMenu(id string) MenuSelection {
	return MenuSelection{kind: MenuCoupon, ids: []string{id}}
}

// TicketsMenu selects one or more customer tickets.  Duplicates are
// dropped; an empty list is the None selection.
func TicketsMenu(ids ...string) MenuSelection {
	ids = cleanIDs(ids)
	if len(ids) == 0 {
		return NoMenu()
	}
	return MenuSelection{kind: MenuTickets, ids: ids}
}

// LimitedOffersMenu selects one or more limited offers.
func LimitedOffersMenu(ids ...string) MenuSelection {
	ids = cleanIDs(ids)
	if len(ids) == 0 {
		return NoMenu()
	}
	return MenuSelection{kind: MenuLimitedOffers, ids: ids}
}

func (m MenuSelection) Kind() MenuKind { return m.kind }

// IDs returns a copy of the selected ids.
func (m MenuSelection) IDs() []string { return append([]string(nil), m.ids...) }

// ID returns the single id of a Service or Coupon selection.
func (m MenuSelection) ID() string {
	if len(m.ids) == 0 {
		return ""
	}
	return m.ids[0]
}

func (m MenuSelection) IsNone() bool { return m.kind == MenuNone }

// MenuFromFields builds a selection from the flat request fields a form
// submits.  More than one populated field is rejected.
func MenuFromFields(serviceID, couponID string, ticketIDs, offerIDs []string) (MenuSelection, error) {
	serviceID = strings.TrimSpace(serviceID)
	couponID = strings.TrimSpace(couponID)
	ticketIDs = cleanIDs(ticketIDs)
	offerIDs = cleanIDs(offerIDs)

	var picked []MenuSelection
	if serviceID != "" {
		picked = append(picked, ServiceMenu(serviceID))
	}
	if couponID != "" {
		picked = append(picked, CouponMenu(couponID))
	}
	if len(ticketIDs) > 0 {
		picked = append(picked, TicketsMenu(ticketIDs...))
	}
	if len(offerIDs) > 0 {
		picked = append(picked, LimitedOffersMenu(offerIDs...))
	}
	switch len(picked) {
	case 0:
		return NoMenu(), nil
	case 1:
		return picked[0], nil
	}
	kinds := lo.Map(picked, func(m MenuSelection, _ int) string { return m.kind.String() })
	return NoMenu(), invalid("menu must be exactly one of service, tickets, coupon or limited offers (got %s)", strings.Join(kinds, ", "))
}

func cleanIDs(ids []string) []string {
	out := lo.Filter(lo.Map(ids, func(s string, _ int) string { return strings.TrimSpace(s) }),
		func(s string, _ int) bool { return s != "" })
	return lo.Uniq(out)
}
