package scheduling

import (
	"github.com/samber/lo"

	"github.com/iliyamo/salon-booking/internal/model"
)

// DefaultMenuMinutes is used for coupons and limited offers that do not
// carry a duration of their own.
const DefaultMenuMinutes = 60

// Catalog answers the lookups the resolver needs.  Snapshot is the usual
// implementation; the booking service fills one from the database.
type Catalog interface {
	Service(id string) (model.Service, bool)
	Option(id string) (model.Option, bool)
	Coupon(id string) (model.Coupon, bool)
	LimitedOffer(id string) (model.LimitedOffer, bool)
	Ticket(id string) (model.CustomerTicket, bool)
}

// Snapshot is a map-backed Catalog.  Nil maps behave as empty.
type Snapshot struct {
	Services      map[string]model.Service
	Options       map[string]model.Option
	Coupons       map[string]model.Coupon
	LimitedOffers map[string]model.LimitedOffer
	Tickets       map[string]model.CustomerTicket
}

func (s *Snapshot) Service(id string) (model.Service, bool) {
	v, ok := s.Services[id]
	return v, ok
}

func (s *Snapshot) Option(id string) (model.Option, bool) {
	v, ok := s.Options[id]
	return v, ok
}

func (s *Snapshot) Coupon(id string) (model.Coupon, bool) {
	v, ok := s.Coupons[id]
	return v, ok
}

func (s *Snapshot) LimitedOffer(id string) (model.LimitedOffer, bool) {
	v, ok := s.LimitedOffers[id]
	return v, ok
}

func (s *Snapshot) Ticket(id string) (model.CustomerTicket, bool) {
	v, ok := s.Tickets[id]
	return v, ok
}

// ResolveEndTime returns start plus the duration of the menu and the
// options.  When nothing contributes any minutes the previous end time
// is returned untouched, so an end time the operator already set is not
// collapsed onto the start.  The result is not clamped at 24:00.
func ResolveEndTime(start, previousEnd model.Clock, menu MenuSelection, optionIDs []string, cat Catalog) (model.Clock, error) {
	total, err := TotalDuration(menu, optionIDs, cat)
	if err != nil {
		return previousEnd, err
	}
	if total == 0 {
		return previousEnd, nil
	}
	return start.Add(total), nil
}

// TotalDuration is BaseDuration plus OptionsDuration.
func TotalDuration(menu MenuSelection, optionIDs []string, cat Catalog) (int, error) {
	base, err := BaseDuration(menu, cat)
	if err != nil {
		return 0, err
	}
	opts, err := OptionsDuration(optionIDs, cat)
	if err != nil {
		return 0, err
	}
	return base + opts, nil
}

// BaseDuration is the length of the menu selection alone.  Several
// tickets or offers redeemed together share one session slot, so the
// longest of them bounds the appointment.
func BaseDuration(menu MenuSelection, cat Catalog) (int, error) {
	switch menu.Kind() {
	case MenuService:
		svc, ok := cat.Service(menu.ID())
		if !ok {
			return 0, unknown("service", menu.ID())
		}
		return svc.DurationMinutes, nil

	case MenuCoupon:
		cp, ok := cat.Coupon(menu.ID())
		if !ok {
			return 0, unknown("coupon", menu.ID())
		}
		return orDefault(cp.TotalDurationMinutes), nil

	case MenuTickets:
		longest := 0
		for _, id := range menu.ids {
			t, ok := cat.Ticket(id)
			if !ok {
				return 0, unknown("ticket", id)
			}
			svc, ok := cat.Service(t.ServiceID)
			if !ok {
				return 0, unknown("service", t.ServiceID)
			}
			longest = max(longest, svc.DurationMinutes)
		}
		return longest, nil

	case MenuLimitedOffers:
		longest := 0
		for _, id := range menu.ids {
			o, ok := cat.LimitedOffer(id)
			if !ok {
				return 0, unknown("limited offer", id)
			}
			if len(menu.ids) > 1 && !o.IsTicketType {
				return 0, invalid("limited offer %q cannot be combined with other offers", id)
			}
			longest = max(longest, orDefault(o.DurationMinutes))
		}
		return longest, nil
	}
	return 0, nil
}

// OptionsDuration sums the durations of the selected options.  The
// selection is a set: an id given twice counts once.
func OptionsDuration(optionIDs []string, cat Catalog) (int, error) {
	total := 0
	for _, id := range lo.Uniq(optionIDs) {
		opt, ok := cat.Option(id)
		if !ok {
			return 0, unknown("option", id)
		}
		if opt.DurationMinutes > 0 {
			total += opt.DurationMinutes
		}
	}
	return total, nil
}

func orDefault(minutes *int) int {
	if minutes == nil || *minutes <= 0 {
		return DefaultMenuMinutes
	}
	return *minutes
}
