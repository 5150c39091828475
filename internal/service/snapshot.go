package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/scheduling"
)

// loadSnapshot reads every catalog item the selection and options refer
// to.  Items that do not exist are simply missing from the snapshot; the
// resolver reports them as unknown references.
func loadSnapshot(ctx context.Context, cat CatalogReader, tr TicketReader, menu scheduling.MenuSelection, optionIDs []string) (*scheduling.Snapshot, error) {
	snap := &scheduling.Snapshot{}

	var serviceIDs []string
	switch menu.Kind() {
	case scheduling.MenuService:
		serviceIDs = append(serviceIDs, menu.ID())
	case scheduling.MenuTickets:
		tickets, err := tr.ByIDs(ctx, menu.IDs())
		if err != nil {
			return nil, fmt.Errorf("load tickets: %w", err)
		}
		snap.Tickets = lo.KeyBy(tickets, func(t model.CustomerTicket) string { return t.ID })
		serviceIDs = lo.Uniq(lo.Map(tickets, func(t model.CustomerTicket, _ int) string { return t.ServiceID }))
	}

	g, gctx := errgroup.WithContext(ctx)
	if len(serviceIDs) > 0 {
		g.Go(func() error {
			list, err := cat.ServicesByIDs(gctx, serviceIDs)
			snap.Services = lo.KeyBy(list, func(s model.Service) string { return s.ID })
			return wrap("load services", err)
		})
	}
	if len(optionIDs) > 0 {
		g.Go(func() error {
			list, err := cat.OptionsByIDs(gctx, lo.Uniq(optionIDs))
			snap.Options = lo.KeyBy(list, func(o model.Option) string { return o.ID })
			return wrap("load options", err)
		})
	}
	switch menu.Kind() {
	case scheduling.MenuCoupon:
		g.Go(func() error {
			list, err := cat.CouponsByIDs(gctx, menu.IDs())
			snap.Coupons = lo.KeyBy(list, func(c model.Coupon) string { return c.ID })
			return wrap("load coupons", err)
		})
	case scheduling.MenuLimitedOffers:
		g.Go(func() error {
			list, err := cat.LimitedOffersByIDs(gctx, menu.IDs())
			snap.LimitedOffers = lo.KeyBy(list, func(o model.LimitedOffer) string { return o.ID })
			return wrap("load limited offers", err)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}
