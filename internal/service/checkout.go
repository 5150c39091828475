package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/iliyamo/salon-booking/internal/metrics"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/queue"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/scheduling"
)

// CheckoutOption is one option line of a checkout.
type CheckoutOption struct {
	OptionID string `json:"option_id"`
	Quantity int    `json:"quantity"`
	IsFree   bool   `json:"is_free"`
}

// CheckoutRequest settles a visit.  BookingID is optional: a walk-in has
// no booking.  At most one of ServiceID, TicketID, CouponID and
// LimitedOfferID prices the visit.
type CheckoutRequest struct {
	CustomerID     string           `json:"customer_id"`
	BookingID      *string          `json:"booking_id"`
	StaffID        string           `json:"staff_id"`
	ServiceID      string           `json:"service_id"`
	TicketID       string           `json:"ticket_id"`
	CouponID       string           `json:"coupon_id"`
	LimitedOfferID string           `json:"limited_offer_id"`
	Options        []CheckoutOption `json:"options"`
	DiscountAmount int              `json:"discount_amount"`
	PaymentMethod  string           `json:"payment_method"`
	CashAmount     int              `json:"cash_amount"`
	CardAmount     int              `json:"card_amount"`
	Notes          string           `json:"notes"`
}

// CheckoutService records payments and closes bookings.
type CheckoutService struct {
	store    Store
	catalog  CatalogReader
	tickets  TicketReader
	bookings *BookingService
	metrics  *metrics.Metrics
	log      *slog.Logger
	now      func() time.Time
}

// NewCheckoutService returns a CheckoutService.  Completed bookings are
// announced through bookings.
func NewCheckoutService(store Store, catalog CatalogReader, tickets TicketReader, bookings *BookingService, m *metrics.Metrics, log *slog.Logger) *CheckoutService {
	if log == nil {
		log = slog.Default()
	}
	return &CheckoutService{store: store, catalog: catalog, tickets: tickets, bookings: bookings, metrics: m, log: log, now: time.Now}
}

// pricing is the priced part of a checkout, before options.
type pricing struct {
	kind       model.PaymentType
	name       string
	unit       int
	duration   int
	subtotal   int
	freeLimit  int
	ticket     *model.CustomerTicket
	couponID   *string
	offerID    *string
	serviceRef *string
}

func (s *CheckoutService) priceVisit(ctx context.Context, req CheckoutRequest) (*pricing, error) {
	picked := lo.Compact([]string{req.ServiceID, req.TicketID, req.CouponID, req.LimitedOfferID})
	if len(picked) > 1 {
		return nil, invalidSelection("pick one of service, ticket, coupon or limited offer")
	}
	p := &pricing{kind: model.PaymentNormal}
	serviceID := req.ServiceID
	switch {
	case req.TicketID != "":
		list, err := s.tickets.ByIDs(ctx, []string{req.TicketID})
		if err != nil {
			return nil, fmt.Errorf("load ticket: %w", err)
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: ticket %q", scheduling.ErrUnknownReference, req.TicketID)
		}
		t := list[0]
		if req.CustomerID != "" && t.CustomerID != req.CustomerID {
			return nil, invalidSelection("ticket %q belongs to another customer", t.ID)
		}
		p.kind, p.ticket, serviceID = model.PaymentTicket, &t, t.ServiceID
	case req.CouponID != "":
		list, err := s.catalog.CouponsByIDs(ctx, []string{req.CouponID})
		if err != nil {
			return nil, fmt.Errorf("load coupon: %w", err)
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: coupon %q", scheduling.ErrUnknownReference, req.CouponID)
		}
		c := list[0]
		p.kind, p.name, p.unit, p.subtotal = model.PaymentCoupon, c.Name, c.TotalPrice, c.TotalPrice
		p.duration = lo.FromPtrOr(c.TotalDurationMinutes, scheduling.DefaultMenuMinutes)
		p.freeLimit = c.FreeOptionCount
		p.couponID = &c.ID
		return p, nil
	case req.LimitedOfferID != "":
		list, err := s.catalog.LimitedOffersByIDs(ctx, []string{req.LimitedOfferID})
		if err != nil {
			return nil, fmt.Errorf("load limited offer: %w", err)
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: limited offer %q", scheduling.ErrUnknownReference, req.LimitedOfferID)
		}
		o := list[0]
		p.kind, p.name, p.unit, p.subtotal = model.PaymentLimitedOffer, o.Name, o.SpecialPrice, o.SpecialPrice
		p.duration = lo.FromPtrOr(o.DurationMinutes, scheduling.DefaultMenuMinutes)
		p.offerID = &o.ID
		return p, nil
	}
	if serviceID == "" {
		return p, nil
	}
	list, err := s.catalog.ServicesByIDs(ctx, []string{serviceID})
	if err != nil {
		return nil, fmt.Errorf("load service: %w", err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: service %q", scheduling.ErrUnknownReference, serviceID)
	}
	svc := list[0]
	p.serviceRef = &svc.ID
	p.name, p.unit, p.duration, p.freeLimit = svc.Name, svc.Price, svc.DurationMinutes, svc.FreeOptionChoices
	if p.ticket == nil {
		p.subtotal = svc.Price
	}
	return p, nil
}

func (s *CheckoutService) optionLines(ctx context.Context, in []CheckoutOption, freeLimit int) ([]model.PaymentOption, int, error) {
	if len(in) == 0 {
		return nil, 0, nil
	}
	if dup := lo.FindDuplicates(lo.Map(in, func(o CheckoutOption, _ int) string { return o.OptionID })); len(dup) > 0 {
		return nil, 0, invalidSelection("option %q listed twice", dup[0])
	}
	free := lo.CountBy(in, func(o CheckoutOption) bool { return o.IsFree })
	if free > freeLimit {
		return nil, 0, invalidSelection("%d free options selected, %d allowed", free, freeLimit)
	}
	list, err := s.catalog.OptionsByIDs(ctx, lo.Map(in, func(o CheckoutOption, _ int) string { return o.OptionID }))
	if err != nil {
		return nil, 0, fmt.Errorf("load options: %w", err)
	}
	byID := lo.KeyBy(list, func(o model.Option) string { return o.ID })
	lines := make([]model.PaymentOption, 0, len(in))
	total := 0
	for _, o := range in {
		opt, ok := byID[o.OptionID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: option %q", scheduling.ErrUnknownReference, o.OptionID)
		}
		if o.Quantity < 0 {
			return nil, 0, invalidInput("negative quantity for option %q", o.OptionID)
		}
		line := model.PaymentOption{
			OptionID:        opt.ID,
			Name:            opt.Name,
			Category:        opt.Category,
			Price:           opt.Price,
			DurationMinutes: opt.DurationMinutes,
			Quantity:        max(o.Quantity, 1),
			IsFree:          o.IsFree,
		}
		total += line.Charge()
		lines = append(lines, line)
	}
	return lines, total, nil
}

// Checkout prices the visit, records the payment and completes the
// booking when one is given.  A ticket that the booking already redeemed
// is not charged a second session; a walk-in ticket redemption takes one
// session here.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*model.Payment, error) {
	if req.StaffID == "" {
		return nil, invalidInput("staff is required")
	}
	if req.DiscountAmount < 0 {
		return nil, invalidInput("discount must not be negative")
	}
	if req.BookingID != nil && *req.BookingID == "" {
		req.BookingID = nil
	}
	if req.CustomerID == "" && req.BookingID == nil {
		return nil, invalidInput("customer is required")
	}
	p, err := s.priceVisit(ctx, req)
	if err != nil {
		return nil, err
	}
	lines, optionsTotal, err := s.optionLines(ctx, req.Options, p.freeLimit)
	if err != nil {
		return nil, err
	}
	gross := p.subtotal + optionsTotal
	if req.DiscountAmount > gross {
		return nil, invalidInput("discount %d exceeds the amount due %d", req.DiscountAmount, gross)
	}
	total := gross - req.DiscountAmount
	method, cash, card, err := splitTender(req.PaymentMethod, total, req.CashAmount, req.CardAmount)
	if err != nil {
		return nil, err
	}

	var (
		pay       model.Payment
		completed *model.Booking
	)
	err = s.store.InTx(ctx, func(tx Tx) error {
		completed = nil
		pay = model.Payment{
			CustomerID:      req.CustomerID,
			BookingID:       req.BookingID,
			StaffID:         req.StaffID,
			ServiceID:       p.serviceRef,
			ServiceName:     p.name,
			ServicePrice:    p.unit,
			ServiceDuration: p.duration,
			PaymentType:     p.kind,
			CouponID:        p.couponID,
			LimitedOfferID:  p.offerID,
			ServiceSubtotal: p.subtotal,
			OptionsTotal:    optionsTotal,
			DiscountAmount:  req.DiscountAmount,
			TotalAmount:     total,
			PaymentMethod:   method,
			CashAmount:      cash,
			CardAmount:      card,
			Notes:           req.Notes,
			PaymentDate:     s.now(),
			Options:         lines,
		}
		var booking *model.Booking
		if req.BookingID != nil {
			b, err := s.lockBookingForCheckout(ctx, tx, *req.BookingID, &pay)
			if err != nil {
				return err
			}
			booking = b
		}
		if p.ticket != nil {
			if err := s.redeem(ctx, tx, p.ticket, booking, &pay); err != nil {
				return err
			}
		}
		if err := tx.InsertPayment(ctx, &pay); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		if booking == nil || booking.Status == model.StatusCompleted {
			return nil
		}
		if err := tx.SetBookingStatus(ctx, booking.ID, model.StatusCompleted); err != nil {
			return err
		}
		if err := addHistory(ctx, tx, booking.ID, model.HistoryStatus, map[string]any{
			"from": booking.Status, "to": model.StatusCompleted, "payment_id": pay.ID,
		}); err != nil {
			return err
		}
		done := *booking
		done.Status = model.StatusCompleted
		completed = &done
		return nil
	})
	if err != nil {
		return nil, err
	}
	if pay.TicketSessionUsed {
		s.metrics.TicketSessions("consumed", 1)
	}
	if completed != nil {
		s.metrics.StatusChanged(string(model.StatusCompleted))
		if s.bookings != nil {
			s.bookings.publish(queue.BookingCompleted, *completed, 0)
		}
	}
	s.log.Info("checkout recorded", "payment_id", pay.ID, "booking_id", lo.FromPtr(pay.BookingID),
		"customer_id", pay.CustomerID, "total", pay.TotalAmount, "method", pay.PaymentMethod)
	return &pay, nil
}

// lockBookingForCheckout locks the booking and checks it can be paid.
// A completed booking whose payment was cancelled may be paid again.
func (s *CheckoutService) lockBookingForCheckout(ctx context.Context, tx Tx, id string, pay *model.Payment) (*model.Booking, error) {
	b, err := tx.LockBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Type != model.TypeBooking {
		return nil, invalidSelection("booking %s is a schedule block", id)
	}
	switch b.Status {
	case model.StatusConfirmed, model.StatusCompleted:
	default:
		return nil, fmt.Errorf("%w: %s booking cannot be checked out", scheduling.ErrInvalidTransition, b.Status)
	}
	paid, err := tx.BookingPaid(ctx, id)
	if err != nil {
		return nil, err
	}
	if paid {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyPaid, id)
	}
	switch {
	case pay.CustomerID == "":
		pay.CustomerID = lo.FromPtr(b.CustomerID)
	case b.CustomerID != nil && *b.CustomerID != pay.CustomerID:
		return nil, invalidInput("booking %s belongs to another customer", id)
	}
	if pay.CustomerID == "" {
		return nil, invalidInput("customer is required")
	}
	return b, nil
}

// redeem settles the ticket part of a payment.  Tickets attached to the
// booking lost their session when the booking was made.
func (s *CheckoutService) redeem(ctx context.Context, tx Tx, t *model.CustomerTicket, booking *model.Booking, pay *model.Payment) error {
	id := t.ID
	if t.CustomerID != pay.CustomerID {
		return invalidSelection("ticket %q belongs to another customer", id)
	}
	pay.TicketID = &id
	if booking != nil {
		if !lo.Contains(booking.TicketIDs, id) {
			return invalidSelection("ticket %q is not part of booking %s", id, booking.ID)
		}
		return nil
	}
	locked, err := tx.LockTickets(ctx, []string{id})
	if err != nil {
		return fmt.Errorf("lock ticket: %w", err)
	}
	if len(locked) == 0 {
		return fmt.Errorf("%w: ticket %q", scheduling.ErrUnknownReference, id)
	}
	today := model.DateOf(pay.PaymentDate)
	if !locked[0].Usable(today) {
		return invalidSelection("ticket %q has no sessions left or has expired", id)
	}
	if err := tx.AdjustTicketSessions(ctx, id, -1); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return invalidSelection("ticket %q has no sessions left", id)
		}
		return fmt.Errorf("consume ticket: %w", err)
	}
	pay.TicketSessionUsed = true
	return nil
}

// CancelPayment voids a payment.  A ticket session taken by the payment
// itself is given back; sessions taken by a booking stay with the
// booking.  The booking keeps its completed status.
func (s *CheckoutService) CancelPayment(ctx context.Context, id, reason string) (*model.Payment, error) {
	var pay *model.Payment
	err := s.store.InTx(ctx, func(tx Tx) error {
		p, err := tx.LockPayment(ctx, id)
		if err != nil {
			return err
		}
		if p.IsCancelled {
			return fmt.Errorf("%w: payment %s", ErrAlreadyCancelled, id)
		}
		if p.TicketSessionUsed && p.TicketID != nil {
			if err := tx.AdjustTicketSessions(ctx, *p.TicketID, 1); err != nil {
				return fmt.Errorf("restore ticket %s: %w", *p.TicketID, err)
			}
		}
		if err := tx.CancelPayment(ctx, id, reason); err != nil {
			return err
		}
		p.IsCancelled, p.CancelledReason = true, reason
		pay = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if pay.TicketSessionUsed {
		s.metrics.TicketSessions("restored", 1)
	}
	s.log.Info("payment cancelled", "payment_id", id, "reason", reason)
	return pay, nil
}
