package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/metrics"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/queue"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/scheduling"
)

// CreateBookingRequest describes a new booking or schedule block.
//
// For a booking the end time is resolved from the menu and options; End
// is only used when the selection contributes no minutes.  A schedule
// block carries no menu and must give End.
type CreateBookingRequest struct {
	Type        model.BookingType
	CustomerID  string
	NewCustomer *CustomerInput
	StaffID     string
	BedID       *int
	Date        model.Date
	Start       model.Clock
	End         *model.Clock
	Menu        scheduling.MenuSelection
	OptionIDs   []string
	Notes       string
}

// UpdateBookingRequest replaces the placement and menu of a booking.
// Type, customer and status are not changed by an update.
type UpdateBookingRequest struct {
	StaffID   string
	BedID     *int
	Date      model.Date
	Start     model.Clock
	End       *model.Clock
	Menu      scheduling.MenuSelection
	OptionIDs []string
	Notes     string
}

// BookingDeps are the collaborators of a BookingService.
type BookingDeps struct {
	Store     Store
	Bookings  BookingReader
	History   HistoryReader
	Catalog   CatalogReader
	Tickets   TicketReader
	Directory Directory
	Events    EventPublisher // optional
	Metrics   *metrics.Metrics
	Salon     config.SalonConfig
	Log       *slog.Logger
	Now       func() time.Time
}

// BookingService owns the booking lifecycle.  Every write validates and
// commits in one transaction; events go out after commit.
type BookingService struct {
	d       BookingDeps
	pending sync.WaitGroup

	mu       sync.Mutex
	outbox   []queue.BookingEvent
	draining bool
}

// NewBookingService returns a BookingService.
func NewBookingService(d BookingDeps) *BookingService {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &BookingService{d: d}
}

// ResolveEndTime computes the end time a booking with the given menu
// would get.
func (s *BookingService) ResolveEndTime(ctx context.Context, start, previousEnd model.Clock, menu scheduling.MenuSelection, optionIDs []string) (model.Clock, error) {
	snap, err := loadSnapshot(ctx, s.d.Catalog, s.d.Tickets, menu, optionIDs)
	if err != nil {
		return previousEnd, err
	}
	return scheduling.ResolveEndTime(start, previousEnd, menu, optionIDs, snap)
}

// endTime resolves and validates the range of a booking or block.
func (s *BookingService) endTime(ctx context.Context, t model.BookingType, start model.Clock, end *model.Clock, menu scheduling.MenuSelection, optionIDs []string) (model.Clock, error) {
	var resolved model.Clock
	switch t {
	case model.TypeSchedule:
		if !menu.IsNone() || len(optionIDs) > 0 {
			return 0, invalidSelection("a schedule block has no menu")
		}
		if end == nil {
			return 0, invalidSelection("a schedule block needs an end time")
		}
		resolved = *end
	case model.TypeBooking:
		prev := start
		if end != nil {
			prev = *end
		}
		var err error
		if resolved, err = s.ResolveEndTime(ctx, start, prev, menu, optionIDs); err != nil {
			return 0, err
		}
	default:
		return 0, invalidSelection("unknown booking type %q", t)
	}
	if err := scheduling.ValidateRange(start, resolved); err != nil {
		return 0, err
	}
	return resolved, nil
}

func (s *BookingService) checkBed(bedID *int) error {
	if bedID == nil {
		return nil
	}
	if *bedID < 1 || *bedID > s.d.Salon.Beds {
		return invalidSelection("bed %d does not exist", *bedID)
	}
	return nil
}

// checkPlacement locks the staff and bed days of the candidate and
// re-checks the shift window and overlaps under those locks.
func checkPlacement(ctx context.Context, tx Tx, c scheduling.Candidate, t model.BookingType) error {
	staff, err := tx.Staff(ctx, c.StaffID)
	if err != nil {
		return unknownStaff(err, c.StaffID)
	}
	if !staff.IsActive {
		return invalidSelection("staff %q is not active", c.StaffID)
	}
	staffDay, err := tx.LockStaffDay(ctx, c.StaffID, c.Date)
	if err != nil {
		return fmt.Errorf("lock staff day: %w", err)
	}
	var bedDay []model.Booking
	if c.BedID != nil {
		if bedDay, err = tx.LockBedDay(ctx, *c.BedID, c.Date); err != nil {
			return fmt.Errorf("lock bed day: %w", err)
		}
	}
	// Schedule blocks are internal and may sit outside working hours,
	// but they still hold the staff member and the bed.
	if t == model.TypeBooking {
		shift, err := tx.Shift(ctx, c.StaffID, c.Date)
		if err != nil {
			return fmt.Errorf("load shift: %w", err)
		}
		if err := scheduling.CheckShift(*staff, shift, c.Start, c.End); err != nil {
			return err
		}
	}
	return scheduling.CheckConflicts(c, staffDay, bedDay)
}

// consumeTickets locks the tickets and takes one session from each.
func consumeTickets(ctx context.Context, tx Tx, customerID string, date model.Date, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	locked, err := tx.LockTickets(ctx, ids)
	if err != nil {
		return fmt.Errorf("lock tickets: %w", err)
	}
	byID := lo.KeyBy(locked, func(t model.CustomerTicket) string { return t.ID })
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: ticket %q", scheduling.ErrUnknownReference, id)
		}
		if t.CustomerID != customerID {
			return invalidSelection("ticket %q belongs to another customer", id)
		}
		if !t.Usable(date) {
			return invalidSelection("ticket %q has no sessions left or has expired", id)
		}
		if err := tx.AdjustTicketSessions(ctx, id, -1); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return invalidSelection("ticket %q has no sessions left", id)
			}
			return fmt.Errorf("consume ticket: %w", err)
		}
	}
	return nil
}

func restoreTickets(ctx context.Context, tx Tx, ids []string) error {
	for _, id := range ids {
		if err := tx.AdjustTicketSessions(ctx, id, 1); err != nil {
			return fmt.Errorf("restore ticket %s: %w", id, err)
		}
	}
	return nil
}

func addHistory(ctx context.Context, tx Tx, bookingID string, change model.HistoryChange, details any) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	return tx.AddHistory(ctx, &model.BookingHistory{BookingID: bookingID, ChangeType: change, Details: raw})
}

// Create validates and commits a new booking or schedule block.  Ticket
// sessions are taken in the same transaction.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (*model.Booking, error) {
	if req.Type == "" {
		req.Type = model.TypeBooking
	}
	if req.StaffID == "" {
		return nil, invalidSelection("staff is required")
	}
	if _, err := model.ParseDate(string(req.Date)); err != nil {
		return nil, invalidSelection("bad date %q", req.Date)
	}
	if err := s.checkBed(req.BedID); err != nil {
		return nil, err
	}
	if req.Type == model.TypeBooking && req.CustomerID == "" && req.NewCustomer == nil {
		return nil, invalidSelection("a booking needs a customer")
	}
	var newCustomer *model.Customer
	if req.Type == model.TypeBooking && req.CustomerID == "" {
		c, err := req.NewCustomer.toModel()
		if err != nil {
			return nil, err
		}
		newCustomer = c
	}
	end, err := s.endTime(ctx, req.Type, req.Start, req.End, req.Menu, req.OptionIDs)
	if err != nil {
		s.d.Metrics.BookingRejected(rejectionReason(err))
		return nil, err
	}

	var b model.Booking
	err = s.d.Store.InTx(ctx, func(tx Tx) error {
		b = model.Booking{
			StaffID:   req.StaffID,
			BedID:     req.BedID,
			Date:      req.Date,
			Start:     req.Start,
			End:       end,
			Type:      req.Type,
			Status:    scheduling.InitialStatus(req.Type),
			OptionIDs: lo.Uniq(req.OptionIDs),
			Notes:     req.Notes,
		}
		applyMenu(&b, req.Menu)

		c := scheduling.Candidate{StaffID: b.StaffID, BedID: b.BedID, Date: b.Date, Start: b.Start, End: b.End}
		if err := checkPlacement(ctx, tx, c, b.Type); err != nil {
			return err
		}
		if b.Type == model.TypeBooking {
			customerID, err := resolveCustomer(ctx, tx, req.CustomerID, newCustomer)
			if err != nil {
				return err
			}
			b.CustomerID = &customerID
			if err := consumeTickets(ctx, tx, customerID, b.Date, b.TicketIDs); err != nil {
				return err
			}
		}
		if err := tx.InsertBooking(ctx, &b); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		return addHistory(ctx, tx, b.ID, model.HistoryCreate, map[string]any{"booking": b})
	})
	if err != nil {
		s.d.Metrics.BookingRejected(rejectionReason(err))
		return nil, err
	}
	s.d.Metrics.BookingCommitted(string(b.Type))
	s.d.Metrics.TicketSessions("consumed", len(b.TicketIDs))
	s.d.Log.Info("booking created", "booking_id", b.ID, "type", b.Type, "staff_id", b.StaffID,
		"date", b.Date, "start", b.Start, "end", b.End)
	if b.Type == model.TypeBooking {
		s.publish(queue.BookingConfirmed, b, 0)
	}
	return &b, nil
}

// resolveCustomer returns the id of the booking's customer, registering
// the inline customer unless one with the same phone number exists.
func resolveCustomer(ctx context.Context, tx Tx, id string, inline *model.Customer) (string, error) {
	if inline == nil {
		return id, nil
	}
	if inline.PhoneNumber != "" {
		existing, err := tx.FindCustomerByPhone(ctx, inline.PhoneNumber)
		if err == nil {
			return existing.ID, nil
		}
		if !errors.Is(err, repository.ErrCustomerNotFound) {
			return "", fmt.Errorf("find customer: %w", err)
		}
	}
	c := *inline
	if err := tx.InsertCustomer(ctx, &c); err != nil {
		return "", fmt.Errorf("insert customer: %w", err)
	}
	return c.ID, nil
}

// applyMenu copies a selection into the booking's menu columns.
func applyMenu(b *model.Booking, menu scheduling.MenuSelection) {
	b.ServiceID, b.CouponID, b.TicketIDs, b.LimitedOfferIDs = nil, nil, nil, nil
	switch menu.Kind() {
	case scheduling.MenuService:
		id := menu.ID()
		b.ServiceID = &id
	case scheduling.MenuCoupon:
		id := menu.ID()
		b.CouponID = &id
	case scheduling.MenuTickets:
		b.TicketIDs = menu.IDs()
	case scheduling.MenuLimitedOffers:
		b.LimitedOfferIDs = menu.IDs()
	}
}

// MenuOf rebuilds the selection stored on a booking.
func MenuOf(b model.Booking) scheduling.MenuSelection {
	switch {
	case b.ServiceID != nil:
		return scheduling.ServiceMenu(*b.ServiceID)
	case b.CouponID != nil:
		return scheduling.CouponMenu(*b.CouponID)
	case len(b.TicketIDs) > 0:
		return scheduling.TicketsMenu(b.TicketIDs...)
	case len(b.LimitedOfferIDs) > 0:
		return scheduling.LimitedOffersMenu(b.LimitedOfferIDs...)
	}
	return scheduling.NoMenu()
}

// Update moves a booking or changes its menu.  Tickets dropped from the
// selection get their session back; tickets added lose one.
func (s *BookingService) Update(ctx context.Context, id string, req UpdateBookingRequest) (*model.Booking, error) {
	if req.StaffID == "" {
		return nil, invalidSelection("staff is required")
	}
	if _, err := model.ParseDate(string(req.Date)); err != nil {
		return nil, invalidSelection("bad date %q", req.Date)
	}
	if err := s.checkBed(req.BedID); err != nil {
		return nil, err
	}
	current, err := s.d.Bookings.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := req.End
	if prev == nil {
		prev = &current.End
	}
	end, err := s.endTime(ctx, current.Type, req.Start, prev, req.Menu, req.OptionIDs)
	if err != nil {
		s.d.Metrics.BookingRejected(rejectionReason(err))
		return nil, err
	}

	var (
		after              model.Booking
		consumed, restored int
	)
	err = s.d.Store.InTx(ctx, func(tx Tx) error {
		before, err := tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		if before.Status != model.StatusConfirmed && before.Status != model.StatusBlocked {
			return fmt.Errorf("%w: a %s booking cannot be changed", scheduling.ErrInvalidTransition, before.Status)
		}
		after = *before
		after.StaffID, after.BedID, after.Date = req.StaffID, req.BedID, req.Date
		after.Start, after.End = req.Start, end
		after.OptionIDs = lo.Uniq(req.OptionIDs)
		after.Notes = req.Notes
		applyMenu(&after, req.Menu)

		c := scheduling.Candidate{ID: after.ID, StaffID: after.StaffID, BedID: after.BedID, Date: after.Date, Start: after.Start, End: after.End}
		if err := checkPlacement(ctx, tx, c, after.Type); err != nil {
			return err
		}
		dropped := lo.Without(before.TicketIDs, after.TicketIDs...)
		added := lo.Without(after.TicketIDs, before.TicketIDs...)
		if err := restoreTickets(ctx, tx, dropped); err != nil {
			return err
		}
		if len(added) > 0 {
			if after.CustomerID == nil {
				return invalidSelection("tickets need a customer")
			}
			if err := consumeTickets(ctx, tx, *after.CustomerID, after.Date, added); err != nil {
				return err
			}
		}
		consumed, restored = len(added), len(dropped)
		if err := tx.UpdateBooking(ctx, &after); err != nil {
			return fmt.Errorf("update booking: %w", err)
		}
		return addHistory(ctx, tx, id, model.HistoryUpdate, map[string]any{"before": before, "after": after})
	})
	if err != nil {
		s.d.Metrics.BookingRejected(rejectionReason(err))
		return nil, err
	}
	s.d.Metrics.TicketSessions("consumed", consumed)
	s.d.Metrics.TicketSessions("restored", restored)
	s.d.Log.Info("booking updated", "booking_id", id, "staff_id", after.StaffID, "date", after.Date,
		"start", after.Start, "end", after.End)
	if after.Type == model.TypeBooking {
		s.publish(queue.BookingRescheduled, after, restored)
	}
	return &after, nil
}

// Cancel cancels a booking or removes a schedule block and gives back
// every ticket session the booking consumed.  Cancelling an already
// cancelled booking changes nothing and is not an error.
func (s *BookingService) Cancel(ctx context.Context, id, reason string) (*model.Booking, error) {
	var (
		b        model.Booking
		restored int
		noop     bool
	)
	err := s.d.Store.InTx(ctx, func(tx Tx) error {
		cur, err := tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		b, restored, noop = *cur, 0, false
		if cur.Status == model.StatusCancelled {
			noop = true
			return nil
		}
		if err := scheduling.CheckTransition(cur.Type, cur.Status, model.StatusCancelled); err != nil {
			return err
		}
		if cur.Type == model.TypeBooking {
			if err := restoreTickets(ctx, tx, cur.TicketIDs); err != nil {
				return err
			}
			restored = len(cur.TicketIDs)
		}
		if err := tx.SetBookingStatus(ctx, id, model.StatusCancelled); err != nil {
			return err
		}
		b.Status = model.StatusCancelled
		return addHistory(ctx, tx, id, model.HistoryCancel, map[string]any{
			"from": cur.Status, "reason": reason, "sessions_restored": restored,
		})
	})
	if err != nil {
		return nil, err
	}
	if noop {
		return &b, nil
	}
	s.d.Metrics.StatusChanged(string(model.StatusCancelled))
	s.d.Metrics.TicketSessions("restored", restored)
	s.d.Log.Info("booking cancelled", "booking_id", id, "sessions_restored", restored)
	if b.Type == model.TypeBooking {
		s.publish(queue.BookingCancelled, b, restored)
	}
	return &b, nil
}

// SetStatus moves a booking through its lifecycle.  Cancellation is
// delegated to Cancel.  A no-show also gives its ticket sessions back
// and releases the slot; repeating it changes nothing.
func (s *BookingService) SetStatus(ctx context.Context, id string, to model.BookingStatus, reason string) (*model.Booking, error) {
	if to == model.StatusCancelled {
		return s.Cancel(ctx, id, reason)
	}
	var (
		b        model.Booking
		restored int
		noop     bool
	)
	err := s.d.Store.InTx(ctx, func(tx Tx) error {
		cur, err := tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		b, restored, noop = *cur, 0, false
		if cur.Status == model.StatusNoShow && to == model.StatusNoShow {
			noop = true
			return nil
		}
		if err := scheduling.CheckTransition(cur.Type, cur.Status, to); err != nil {
			return fmt.Errorf("%w: %s to %s", err, cur.Status, to)
		}
		if to == model.StatusNoShow {
			if err := restoreTickets(ctx, tx, cur.TicketIDs); err != nil {
				return err
			}
			restored = len(cur.TicketIDs)
		}
		if err := tx.SetBookingStatus(ctx, id, to); err != nil {
			return err
		}
		b.Status = to
		return addHistory(ctx, tx, id, model.HistoryStatus, map[string]any{
			"from": cur.Status, "to": to, "reason": reason, "sessions_restored": restored,
		})
	})
	if err != nil {
		return nil, err
	}
	if noop {
		return &b, nil
	}
	s.d.Metrics.StatusChanged(string(to))
	s.d.Metrics.TicketSessions("restored", restored)
	if to == model.StatusCompleted {
		s.publish(queue.BookingCompleted, b, 0)
	}
	return &b, nil
}

// Get returns one booking with display names.
func (s *BookingService) Get(ctx context.Context, id string) (*model.BookingDetail, error) {
	return s.d.Bookings.GetDetail(ctx, id)
}

// ListByDate returns the calendar of a day.
func (s *BookingService) ListByDate(ctx context.Context, date model.Date) ([]model.BookingDetail, error) {
	if _, err := model.ParseDate(string(date)); err != nil {
		return nil, invalidSelection("bad date %q", date)
	}
	return s.d.Bookings.ListByDate(ctx, date)
}

// History returns the audit trail of a booking.
func (s *BookingService) History(ctx context.Context, id string) ([]model.BookingHistory, error) {
	return s.d.History.ListByBooking(ctx, id)
}

// publish queues an event for the background sender.  Events leave in
// the order they were queued, one at a time, so a consumer never sees a
// booking cancelled before it was confirmed.
func (s *BookingService) publish(eventType string, b model.Booking, restored int) {
	if s.d.Events == nil {
		return
	}
	ev := queue.BookingEvent{
		Type:             eventType,
		BookingID:        b.ID,
		CustomerID:       lo.FromPtr(b.CustomerID),
		StaffID:          b.StaffID,
		BedID:            b.BedID,
		Date:             string(b.Date),
		Start:            b.Start.String(),
		End:              b.End.String(),
		Status:           string(b.Status),
		TicketIDs:        b.TicketIDs,
		SessionsRestored: restored,
		OccurredAt:       s.d.Now().UTC(),
	}
	s.pending.Add(1)
	s.mu.Lock()
	s.outbox = append(s.outbox, ev)
	start := !s.draining
	s.draining = true
	s.mu.Unlock()
	if start {
		go s.drain()
	}
}

// drain sends queued events until the outbox is empty.  At most one
// drain runs at a time.
func (s *BookingService) drain() {
	for {
		s.mu.Lock()
		if len(s.outbox) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		ev := s.outbox[0]
		s.outbox = s.outbox[1:]
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_ = s.d.Events.Publish(ctx, ev)
		cancel()
		s.pending.Done()
	}
}

// Wait blocks until every queued event has been handed to the broker
// or has failed.
func (s *BookingService) Wait() { s.pending.Wait() }
