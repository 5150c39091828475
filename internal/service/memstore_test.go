package service

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/queue"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/scheduling"
)

// memState is the database of memStore.  Transactions work on a clone
// and swap it in on commit.
type memState struct {
	staff          map[string]model.Staff
	shifts         map[string]model.ShiftWindow
	bookings       map[string]model.Booking
	tickets        map[string]model.CustomerTicket
	customers      map[string]model.Customer
	payments       map[string]model.Payment
	history        []model.BookingHistory
	ticketPayments []model.TicketPayment
	wages          []model.WageChange
}

func (s memState) clone() memState {
	return memState{
		staff:          maps.Clone(s.staff),
		shifts:         maps.Clone(s.shifts),
		bookings:       maps.Clone(s.bookings),
		tickets:        maps.Clone(s.tickets),
		customers:      maps.Clone(s.customers),
		payments:       maps.Clone(s.payments),
		history:        slices.Clone(s.history),
		ticketPayments: slices.Clone(s.ticketPayments),
		wages:          slices.Clone(s.wages),
	}
}

func shiftKey(staffID string, date model.Date) string { return staffID + "/" + string(date) }

// memStore is an in-memory Store.  A transaction holds the store mutex
// for its whole run, which stands in for the row locks of MySQL.
type memStore struct {
	mu sync.Mutex
	st memState

	services map[string]model.Service
	options  map[string]model.Option
	coupons  map[string]model.Coupon
	offers   map[string]model.LimitedOffer
	plans    map[string]model.TicketPlan

	commits           int
	staffInvalidated  int
	shiftsInvalidated []model.Date
}

func newMemStore() *memStore {
	return &memStore{
		st: memState{
			staff:     map[string]model.Staff{},
			shifts:    map[string]model.ShiftWindow{},
			bookings:  map[string]model.Booking{},
			tickets:   map[string]model.CustomerTicket{},
			customers: map[string]model.Customer{},
			payments:  map[string]model.Payment{},
		},
		services: map[string]model.Service{},
		options:  map[string]model.Option{},
		coupons:  map[string]model.Coupon{},
		offers:   map[string]model.LimitedOffer{},
		plans:    map[string]model.TicketPlan{},
	}
}

func (m *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.st.clone()
	if err := fn(&memTx{m: m, st: &work}); err != nil {
		return err
	}
	m.st = work
	m.commits++
	return nil
}

// locked runs f under the store mutex.
func (m *memStore) locked(f func(st *memState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f(&m.st)
}

func (m *memStore) booking(id string) model.Booking {
	var b model.Booking
	m.locked(func(st *memState) { b = st.bookings[id] })
	return b
}

func (m *memStore) ticket(id string) model.CustomerTicket {
	var t model.CustomerTicket
	m.locked(func(st *memState) { t = st.tickets[id] })
	return t
}

func (m *memStore) payment(id string) model.Payment {
	var p model.Payment
	m.locked(func(st *memState) { p = st.payments[id] })
	return p
}

func (m *memStore) bookingCount() int {
	var n int
	m.locked(func(st *memState) { n = len(st.bookings) })
	return n
}

// BookingReader

func (m *memStore) detail(st *memState, b model.Booking) model.BookingDetail {
	d := model.BookingDetail{Booking: b}
	if s, ok := st.staff[b.StaffID]; ok {
		d.StaffName, d.StaffColor = s.Name, s.Color
	}
	if b.CustomerID != nil {
		if c, ok := st.customers[*b.CustomerID]; ok {
			d.CustomerName, d.PhoneNumber = c.FullName(), c.PhoneNumber
		}
	}
	if b.ServiceID != nil {
		d.ServiceName = m.services[*b.ServiceID].Name
	}
	return d
}

func (m *memStore) ListByDate(ctx context.Context, date model.Date) ([]model.BookingDetail, error) {
	var out []model.BookingDetail
	m.locked(func(st *memState) {
		for _, b := range st.bookings {
			if b.Date == date {
				out = append(out, m.detail(st, b))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (m *memStore) GetDetail(ctx context.Context, id string) (*model.BookingDetail, error) {
	var (
		d  model.BookingDetail
		ok bool
	)
	m.locked(func(st *memState) {
		var b model.Booking
		if b, ok = st.bookings[id]; ok {
			d = m.detail(st, b)
		}
	})
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return &d, nil
}

// HistoryReader

func (m *memStore) ListByBooking(ctx context.Context, bookingID string) ([]model.BookingHistory, error) {
	var out []model.BookingHistory
	m.locked(func(st *memState) {
		out = lo.Filter(st.history, func(h model.BookingHistory, _ int) bool { return h.BookingID == bookingID })
	})
	return out, nil
}

// CatalogReader, TicketReader and TicketPlans

func pick[T any](src map[string]T, ids []string) []T {
	var out []T
	for _, id := range ids {
		if v, ok := src[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

func (m *memStore) ServicesByIDs(ctx context.Context, ids []string) ([]model.Service, error) {
	return pick(m.services, ids), nil
}

func (m *memStore) OptionsByIDs(ctx context.Context, ids []string) ([]model.Option, error) {
	return pick(m.options, ids), nil
}

func (m *memStore) CouponsByIDs(ctx context.Context, ids []string) ([]model.Coupon, error) {
	return pick(m.coupons, ids), nil
}

func (m *memStore) LimitedOffersByIDs(ctx context.Context, ids []string) ([]model.LimitedOffer, error) {
	return pick(m.offers, ids), nil
}

func (m *memStore) ByIDs(ctx context.Context, ids []string) ([]model.CustomerTicket, error) {
	var out []model.CustomerTicket
	m.locked(func(st *memState) { out = pick(st.tickets, ids) })
	return out, nil
}

func (m *memStore) PlanByID(ctx context.Context, id string) (*model.TicketPlan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nil, repository.ErrPlanNotFound
	}
	return &p, nil
}

// CustomerLookup and LedgerCustomers

func (m *memStore) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	var (
		c  model.Customer
		ok bool
	)
	m.locked(func(st *memState) { c, ok = st.customers[id] })
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return &c, nil
}

func (m *memStore) PaidVisitDays(ctx context.Context, customerID string) (int, error) {
	days := map[model.Date]bool{}
	m.locked(func(st *memState) {
		for _, p := range st.payments {
			if p.CustomerID == customerID && !p.IsCancelled {
				days[model.DateOf(p.PaymentDate)] = true
			}
		}
	})
	return len(days), nil
}

// Directory

func (m *memStore) ActiveStaff(ctx context.Context) ([]model.Staff, error) {
	var out []model.Staff
	m.locked(func(st *memState) {
		for _, s := range st.staff {
			if s.IsActive {
				out = append(out, s)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) ShiftsOn(ctx context.Context, date model.Date) ([]model.ShiftWindow, error) {
	var out []model.ShiftWindow
	m.locked(func(st *memState) {
		for _, s := range st.shifts {
			if s.Date == date {
				out = append(out, s)
			}
		}
	})
	return out, nil
}

func (m *memStore) InvalidateStaff(ctx context.Context) error {
	m.locked(func(*memState) { m.staffInvalidated++ })
	return nil
}

func (m *memStore) InvalidateShifts(ctx context.Context, dates ...model.Date) error {
	m.locked(func(*memState) { m.shiftsInvalidated = append(m.shiftsInvalidated, dates...) })
	return nil
}

// memStaff and memShifts expose the staff and shift tables under the
// names StaffStore and ShiftStore use.
type memStaff struct{ m *memStore }

func (s memStaff) GetByID(ctx context.Context, id string) (*model.Staff, error) {
	var (
		v  model.Staff
		ok bool
	)
	s.m.locked(func(st *memState) { v, ok = st.staff[id] })
	if !ok {
		return nil, repository.ErrStaffNotFound
	}
	return &v, nil
}

func (s memStaff) ListAll(ctx context.Context) ([]model.Staff, error) {
	var out []model.Staff
	s.m.locked(func(st *memState) { out = slices.Collect(maps.Values(st.staff)) })
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s memStaff) Create(ctx context.Context, v *model.Staff) error {
	var err error
	s.m.locked(func(st *memState) {
		for _, other := range st.staff {
			if other.Name == v.Name {
				err = repository.ErrDuplicate
				return
			}
		}
		v.ID = uuid.NewString()
		st.staff[v.ID] = *v
	})
	return err
}

func (s memStaff) WageHistory(ctx context.Context, staffID string) ([]model.WageChange, error) {
	var out []model.WageChange
	s.m.locked(func(st *memState) {
		out = lo.Filter(st.wages, func(w model.WageChange, _ int) bool { return w.StaffID == staffID })
	})
	return out, nil
}

type memShifts struct{ m *memStore }

func (s memShifts) ListByMonth(ctx context.Context, year int, month time.Month, staffID string) ([]model.ShiftWindow, error) {
	prefix := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-")
	var out []model.ShiftWindow
	s.m.locked(func(st *memState) {
		for _, w := range st.shifts {
			if strings.HasPrefix(string(w.Date), prefix) && (staffID == "" || w.StaffID == staffID) {
				out = append(out, w)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s memShifts) Upsert(ctx context.Context, w *model.ShiftWindow) error {
	s.m.locked(func(st *memState) {
		if w.ID == "" {
			w.ID = uuid.NewString()
		}
		st.shifts[shiftKey(w.StaffID, w.Date)] = *w
	})
	return nil
}

func (s memShifts) Delete(ctx context.Context, staffID string, date model.Date) error {
	s.m.locked(func(st *memState) { delete(st.shifts, shiftKey(staffID, date)) })
	return nil
}

// memTx is the transactional view over a cloned state.
type memTx struct {
	m  *memStore
	st *memState
}

func (t *memTx) Staff(ctx context.Context, id string) (*model.Staff, error) {
	s, ok := t.st.staff[id]
	if !ok {
		return nil, repository.ErrStaffNotFound
	}
	return &s, nil
}

func (t *memTx) Shift(ctx context.Context, staffID string, date model.Date) (*model.ShiftWindow, error) {
	s, ok := t.st.shifts[shiftKey(staffID, date)]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (t *memTx) LockStaffDay(ctx context.Context, staffID string, date model.Date) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range t.st.bookings {
		if b.StaffID == staffID && b.Date == date {
			out = append(out, b)
		}
	}
	return out, nil
}

func (t *memTx) LockBedDay(ctx context.Context, bedID int, date model.Date) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range t.st.bookings {
		if b.BedID != nil && *b.BedID == bedID && b.Date == date {
			out = append(out, b)
		}
	}
	return out, nil
}

func (t *memTx) LockBooking(ctx context.Context, id string) (*model.Booking, error) {
	b, ok := t.st.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return &b, nil
}

func storedBooking(b model.Booking) model.Booking {
	b.TicketIDs = slices.Clone(b.TicketIDs)
	b.LimitedOfferIDs = slices.Clone(b.LimitedOfferIDs)
	b.OptionIDs = slices.Clone(b.OptionIDs)
	return b
}

func (t *memTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	b.ID = uuid.NewString()
	t.st.bookings[b.ID] = storedBooking(*b)
	return nil
}

func (t *memTx) UpdateBooking(ctx context.Context, b *model.Booking) error {
	if _, ok := t.st.bookings[b.ID]; !ok {
		return repository.ErrBookingNotFound
	}
	t.st.bookings[b.ID] = storedBooking(*b)
	return nil
}

func (t *memTx) SetBookingStatus(ctx context.Context, id string, status model.BookingStatus) error {
	b, ok := t.st.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Status = status
	t.st.bookings[id] = b
	return nil
}

func (t *memTx) AddHistory(ctx context.Context, h *model.BookingHistory) error {
	h.ID = uuid.NewString()
	t.st.history = append(t.st.history, *h)
	return nil
}

func (t *memTx) LockTickets(ctx context.Context, ids []string) ([]model.CustomerTicket, error) {
	sorted := slices.Sorted(slices.Values(lo.Uniq(ids)))
	return pick(t.st.tickets, sorted), nil
}

func (t *memTx) AdjustTicketSessions(ctx context.Context, id string, delta int) error {
	tk, ok := t.st.tickets[id]
	if !ok {
		return repository.ErrTicketNotFound
	}
	if tk.SessionsRemaining+delta < 0 {
		return repository.ErrConflict
	}
	tk.SessionsRemaining += delta
	t.st.tickets[id] = tk
	return nil
}

func (t *memTx) InsertTicket(ctx context.Context, tk *model.CustomerTicket) error {
	tk.ID = uuid.NewString()
	t.st.tickets[tk.ID] = *tk
	return nil
}

func (t *memTx) AddTicketPayment(ctx context.Context, p *model.TicketPayment) error {
	tk, ok := t.st.tickets[p.CustomerTicketID]
	if !ok {
		return repository.ErrTicketNotFound
	}
	p.ID = int64(len(t.st.ticketPayments) + 1)
	t.st.ticketPayments = append(t.st.ticketPayments, *p)
	tk.PaidAmount += p.AmountPaid
	t.st.tickets[tk.ID] = tk
	return nil
}

func (t *memTx) FindCustomerByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	for _, c := range t.st.customers {
		if c.PhoneNumber == phone {
			return &c, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

func (t *memTx) InsertCustomer(ctx context.Context, c *model.Customer) error {
	c.ID = uuid.NewString()
	t.st.customers[c.ID] = *c
	return nil
}

func (t *memTx) InsertPayment(ctx context.Context, p *model.Payment) error {
	p.ID = uuid.NewString()
	stored := *p
	stored.Options = slices.Clone(p.Options)
	t.st.payments[p.ID] = stored
	return nil
}

func (t *memTx) LockPayment(ctx context.Context, id string) (*model.Payment, error) {
	p, ok := t.st.payments[id]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	return &p, nil
}

func (t *memTx) CancelPayment(ctx context.Context, id, reason string) error {
	p, ok := t.st.payments[id]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	p.IsCancelled, p.CancelledReason = true, reason
	t.st.payments[id] = p
	return nil
}

func (t *memTx) BookingPaid(ctx context.Context, bookingID string) (bool, error) {
	for _, p := range t.st.payments {
		if p.BookingID != nil && *p.BookingID == bookingID && !p.IsCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) ReplaceShiftMonth(ctx context.Context, staffID string, year int, month time.Month, shifts []model.ShiftWindow) error {
	prefix := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-")
	for k, w := range t.st.shifts {
		if w.StaffID == staffID && strings.HasPrefix(string(w.Date), prefix) {
			delete(t.st.shifts, k)
		}
	}
	for _, w := range shifts {
		w.ID = uuid.NewString()
		t.st.shifts[shiftKey(w.StaffID, w.Date)] = w
	}
	return nil
}

func (t *memTx) UpdateStaffWage(ctx context.Context, staffID string, wage int, from model.Date) error {
	s, ok := t.st.staff[staffID]
	if !ok {
		return repository.ErrStaffNotFound
	}
	s.HourlyWage = wage
	t.st.staff[staffID] = s
	t.st.wages = append(t.st.wages, model.WageChange{ID: uuid.NewString(), StaffID: staffID, HourlyWage: wage, EffectiveFrom: from})
	return nil
}

func (t *memTx) RecalculateShiftWages(ctx context.Context, staffID string, from model.Date, wage int) ([]model.Date, error) {
	var dates []model.Date
	for k, w := range t.st.shifts {
		if w.StaffID != staffID || w.Date < from {
			continue
		}
		w.HourlyWage = wage
		w.DailyWage = scheduling.DailyWage(w.Start, w.End, w.BreakMinutes, wage)
		t.st.shifts[k] = w
		dates = append(dates, w.Date)
	}
	slices.Sort(dates)
	return dates, nil
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lo.Map(p.events, func(ev queue.BookingEvent, _ int) string { return ev.Type })
}

var (
	_ Store           = (*memStore)(nil)
	_ BookingReader   = (*memStore)(nil)
	_ HistoryReader   = (*memStore)(nil)
	_ CatalogReader   = (*memStore)(nil)
	_ TicketReader    = (*memStore)(nil)
	_ Directory       = (*memStore)(nil)
	_ TicketPlans     = (*memStore)(nil)
	_ LedgerCustomers = (*memStore)(nil)
	_ StaffStore      = memStaff{}
	_ ShiftStore      = memShifts{}
)

// Fixture ids and the day the fixture's shifts are on.
const (
	day       = model.Date("2025-03-10")
	anna      = "st-anna"
	ken       = "st-ken"
	boss      = "st-boss"
	hana      = "cus-hana"
	taro      = "cus-taro"
	bodyCare  = "svc-body"
	facial    = "svc-face"
	headSpa   = "opt-head"
	footBath  = "opt-foot"
	spring    = "cpn-spring"
	trial     = "off-trial"
	fivePack  = "plan-five"
	hanaPack  = "tk-hana"
	hanaLast  = "tk-hana-last"
	taroPack  = "tk-taro"
	hanaPhone = "+819012345678"
)

func clk(s string) model.Clock { return model.MustClock(s) }

func clkp(s string) *model.Clock {
	c := model.MustClock(s)
	return &c
}

// fixture wires every service to one memStore seeded with a small salon.
type fixture struct {
	store    *memStore
	events   *recordingPublisher
	bookings *BookingService
	checkout *CheckoutService
	tickets  *TicketService
	shifts   *ShiftService
	staff    *StaffService
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := newMemStore()
	m.st.staff[anna] = model.Staff{ID: anna, Name: "Anna", Role: model.RoleTherapist, HourlyWage: 1500, TransportAllowance: 900, IsActive: true}
	m.st.staff[ken] = model.Staff{ID: ken, Name: "Ken", Role: model.RoleTherapist, HourlyWage: 1200, IsActive: true}
	m.st.staff[boss] = model.Staff{ID: boss, Name: "Boss", Role: model.RoleManager, IsActive: true}
	m.st.shifts[shiftKey(anna, day)] = model.ShiftWindow{ID: "sh-1", StaffID: anna, Date: day, Start: clk("10:00"), End: clk("18:00"), HourlyWage: 1500}
	m.st.shifts[shiftKey(ken, day)] = model.ShiftWindow{ID: "sh-2", StaffID: ken, Date: day, Start: clk("12:00"), End: clk("20:00"), HourlyWage: 1200}

	m.st.customers[hana] = model.Customer{ID: hana, LastName: "Sato", FirstName: "Hana", PhoneNumber: hanaPhone, BaseVisitCount: 2}
	m.st.customers[taro] = model.Customer{ID: taro, LastName: "Suzuki", FirstName: "Taro"}
	m.st.tickets[hanaPack] = model.CustomerTicket{ID: hanaPack, CustomerID: hana, PlanID: fivePack, ServiceID: bodyCare, PlanName: "Body x5",
		SessionsRemaining: 3, PurchaseDate: "2025-01-01", ExpiryDate: "2025-12-31", PurchasePrice: 25000, PaidAmount: 25000}
	m.st.tickets[hanaLast] = model.CustomerTicket{ID: hanaLast, CustomerID: hana, PlanID: fivePack, ServiceID: facial, PlanName: "Facial x5",
		SessionsRemaining: 1, PurchaseDate: "2025-01-01", ExpiryDate: "2025-12-31", PurchasePrice: 40000, PaidAmount: 40000}
	m.st.tickets[taroPack] = model.CustomerTicket{ID: taroPack, CustomerID: taro, PlanID: fivePack, ServiceID: bodyCare, PlanName: "Body x5",
		SessionsRemaining: 5, PurchaseDate: "2025-01-01", ExpiryDate: "2025-12-31", PurchasePrice: 25000, PaidAmount: 25000}

	m.services[bodyCare] = model.Service{ID: bodyCare, Name: "Body care", DurationMinutes: 60, Price: 6000, FreeOptionChoices: 1, IsActive: true}
	m.services[facial] = model.Service{ID: facial, Name: "Facial", DurationMinutes: 90, Price: 9000, IsActive: true}
	m.options[headSpa] = model.Option{ID: headSpa, Name: "Head spa", Category: "head", DurationMinutes: 15, Price: 1000, IsActive: true}
	m.options[footBath] = model.Option{ID: footBath, Name: "Foot bath", Category: "foot", DurationMinutes: 30, Price: 2000, IsActive: true}
	m.coupons[spring] = model.Coupon{ID: spring, Name: "Spring set", TotalDurationMinutes: lo.ToPtr(120), TotalPrice: 10000, FreeOptionCount: 2, IsActive: true}
	m.offers[trial] = model.LimitedOffer{ID: trial, Name: "Trial", SpecialPrice: 5000, TotalSessions: 1, IsActive: true}
	m.plans[fivePack] = model.TicketPlan{ID: fivePack, ServiceID: bodyCare, Name: "Body x5", TotalSessions: 5, Price: 25000, ValidityDays: 90,
		ServiceName: "Body care", ServiceUnitPrice: 6000}

	salon := config.SalonConfig{
		Beds: 2, Open: clk("10:00"), Close: clk("23:00"), SlotMinutes: 30,
		DefaultHourlyWage: 1500, DefaultTransport: 900, LedgerDir: t.TempDir(), TxRetries: 3,
	}
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	events := &recordingPublisher{}

	f := &fixture{store: m, events: events, now: now}
	f.bookings = NewBookingService(BookingDeps{
		Store:     m,
		Bookings:  m,
		History:   m,
		Catalog:   m,
		Tickets:   m,
		Directory: m,
		Events:    events,
		Salon:     salon,
		Log:       log,
		Now:       func() time.Time { return now },
	})
	f.checkout = NewCheckoutService(m, m, m, f.bookings, nil, log)
	f.checkout.now = func() time.Time { return now }
	f.tickets = NewTicketService(m, m, m, time.UTC)
	f.tickets.now = func() time.Time { return now }
	f.shifts = NewShiftService(m, memShifts{m}, memStaff{m}, m, salon)
	f.staff = NewStaffService(m, memStaff{m}, m, salon)
	return f
}

// book creates a confirmed booking and fails the test on error.
func (f *fixture) book(t *testing.T, req CreateBookingRequest) *model.Booking {
	t.Helper()
	if req.Date == "" {
		req.Date = day
	}
	b, err := f.bookings.Create(context.Background(), req)
	require.NoError(t, err)
	return b
}
