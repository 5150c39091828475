package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/scheduling"
)

// Repos groups the MySQL repositories.
type Repos struct {
	Staff     *repository.StaffRepo
	Shifts    *repository.ShiftRepo
	Catalog   *repository.CatalogRepo
	Customers *repository.CustomerRepo
	Tickets   *repository.TicketRepo
	Bookings  *repository.BookingRepo
	History   *repository.HistoryRepo
	Payments  *repository.PaymentRepo
	Analytics *repository.AnalyticsRepo
}

// NewRepos builds every repository on the same pool.
func NewRepos(db *sql.DB) Repos {
	return Repos{
		Staff:     repository.NewStaffRepo(db),
		Shifts:    repository.NewShiftRepo(db),
		Catalog:   repository.NewCatalogRepo(db),
		Customers: repository.NewCustomerRepo(db),
		Tickets:   repository.NewTicketRepo(db),
		Bookings:  repository.NewBookingRepo(db),
		History:   repository.NewHistoryRepo(db),
		Payments:  repository.NewPaymentRepo(db),
		Analytics: repository.NewAnalyticsRepo(db),
	}
}

// SQLStore is the MySQL Store.
type SQLStore struct {
	db       *sql.DB
	repos    Repos
	attempts int
}

// NewSQLStore returns a Store that retries deadlocked transactions up to
// attempts times.
func NewSQLStore(db *sql.DB, repos Repos, attempts int) *SQLStore {
	return &SQLStore{db: db, repos: repos, attempts: attempts}
}

func (s *SQLStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return repository.InTx(ctx, s.db, s.attempts, func(tx *sql.Tx) error {
		return fn(&sqlTx{tx: tx, r: s.repos})
	})
}

type sqlTx struct {
	tx *sql.Tx
	r  Repos
}

func (t *sqlTx) Staff(ctx context.Context, id string) (*model.Staff, error) {
	return t.r.Staff.GetByIDTx(ctx, t.tx, id)
}

func (t *sqlTx) Shift(ctx context.Context, staffID string, date model.Date) (*model.ShiftWindow, error) {
	return t.r.Shifts.GetForShareTx(ctx, t.tx, staffID, date)
}

func (t *sqlTx) LockStaffDay(ctx context.Context, staffID string, date model.Date) ([]model.Booking, error) {
	return t.r.Bookings.ListByStaffDateForUpdateTx(ctx, t.tx, staffID, date)
}

func (t *sqlTx) LockBedDay(ctx context.Context, bedID int, date model.Date) ([]model.Booking, error) {
	return t.r.Bookings.ListByBedDateForUpdateTx(ctx, t.tx, bedID, date)
}

func (t *sqlTx) LockBooking(ctx context.Context, id string) (*model.Booking, error) {
	return t.r.Bookings.GetForUpdateTx(ctx, t.tx, id)
}

func (t *sqlTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	return t.r.Bookings.CreateTx(ctx, t.tx, b)
}

func (t *sqlTx) UpdateBooking(ctx context.Context, b *model.Booking) error {
	return t.r.Bookings.UpdateTx(ctx, t.tx, b)
}

func (t *sqlTx) SetBookingStatus(ctx context.Context, id string, status model.BookingStatus) error {
	return t.r.Bookings.UpdateStatusTx(ctx, t.tx, id, status)
}

func (t *sqlTx) AddHistory(ctx context.Context, h *model.BookingHistory) error {
	return t.r.History.CreateTx(ctx, t.tx, h)
}

func (t *sqlTx) LockTickets(ctx context.Context, ids []string) ([]model.CustomerTicket, error) {
	return t.r.Tickets.ByIDsForUpdateTx(ctx, t.tx, ids)
}

func (t *sqlTx) AdjustTicketSessions(ctx context.Context, id string, delta int) error {
	return t.r.Tickets.AdjustSessionsTx(ctx, t.tx, id, delta)
}

func (t *sqlTx) InsertTicket(ctx context.Context, tk *model.CustomerTicket) error {
	return t.r.Tickets.CreateTx(ctx, t.tx, tk)
}

func (t *sqlTx) AddTicketPayment(ctx context.Context, p *model.TicketPayment) error {
	return t.r.Tickets.AddPaymentTx(ctx, t.tx, p)
}

func (t *sqlTx) FindCustomerByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	return t.r.Customers.FindByPhoneTx(ctx, t.tx, phone)
}

func (t *sqlTx) InsertCustomer(ctx context.Context, c *model.Customer) error {
	return t.r.Customers.CreateTx(ctx, t.tx, c)
}

func (t *sqlTx) InsertPayment(ctx context.Context, p *model.Payment) error {
	return t.r.Payments.CreateTx(ctx, t.tx, p)
}

func (t *sqlTx) LockPayment(ctx context.Context, id string) (*model.Payment, error) {
	return t.r.Payments.GetForUpdateTx(ctx, t.tx, id)
}

func (t *sqlTx) CancelPayment(ctx context.Context, id, reason string) error {
	return t.r.Payments.CancelTx(ctx, t.tx, id, reason)
}

func (t *sqlTx) BookingPaid(ctx context.Context, bookingID string) (bool, error) {
	return t.r.Payments.ExistsForBookingTx(ctx, t.tx, bookingID)
}

func (t *sqlTx) ReplaceShiftMonth(ctx context.Context, staffID string, year int, month time.Month, shifts []model.ShiftWindow) error {
	return t.r.Shifts.ReplaceMonthTx(ctx, t.tx, staffID, year, month, shifts)
}

func (t *sqlTx) UpdateStaffWage(ctx context.Context, staffID string, wage int, from model.Date) error {
	return t.r.Staff.UpdateWageTx(ctx, t.tx, staffID, wage, from)
}

func (t *sqlTx) RecalculateShiftWages(ctx context.Context, staffID string, from model.Date, wage int) ([]model.Date, error) {
	return t.r.Shifts.RecalculateWagesTx(ctx, t.tx, staffID, from, wage, func(s model.ShiftWindow) int {
		return scheduling.DailyWage(s.Start, s.End, s.BreakMinutes, wage)
	})
}
