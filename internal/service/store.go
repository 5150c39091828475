// Package service implements the salon operations on top of the
// scheduling rules and the MySQL repositories.  Writes that must be
// atomic go through Store.InTx; everything else reads through the small
// interfaces below so tests can substitute in-memory fakes.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/queue"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// Store opens transactions.  A transaction that fails with a transient
// lock error is retried from the start, so fn must not have side
// effects outside of tx.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the transactional view of the database.  Lock* methods take row
// locks that are held until the transaction ends.
type Tx interface {
	Staff(ctx context.Context, id string) (*model.Staff, error)
	Shift(ctx context.Context, staffID string, date model.Date) (*model.ShiftWindow, error)

	LockStaffDay(ctx context.Context, staffID string, date model.Date) ([]model.Booking, error)
	LockBedDay(ctx context.Context, bedID int, date model.Date) ([]model.Booking, error)
	LockBooking(ctx context.Context, id string) (*model.Booking, error)
	InsertBooking(ctx context.Context, b *model.Booking) error
	UpdateBooking(ctx context.Context, b *model.Booking) error
	SetBookingStatus(ctx context.Context, id string, status model.BookingStatus) error
	AddHistory(ctx context.Context, h *model.BookingHistory) error

	LockTickets(ctx context.Context, ids []string) ([]model.CustomerTicket, error)
	AdjustTicketSessions(ctx context.Context, id string, delta int) error
	InsertTicket(ctx context.Context, t *model.CustomerTicket) error
	AddTicketPayment(ctx context.Context, p *model.TicketPayment) error

	FindCustomerByPhone(ctx context.Context, phone string) (*model.Customer, error)
	InsertCustomer(ctx context.Context, c *model.Customer) error

	InsertPayment(ctx context.Context, p *model.Payment) error
	LockPayment(ctx context.Context, id string) (*model.Payment, error)
	CancelPayment(ctx context.Context, id, reason string) error
	BookingPaid(ctx context.Context, bookingID string) (bool, error)

	ReplaceShiftMonth(ctx context.Context, staffID string, year int, month time.Month, shifts []model.ShiftWindow) error
	UpdateStaffWage(ctx context.Context, staffID string, wage int, from model.Date) error
	RecalculateShiftWages(ctx context.Context, staffID string, from model.Date, wage int) ([]model.Date, error)
}

// Directory serves staff and shift reads, usually from cache.
type Directory interface {
	ActiveStaff(ctx context.Context) ([]model.Staff, error)
	ShiftsOn(ctx context.Context, date model.Date) ([]model.ShiftWindow, error)
	InvalidateStaff(ctx context.Context) error
	InvalidateShifts(ctx context.Context, dates ...model.Date) error
}

// CatalogReader loads menu items by id.  Missing ids are left out of the
// result rather than reported as errors.
type CatalogReader interface {
	ServicesByIDs(ctx context.Context, ids []string) ([]model.Service, error)
	OptionsByIDs(ctx context.Context, ids []string) ([]model.Option, error)
	CouponsByIDs(ctx context.Context, ids []string) ([]model.Coupon, error)
	LimitedOffersByIDs(ctx context.Context, ids []string) ([]model.LimitedOffer, error)
}

// TicketReader loads customer tickets without locking.
type TicketReader interface {
	ByIDs(ctx context.Context, ids []string) ([]model.CustomerTicket, error)
}

// BookingReader serves the calendar reads.
type BookingReader interface {
	ListByDate(ctx context.Context, date model.Date) ([]model.BookingDetail, error)
	GetDetail(ctx context.Context, id string) (*model.BookingDetail, error)
}

// HistoryReader returns the audit trail of a booking.
type HistoryReader interface {
	ListByBooking(ctx context.Context, bookingID string) ([]model.BookingHistory, error)
}

// EventPublisher delivers booking events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

var (
	_ CatalogReader = (*repository.CatalogRepo)(nil)
	_ TicketReader  = (*repository.TicketRepo)(nil)
	_ BookingReader = (*repository.BookingRepo)(nil)
	_ HistoryReader = (*repository.HistoryRepo)(nil)

	_ TicketPlans     = (*repository.CatalogRepo)(nil)
	_ CustomerLookup  = (*repository.CustomerRepo)(nil)
	_ LedgerCustomers = (*repository.CustomerRepo)(nil)
	_ AnalyticsStore  = (*repository.AnalyticsRepo)(nil)
	_ CustomerStore   = (*repository.CustomerRepo)(nil)
	_ CustomerTickets = (*repository.TicketRepo)(nil)
	_ ShiftStore      = (*repository.ShiftRepo)(nil)
	_ StaffStore      = (*repository.StaffRepo)(nil)
)
