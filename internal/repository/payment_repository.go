package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/salon-booking/internal/model"
)

// PaymentRepo stores checkout payments and their option lines.
// Payments are never deleted; cancelling one flips is_cancelled.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `payment_id, customer_id, booking_id, staff_id, service_id, service_name, service_price,
                        service_duration, payment_type, ticket_id, ticket_session_used, coupon_id, limited_offer_id,
                        service_subtotal, options_total, discount_amount, total_amount, payment_method,
                        cash_amount, card_amount, notes, is_cancelled, cancelled_reason, payment_date`

func scanPayment(row interface{ Scan(...any) error }) (model.Payment, error) {
	var (
		p                                      model.Payment
		booking, service, ticket, coupon, offr sql.NullString
		notes                                  sql.NullString
	)
	err := row.Scan(&p.ID, &p.CustomerID, &booking, &p.StaffID, &service, &p.ServiceName, &p.ServicePrice,
		&p.ServiceDuration, &p.PaymentType, &ticket, &p.TicketSessionUsed, &coupon, &offr,
		&p.ServiceSubtotal, &p.OptionsTotal, &p.DiscountAmount, &p.TotalAmount, &p.PaymentMethod,
		&p.CashAmount, &p.CardAmount, &notes, &p.IsCancelled, &p.CancelledReason, &p.PaymentDate)
	p.BookingID = ptrString(booking)
	p.ServiceID = ptrString(service)
	p.TicketID = ptrString(ticket)
	p.CouponID = ptrString(coupon)
	p.LimitedOfferID = ptrString(offr)
	p.Notes = notes.String
	return p, err
}

// CreateTx inserts a payment and its option lines.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now()
	}
	const q = `INSERT INTO payments (` + paymentColumns + `)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, p.ID, p.CustomerID, nullString(p.BookingID), p.StaffID, nullString(p.ServiceID),
		p.ServiceName, p.ServicePrice, p.ServiceDuration, p.PaymentType, nullString(p.TicketID), p.TicketSessionUsed,
		nullString(p.CouponID), nullString(p.LimitedOfferID), p.ServiceSubtotal, p.OptionsTotal, p.DiscountAmount,
		p.TotalAmount, p.PaymentMethod, p.CashAmount, p.CardAmount, p.Notes, p.IsCancelled, p.CancelledReason, p.PaymentDate)
	if err != nil {
		return err
	}
	if len(p.Options) == 0 {
		return nil
	}
	query := `INSERT INTO payment_options (payment_id, option_id, option_name, option_category, price, duration_minutes, quantity, is_free) VALUES `
	args := make([]any, 0, len(p.Options)*8)
	for i, o := range p.Options {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args, p.ID, o.OptionID, o.Name, o.Category, o.Price, o.DurationMinutes, o.Quantity, o.IsFree)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// GetForUpdateTx locks one payment.
func (r *PaymentRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = ? FOR UPDATE`
	p, err := scanPayment(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CancelTx marks a payment cancelled.
func (r *PaymentRepo) CancelTx(ctx context.Context, tx *sql.Tx, id, reason string) error {
	const q = `UPDATE payments SET is_cancelled = TRUE, cancelled_at = NOW(), cancelled_reason = ? WHERE payment_id = ?`
	res, err := tx.ExecContext(ctx, q, reason, id)
	if err != nil {
		return err
	}
	return affected(res, ErrPaymentNotFound)
}

// ExistsForBookingTx reports whether a live payment settles the booking.
func (r *PaymentRepo) ExistsForBookingTx(ctx context.Context, tx *sql.Tx, bookingID string) (bool, error) {
	const q = `SELECT COUNT(*) FROM payments WHERE booking_id = ? AND is_cancelled = FALSE`
	var n int
	err := tx.QueryRowContext(ctx, q, bookingID).Scan(&n)
	return n > 0, err
}

// ListByDate returns the payments taken on a date, cancelled included.
func (r *PaymentRepo) ListByDate(ctx context.Context, date model.Date) ([]model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE DATE(payment_date) = ? ORDER BY payment_date`
	return queryList(ctx, r.db, q, scanPayment, date)
}
