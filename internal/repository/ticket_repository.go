package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/salon-booking/internal/model"
)

// TicketRepo manages customer tickets and their instalment payments.
// Session counters are only changed inside transactions that also hold
// a row lock on the ticket.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying handle.
func (r *TicketRepo) DB() *sql.DB { return r.db }

const ticketQuery = `SELECT t.customer_ticket_id, t.customer_id, t.plan_id, p.service_id, p.name,
                            t.sessions_remaining, t.purchase_date, t.expiry_date, t.purchase_price,
                            COALESCE((SELECT SUM(tp.amount_paid) FROM ticket_payments tp
                                      WHERE tp.customer_ticket_id = t.customer_ticket_id), 0)
                     FROM customer_tickets t
                     JOIN ticket_plans p ON p.plan_id = t.plan_id`

func scanTicket(row interface{ Scan(...any) error }) (model.CustomerTicket, error) {
	var t model.CustomerTicket
	err := row.Scan(&t.ID, &t.CustomerID, &t.PlanID, &t.ServiceID, &t.PlanName,
		&t.SessionsRemaining, &t.PurchaseDate, &t.ExpiryDate, &t.PurchasePrice, &t.PaidAmount)
	return t, err
}

// ByIDs loads the listed tickets without locking.
func (r *TicketRepo) ByIDs(ctx context.Context, ids []string) ([]model.CustomerTicket, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := ticketQuery + ` WHERE t.customer_ticket_id IN (` + placeholders(len(ids)) + `)`
	return queryList(ctx, r.db, q, scanTicket, stringArgs(ids)...)
}

// ByIDsForUpdateTx loads and row-locks the listed tickets.  Rows are
// locked in primary key order so two transactions touching the same
// tickets cannot deadlock on each other.
func (r *TicketRepo) ByIDsForUpdateTx(ctx context.Context, tx *sql.Tx, ids []string) ([]model.CustomerTicket, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := ticketQuery + ` WHERE t.customer_ticket_id IN (` + placeholders(len(ids)) + `)
	     ORDER BY t.customer_ticket_id FOR UPDATE`
	return queryList(ctx, tx, q, scanTicket, stringArgs(ids)...)
}

// ListByCustomer returns a customer's tickets, newest first.
func (r *TicketRepo) ListByCustomer(ctx context.Context, customerID string) ([]model.CustomerTicket, error) {
	q := ticketQuery + ` WHERE t.customer_id = ? ORDER BY t.purchase_date DESC`
	return queryList(ctx, r.db, q, scanTicket, customerID)
}

// AdjustSessionsTx adds delta to a ticket's remaining sessions.  A
// decrement never takes the counter below zero: when it would, the
// ticket is left untouched and ErrConflict is returned.
func (r *TicketRepo) AdjustSessionsTx(ctx context.Context, tx *sql.Tx, id string, delta int) error {
	const q = `UPDATE customer_tickets SET sessions_remaining = sessions_remaining + ?
	           WHERE customer_ticket_id = ? AND sessions_remaining + ? >= 0`
	res, err := tx.ExecContext(ctx, q, delta, id, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM customer_tickets WHERE customer_ticket_id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTicketNotFound
		}
		if err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// CreateTx inserts a purchased ticket.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.CustomerTicket) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	const q = `INSERT INTO customer_tickets
	           (customer_ticket_id, customer_id, plan_id, purchase_date, expiry_date, sessions_remaining, purchase_price)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, t.ID, t.CustomerID, t.PlanID, t.PurchaseDate, t.ExpiryDate, t.SessionsRemaining, t.PurchasePrice)
	return err
}

// AddPaymentTx records one instalment and sets its generated ID.
func (r *TicketRepo) AddPaymentTx(ctx context.Context, tx *sql.Tx, p *model.TicketPayment) error {
	const q = `INSERT INTO ticket_payments (customer_ticket_id, payment_date, amount_paid, payment_method, notes)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, p.CustomerTicketID, p.PaymentDate, p.AmountPaid, p.PaymentMethod, p.Notes)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

// Payments lists the instalments of a ticket in payment order.
func (r *TicketRepo) Payments(ctx context.Context, ticketID string) ([]model.TicketPayment, error) {
	const q = `SELECT id, customer_ticket_id, payment_date, amount_paid, payment_method, notes
	           FROM ticket_payments WHERE customer_ticket_id = ? ORDER BY payment_date, id`
	return queryList(ctx, r.db, q, func(row interface{ Scan(...any) error }) (model.TicketPayment, error) {
		var p model.TicketPayment
		var notes sql.NullString
		err := row.Scan(&p.ID, &p.CustomerTicketID, &p.PaymentDate, &p.AmountPaid, &p.PaymentMethod, &notes)
		p.Notes = notes.String
		return p, err
	}, ticketID)
}
