package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/salon-booking/internal/model"
)

// AnalyticsRepo runs the aggregate queries behind the reports.  Ranges
// are inclusive on both ends.
type AnalyticsRepo struct {
	db *sql.DB
}

// NewAnalyticsRepo returns a new AnalyticsRepo bound to the given database.
func NewAnalyticsRepo(db *sql.DB) *AnalyticsRepo { return &AnalyticsRepo{db: db} }

// SalesSummary aggregates non-cancelled payments.
type SalesSummary struct {
	From          model.Date     `json:"from"`
	To            model.Date     `json:"to"`
	Count         int            `json:"count"`
	Total         int            `json:"total"`
	Cash          int            `json:"cash"`
	Card          int            `json:"card"`
	Discount      int            `json:"discount"`
	Customers     int            `json:"customers"`
	ByPaymentType map[string]int `json:"by_payment_type"`
}

// Sales returns totals for payments between from and to.
func (r *AnalyticsRepo) Sales(ctx context.Context, from, to model.Date) (*SalesSummary, error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(SUM(cash_amount), 0),
	                  COALESCE(SUM(card_amount), 0), COALESCE(SUM(discount_amount), 0), COUNT(DISTINCT customer_id)
	           FROM payments
	           WHERE is_cancelled = FALSE AND DATE(payment_date) BETWEEN ? AND ?`
	s := &SalesSummary{From: from, To: to, ByPaymentType: map[string]int{}}
	err := r.db.QueryRowContext(ctx, q, from, to).Scan(&s.Count, &s.Total, &s.Cash, &s.Card, &s.Discount, &s.Customers)
	if err != nil {
		return nil, err
	}
	const byType = `SELECT payment_type, SUM(total_amount) FROM payments
	                WHERE is_cancelled = FALSE AND DATE(payment_date) BETWEEN ? AND ?
	                GROUP BY payment_type`
	rows, err := r.db.QueryContext(ctx, byType, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		var total int
		if err := rows.Scan(&t, &total); err != nil {
			return nil, err
		}
		s.ByPaymentType[t] = total
	}
	return s, rows.Err()
}

// StatusCounts counts customer bookings by status between from and to.
// Schedule blocks are not bookings and are left out.
func (r *AnalyticsRepo) StatusCounts(ctx context.Context, from, to model.Date) (map[model.BookingStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM bookings
	           WHERE type = 'booking' AND date BETWEEN ? AND ?
	           GROUP BY status`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[model.BookingStatus]int{}
	for rows.Next() {
		var st model.BookingStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}
