package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/salon-booking/internal/model"
)

// HistoryRepo appends to and reads the booking audit trail.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo returns a new HistoryRepo bound to the given database.
func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

// CreateTx appends one audit row.
func (r *HistoryRepo) CreateTx(ctx context.Context, tx *sql.Tx, h *model.BookingHistory) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	const q = `INSERT INTO booking_history (history_id, booking_id, change_type, details) VALUES (?, ?, ?, ?)`
	var details any
	if len(h.Details) > 0 {
		details = string(h.Details)
	}
	_, err := tx.ExecContext(ctx, q, h.ID, h.BookingID, h.ChangeType, details)
	return err
}

// ListByBooking returns the audit rows of a booking, oldest first.
func (r *HistoryRepo) ListByBooking(ctx context.Context, bookingID string) ([]model.BookingHistory, error) {
	const q = `SELECT history_id, booking_id, change_type, details, created_at
	           FROM booking_history WHERE booking_id = ? ORDER BY created_at, history_id`
	return queryList(ctx, r.db, q, func(row interface{ Scan(...any) error }) (model.BookingHistory, error) {
		var h model.BookingHistory
		var details []byte
		err := row.Scan(&h.ID, &h.BookingID, &h.ChangeType, &details, &h.CreatedAt)
		h.Details = details
		return h, err
	}, bookingID)
}
