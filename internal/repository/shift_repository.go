package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/salon-booking/internal/model"
)

// ShiftRepo stores one working window per staff member and date.  The
// unique key (staff_id, date) makes every write an upsert.
type ShiftRepo struct {
	db *sql.DB
}

// NewShiftRepo returns a new ShiftRepo bound to the given database.
func NewShiftRepo(db *sql.DB) *ShiftRepo { return &ShiftRepo{db: db} }

// DB exposes the underlying handle.
func (r *ShiftRepo) DB() *sql.DB { return r.db }

const shiftColumns = `shift_id, staff_id, date, start_time, end_time, break_minutes, transport_cost, hourly_wage, daily_wage, type, notes`

func scanShift(row interface{ Scan(...any) error }) (model.ShiftWindow, error) {
	var s model.ShiftWindow
	var notes sql.NullString
	err := row.Scan(&s.ID, &s.StaffID, &s.Date, &s.Start, &s.End, &s.BreakMinutes,
		&s.TransportCost, &s.HourlyWage, &s.DailyWage, &s.Type, &notes)
	s.Notes = notes.String
	return s, err
}

func (r *ShiftRepo) list(ctx context.Context, q string, args ...any) ([]model.ShiftWindow, error) {
	return queryList(ctx, r.db, q, scanShift, args...)
}

// ListByDate returns every shift on the given date.
func (r *ShiftRepo) ListByDate(ctx context.Context, date model.Date) ([]model.ShiftWindow, error) {
	const q = `SELECT ` + shiftColumns + ` FROM shifts WHERE date = ? ORDER BY start_time`
	return r.list(ctx, q, date)
}

// ListByMonth returns the shifts of one month, optionally restricted to
// a single staff member when staffID is not empty.
func (r *ShiftRepo) ListByMonth(ctx context.Context, year int, month time.Month, staffID string) ([]model.ShiftWindow, error) {
	days := model.MonthDates(year, month)
	first, last := days[0], days[len(days)-1]
	if staffID == "" {
		const q = `SELECT ` + shiftColumns + ` FROM shifts WHERE date BETWEEN ? AND ? ORDER BY date, start_time`
		return r.list(ctx, q, first, last)
	}
	const q = `SELECT ` + shiftColumns + ` FROM shifts WHERE staff_id = ? AND date BETWEEN ? AND ? ORDER BY date`
	return r.list(ctx, q, staffID, first, last)
}

// Get returns the shift of a staff member on a date, or nil when the
// staff member is off.
func (r *ShiftRepo) Get(ctx context.Context, staffID string, date model.Date) (*model.ShiftWindow, error) {
	const q = `SELECT ` + shiftColumns + ` FROM shifts WHERE staff_id = ? AND date = ?`
	s, err := scanShift(r.db.QueryRowContext(ctx, q, staffID, date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetForShareTx reads a shift under a shared lock, so a concurrent
// shift edit waits for the booking transaction that relies on it.
func (r *ShiftRepo) GetForShareTx(ctx context.Context, tx *sql.Tx, staffID string, date model.Date) (*model.ShiftWindow, error) {
	const q = `SELECT ` + shiftColumns + ` FROM shifts WHERE staff_id = ? AND date = ? FOR SHARE`
	s, err := scanShift(tx.QueryRowContext(ctx, q, staffID, date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert writes a shift, replacing any existing window for the same
// staff member and date.
func (r *ShiftRepo) Upsert(ctx context.Context, s *model.ShiftWindow) error {
	return upsertShift(ctx, r.db, s)
}

func upsertShift(ctx context.Context, q querier, s *model.ShiftWindow) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	const ins = `INSERT INTO shifts (` + shiftColumns + `)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	             ON DUPLICATE KEY UPDATE start_time = VALUES(start_time), end_time = VALUES(end_time),
	               break_minutes = VALUES(break_minutes), transport_cost = VALUES(transport_cost),
	               hourly_wage = VALUES(hourly_wage), daily_wage = VALUES(daily_wage),
	               type = VALUES(type), notes = VALUES(notes)`
	_, err := q.ExecContext(ctx, ins, s.ID, s.StaffID, s.Date, s.Start, s.End, s.BreakMinutes,
		s.TransportCost, s.HourlyWage, s.DailyWage, s.Type, s.Notes)
	return err
}

// Delete removes the shift of a staff member on a date.  Deleting a
// missing shift is not an error.
func (r *ShiftRepo) Delete(ctx context.Context, staffID string, date model.Date) error {
	const q = `DELETE FROM shifts WHERE staff_id = ? AND date = ?`
	_, err := r.db.ExecContext(ctx, q, staffID, date)
	return err
}

// ReplaceMonthTx deletes a staff member's shifts for the month and
// inserts the given ones in their place.
func (r *ShiftRepo) ReplaceMonthTx(ctx context.Context, tx *sql.Tx, staffID string, year int, month time.Month, shifts []model.ShiftWindow) error {
	days := model.MonthDates(year, month)
	const del = `DELETE FROM shifts WHERE staff_id = ? AND date BETWEEN ? AND ?`
	if _, err := tx.ExecContext(ctx, del, staffID, days[0], days[len(days)-1]); err != nil {
		return err
	}
	for i := range shifts {
		if err := upsertShift(ctx, tx, &shifts[i]); err != nil {
			return err
		}
	}
	return nil
}

// RecalculateWagesTx rewrites hourly and daily wage on a staff member's
// shifts from the given date on and returns the dates it touched.  daily
// computes the daily wage of one shift at the new rate.
func (r *ShiftRepo) RecalculateWagesTx(ctx context.Context, tx *sql.Tx, staffID string, from model.Date, wage int, daily func(model.ShiftWindow) int) ([]model.Date, error) {
	const q = `SELECT ` + shiftColumns + ` FROM shifts WHERE staff_id = ? AND date >= ? FOR UPDATE`
	shifts, err := queryList(ctx, tx, q, scanShift, staffID, from)
	if err != nil {
		return nil, err
	}
	const upd = `UPDATE shifts SET hourly_wage = ?, daily_wage = ? WHERE shift_id = ?`
	dates := make([]model.Date, 0, len(shifts))
	for _, s := range shifts {
		s.HourlyWage = wage
		if _, err := tx.ExecContext(ctx, upd, wage, daily(s), s.ID); err != nil {
			return nil, err
		}
		dates = append(dates, s.Date)
	}
	return dates, nil
}
