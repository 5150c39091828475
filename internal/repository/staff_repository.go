package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/salon-booking/internal/model"
)

// StaffRepo reads and writes the staff table and its wage history.
type StaffRepo struct {
	db *sql.DB
}

// NewStaffRepo returns a new StaffRepo bound to the given database.
func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{db: db} }

// DB exposes the underlying handle so services can open transactions.
func (r *StaffRepo) DB() *sql.DB { return r.db }

const staffColumns = `staff_id, name, color, role, hourly_wage, transport_allowance, is_active, created_at`

func scanStaff(row interface{ Scan(...any) error }) (model.Staff, error) {
	var s model.Staff
	err := row.Scan(&s.ID, &s.Name, &s.Color, &s.Role, &s.HourlyWage, &s.TransportAllowance, &s.IsActive, &s.CreatedAt)
	return s, err
}

// ListActive returns active staff ordered by creation time, which is
// also the column order of the calendar.
func (r *StaffRepo) ListActive(ctx context.Context) ([]model.Staff, error) {
	const q = `SELECT ` + staffColumns + ` FROM staff WHERE is_active = TRUE ORDER BY created_at, name`
	return r.list(ctx, q)
}

// ListAll returns every staff member including inactive ones.
func (r *StaffRepo) ListAll(ctx context.Context) ([]model.Staff, error) {
	const q = `SELECT ` + staffColumns + ` FROM staff ORDER BY created_at, name`
	return r.list(ctx, q)
}

func (r *StaffRepo) list(ctx context.Context, q string, args ...any) ([]model.Staff, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID returns ErrStaffNotFound when no row matches.
func (r *StaffRepo) GetByID(ctx context.Context, id string) (*model.Staff, error) {
	const q = `SELECT ` + staffColumns + ` FROM staff WHERE staff_id = ?`
	s, err := scanStaff(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByIDTx reads a staff member inside a transaction.
func (r *StaffRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (*model.Staff, error) {
	const q = `SELECT ` + staffColumns + ` FROM staff WHERE staff_id = ?`
	s, err := scanStaff(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a staff member, assigning an ID when empty.  A taken
// name yields ErrDuplicate.
func (r *StaffRepo) Create(ctx context.Context, s *model.Staff) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	const q = `INSERT INTO staff (staff_id, name, color, role, hourly_wage, transport_allowance, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.Name, s.Color, s.Role, s.HourlyWage, s.TransportAllowance, s.IsActive)
	if IsDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// Update overwrites the mutable profile columns.  The hourly wage is
// changed through UpdateWageTx so the history stays complete.
func (r *StaffRepo) Update(ctx context.Context, s *model.Staff) error {
	const q = `UPDATE staff SET name = ?, color = ?, role = ?, transport_allowance = ?, is_active = ? WHERE staff_id = ?`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.Color, s.Role, s.TransportAllowance, s.IsActive, s.ID)
	if IsDuplicate(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	return affected(res, ErrStaffNotFound)
}

// UpdateWageTx sets the staff wage and appends a wage history row.
func (r *StaffRepo) UpdateWageTx(ctx context.Context, tx *sql.Tx, staffID string, wage int, from model.Date) error {
	const upd = `UPDATE staff SET hourly_wage = ? WHERE staff_id = ?`
	res, err := tx.ExecContext(ctx, upd, wage, staffID)
	if err != nil {
		return err
	}
	if err := affected(res, ErrStaffNotFound); err != nil {
		return err
	}
	const ins = `INSERT INTO staff_wage_history (id, staff_id, hourly_wage, effective_from) VALUES (?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, ins, uuid.NewString(), staffID, wage, from)
	return err
}

// WageHistory lists wage changes newest first.
func (r *StaffRepo) WageHistory(ctx context.Context, staffID string) ([]model.WageChange, error) {
	const q = `SELECT id, staff_id, hourly_wage, effective_from, created_at
	           FROM staff_wage_history WHERE staff_id = ? ORDER BY effective_from DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.WageChange
	for rows.Next() {
		var w model.WageChange
		if err := rows.Scan(&w.ID, &w.StaffID, &w.HourlyWage, &w.EffectiveFrom, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// affected maps a zero-row update to notFound.
func affected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
