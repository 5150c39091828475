package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/salon-booking/internal/model"
)

// CustomerRepo provides access to the customers table and the derived
// visit statistics.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo returns a new CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerColumns = `customer_id, last_name, first_name, last_name_kana, first_name_kana,
                         phone_number, email, base_visit_count, notes, created_at`

func scanCustomer(row interface{ Scan(...any) error }) (model.Customer, error) {
	var c model.Customer
	var notes sql.NullString
	err := row.Scan(&c.ID, &c.LastName, &c.FirstName, &c.LastNameKana, &c.FirstNameKana,
		&c.PhoneNumber, &c.Email, &c.BaseVisitCount, &notes, &c.CreatedAt)
	c.Notes = notes.String
	return c, err
}

// Create inserts a customer outside of any transaction.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	return createCustomer(ctx, r.db, c)
}

// CreateTx inserts a customer as part of a larger write, such as a
// booking that registers its customer inline.
func (r *CustomerRepo) CreateTx(ctx context.Context, tx *sql.Tx, c *model.Customer) error {
	return createCustomer(ctx, tx, c)
}

func createCustomer(ctx context.Context, q querier, c *model.Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	const ins = `INSERT INTO customers (customer_id, last_name, first_name, last_name_kana, first_name_kana,
	                                    phone_number, email, base_visit_count, notes)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := q.ExecContext(ctx, ins, c.ID, c.LastName, c.FirstName, c.LastNameKana, c.FirstNameKana,
		c.PhoneNumber, c.Email, c.BaseVisitCount, c.Notes)
	return err
}

// GetByID returns ErrCustomerNotFound when no row matches.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	return getCustomer(ctx, r.db, `SELECT `+customerColumns+` FROM customers WHERE customer_id = ?`, id)
}

// FindByPhoneTx looks a customer up by normalized phone number.
func (r *CustomerRepo) FindByPhoneTx(ctx context.Context, tx *sql.Tx, phone string) (*model.Customer, error) {
	return getCustomer(ctx, tx, `SELECT `+customerColumns+` FROM customers WHERE phone_number = ? ORDER BY created_at LIMIT 1`, phone)
}

func getCustomer(ctx context.Context, q querier, query string, arg any) (*model.Customer, error) {
	c, err := scanCustomer(q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Search matches an exact phone number or a name / kana prefix.  At most
// limit rows are returned.
func (r *CustomerRepo) Search(ctx context.Context, phone, name string, limit int) ([]model.Customer, error) {
	var (
		where []string
		args  []any
	)
	if phone != "" {
		where = append(where, `phone_number = ?`)
		args = append(args, phone)
	}
	if name = strings.TrimSpace(name); name != "" {
		like := escapeLike(name) + "%"
		where = append(where, `(last_name LIKE ? OR first_name LIKE ? OR last_name_kana LIKE ? OR first_name_kana LIKE ?
		                        OR CONCAT(last_name, ' ', first_name) LIKE ?)`)
		args = append(args, like, like, like, like, like)
	}
	if len(where) == 0 {
		return nil, nil
	}
	q := `SELECT ` + customerColumns + ` FROM customers WHERE ` + strings.Join(where, " OR ") +
		` ORDER BY last_name_kana, first_name_kana LIMIT ?`
	args = append(args, limit)
	return queryList(ctx, r.db, q, scanCustomer, args...)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// PaidVisitDays counts distinct days with a non-cancelled payment.
func (r *CustomerRepo) PaidVisitDays(ctx context.Context, customerID string) (int, error) {
	const q = `SELECT COUNT(DISTINCT DATE(payment_date)) FROM payments WHERE customer_id = ? AND is_cancelled = FALSE`
	var n int
	err := r.db.QueryRowContext(ctx, q, customerID).Scan(&n)
	return n, err
}

// Visit is one line of a customer's visit history.
type Visit struct {
	PaymentID   string      `json:"payment_id"`
	Date        model.Date  `json:"date"`
	StaffName   string      `json:"staff_name"`
	ServiceName string      `json:"service_name"`
	PaymentType string      `json:"payment_type"`
	TotalAmount int         `json:"total_amount"`
	BookingID   *string     `json:"booking_id"`
	Start       model.Clock `json:"start_time"`
}

// Visits lists non-cancelled payments of a customer, newest first.
func (r *CustomerRepo) Visits(ctx context.Context, customerID string, limit int) ([]Visit, error) {
	const q = `SELECT p.payment_id, DATE(p.payment_date), COALESCE(s.name, ''), p.service_name, p.payment_type,
	                  p.total_amount, p.booking_id, COALESCE(b.start_time, '00:00:00')
	           FROM payments p
	           LEFT JOIN staff s ON s.staff_id = p.staff_id
	           LEFT JOIN bookings b ON b.booking_id = p.booking_id
	           WHERE p.customer_id = ? AND p.is_cancelled = FALSE
	           ORDER BY p.payment_date DESC
	           LIMIT ?`
	return queryList(ctx, r.db, q, func(row interface{ Scan(...any) error }) (Visit, error) {
		var v Visit
		var booking sql.NullString
		err := row.Scan(&v.PaymentID, &v.Date, &v.StaffName, &v.ServiceName, &v.PaymentType, &v.TotalAmount, &booking, &v.Start)
		v.BookingID = ptrString(booking)
		return v, err
	}, customerID, limit)
}
