package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/salon-booking/internal/model"
)

// BookingRepo provides access to bookings and their link tables
// (booking_tickets, booking_limited_offers, booking_options).
//
// The ForUpdate readers lock every row of a (staff, date) or (bed, date)
// range through the idx_booking_staff_date and idx_booking_bed_date
// indexes.  InnoDB also takes gap locks on those index ranges, so a
// concurrent insert into the same range waits until the locking
// transaction ends.  This is what serializes two bookings competing for
// the same slot.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so services can open transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `b.booking_id, b.customer_id, b.staff_id, b.bed_id, b.date, b.start_time, b.end_time,
                        b.type, b.status, b.service_id, b.coupon_id, b.notes, b.created_at, b.updated_at`

// bookingFields returns the scan destinations of bookingColumns and a
// finish func that copies the nullable columns into b.
func bookingFields(b *model.Booking) ([]any, func()) {
	var (
		customer, service, coupon, notes sql.NullString
		bed                              sql.NullInt64
	)
	dest := []any{&b.ID, &customer, &b.StaffID, &bed, &b.Date, &b.Start, &b.End,
		&b.Type, &b.Status, &service, &coupon, &notes, &b.CreatedAt, &b.UpdatedAt}
	return dest, func() {
		b.CustomerID = ptrString(customer)
		b.BedID = ptrInt(bed)
		b.ServiceID = ptrString(service)
		b.CouponID = ptrString(coupon)
		b.Notes = notes.String
	}
}

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
	var b model.Booking
	dest, finish := bookingFields(&b)
	if err := row.Scan(dest...); err != nil {
		return b, err
	}
	finish()
	return b, nil
}

// ListByStaffDateForUpdateTx locks and returns every booking of a staff
// member on a date, whatever its status.
func (r *BookingRepo) ListByStaffDateForUpdateTx(ctx context.Context, tx *sql.Tx, staffID string, date model.Date) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.staff_id = ? AND b.date = ? FOR UPDATE`
	return queryList(ctx, tx, q, scanBooking, staffID, date)
}

// ListByBedDateForUpdateTx locks and returns every booking of a bed on a
// date, whatever its status.
func (r *BookingRepo) ListByBedDateForUpdateTx(ctx context.Context, tx *sql.Tx, bedID int, date model.Date) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.bed_id = ? AND b.date = ? FOR UPDATE`
	return queryList(ctx, tx, q, scanBooking, bedID, date)
}

// GetForUpdateTx locks one booking and loads its link rows.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.booking_id = ? FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	list := []*model.Booking{&b}
	if err := loadLinks(ctx, tx, list); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateTx inserts a booking and its link rows, assigning an ID when
// empty.  The caller must commit or rollback the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	const q = `INSERT INTO bookings (booking_id, customer_id, staff_id, service_id, coupon_id, date,
	                                 start_time, end_time, bed_id, type, status, notes)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, b.ID, nullString(b.CustomerID), b.StaffID, nullString(b.ServiceID),
		nullString(b.CouponID), b.Date, b.Start, b.End, nullInt(b.BedID), b.Type, b.Status, b.Notes)
	if err != nil {
		return err
	}
	return insertLinks(ctx, tx, b)
}

// UpdateTx rewrites the placement, menu and notes of a booking and
// replaces its link rows.  Status is changed only via UpdateStatusTx.
func (r *BookingRepo) UpdateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `UPDATE bookings SET customer_id = ?, staff_id = ?, service_id = ?, coupon_id = ?, date = ?,
	                               start_time = ?, end_time = ?, bed_id = ?, notes = ?
	           WHERE booking_id = ?`
	res, err := tx.ExecContext(ctx, q, nullString(b.CustomerID), b.StaffID, nullString(b.ServiceID),
		nullString(b.CouponID), b.Date, b.Start, b.End, nullInt(b.BedID), b.Notes, b.ID)
	if err != nil {
		return err
	}
	if err := affected(res, ErrBookingNotFound); err != nil {
		return err
	}
	for _, table := range []string{"booking_tickets", "booking_limited_offers", "booking_options"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE booking_id = ?`, b.ID); err != nil {
			return err
		}
	}
	return insertLinks(ctx, tx, b)
}

// UpdateStatusTx sets the status of a booking.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id string, status model.BookingStatus) error {
	const q = `UPDATE bookings SET status = ? WHERE booking_id = ?`
	res, err := tx.ExecContext(ctx, q, status, id)
	if err != nil {
		return err
	}
	return affected(res, ErrBookingNotFound)
}

func insertLinks(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	links := []struct {
		table, column string
		ids           []string
	}{
		{"booking_tickets", "customer_ticket_id", b.TicketIDs},
		{"booking_limited_offers", "offer_id", b.LimitedOfferIDs},
		{"booking_options", "option_id", b.OptionIDs},
	}
	for _, l := range links {
		if len(l.ids) == 0 {
			continue
		}
		query := `INSERT INTO ` + l.table + ` (booking_id, ` + l.column + `) VALUES `
		args := make([]any, 0, len(l.ids)*2)
		for i, id := range l.ids {
			if i > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, b.ID, id)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

// loadLinks fills TicketIDs, LimitedOfferIDs and OptionIDs of the given
// bookings with one query per link table.
func loadLinks(ctx context.Context, q querier, bookings []*model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	byID := make(map[string]*model.Booking, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}
	in := placeholders(len(ids))
	links := []struct {
		query  string
		target func(*model.Booking) *[]string
	}{
		{`SELECT booking_id, customer_ticket_id FROM booking_tickets WHERE booking_id IN (` + in + `) ORDER BY customer_ticket_id`,
			func(b *model.Booking) *[]string { return &b.TicketIDs }},
		{`SELECT booking_id, offer_id FROM booking_limited_offers WHERE booking_id IN (` + in + `) ORDER BY offer_id`,
			func(b *model.Booking) *[]string { return &b.LimitedOfferIDs }},
		{`SELECT booking_id, option_id FROM booking_options WHERE booking_id IN (` + in + `) ORDER BY option_id`,
			func(b *model.Booking) *[]string { return &b.OptionIDs }},
	}
	for _, l := range links {
		rows, err := q.QueryContext(ctx, l.query, stringArgs(ids)...)
		if err != nil {
			return err
		}
		for rows.Next() {
			var bookingID, linked string
			if err := rows.Scan(&bookingID, &linked); err != nil {
				rows.Close()
				return err
			}
			if b, ok := byID[bookingID]; ok {
				dst := l.target(b)
				*dst = append(*dst, linked)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
	}
	return nil
}

const detailQuery = `SELECT ` + bookingColumns + `,
                            COALESCE(CONCAT(c.last_name, ' ', c.first_name), ''), COALESCE(c.phone_number, ''),
                            s.name, s.color, COALESCE(sv.name, ''), COALESCE(cp.name, '')
                     FROM bookings b
                     JOIN staff s ON s.staff_id = b.staff_id
                     LEFT JOIN customers c ON c.customer_id = b.customer_id
                     LEFT JOIN services sv ON sv.service_id = b.service_id
                     LEFT JOIN coupons cp ON cp.coupon_id = b.coupon_id`

func scanDetail(row interface{ Scan(...any) error }) (model.BookingDetail, error) {
	var d model.BookingDetail
	dest, finish := bookingFields(&d.Booking)
	dest = append(dest, &d.CustomerName, &d.PhoneNumber, &d.StaffName, &d.StaffColor, &d.ServiceName, &d.CouponName)
	if err := row.Scan(dest...); err != nil {
		return d, err
	}
	finish()
	return d, nil
}

// ListByDate returns every booking on a date with display names and
// link ids, ordered by start time.
func (r *BookingRepo) ListByDate(ctx context.Context, date model.Date) ([]model.BookingDetail, error) {
	list, err := queryList(ctx, r.db, detailQuery+` WHERE b.date = ? ORDER BY b.start_time, s.created_at`, scanDetail, date)
	if err != nil {
		return nil, err
	}
	ptrs := make([]*model.Booking, len(list))
	for i := range list {
		ptrs[i] = &list[i].Booking
	}
	if err := loadLinks(ctx, r.db, ptrs); err != nil {
		return nil, err
	}
	return list, nil
}

// GetDetail returns ErrBookingNotFound when no row matches.
func (r *BookingRepo) GetDetail(ctx context.Context, id string) (*model.BookingDetail, error) {
	d, err := scanDetail(r.db.QueryRowContext(ctx, detailQuery+` WHERE b.booking_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := loadLinks(ctx, r.db, []*model.Booking{&d.Booking}); err != nil {
		return nil, err
	}
	return &d, nil
}
