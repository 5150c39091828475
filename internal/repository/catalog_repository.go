package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/salon-booking/internal/model"
)

// CatalogRepo reads menu items: services, options, coupons, limited
// offers and ticket plans.  The catalog is edited rarely, so only reads
// are exposed here.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo returns a new CatalogRepo bound to the given database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

const (
	serviceColumns = `service_id, name, category, duration_minutes, price, first_time_price, free_option_choices, is_active`
	optionColumns  = `option_id, name, category, duration_minutes, price, is_active`
	couponColumns  = `coupon_id, name, total_duration_minutes, total_price, free_option_count, is_active`
	offerColumns   = `offer_id, name, duration_minutes, special_price, total_sessions, is_ticket_type, is_active`
)

// queryList runs q and scans every row with scan.
func queryList[T any](ctx context.Context, db querier, q string, scan func(interface{ Scan(...any) error }) (T, error), args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanService(row interface{ Scan(...any) error }) (model.Service, error) {
	var s model.Service
	var first sql.NullInt64
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.DurationMinutes, &s.Price, &first, &s.FreeOptionChoices, &s.IsActive)
	s.FirstTimePrice = ptrInt(first)
	return s, err
}

func scanOption(row interface{ Scan(...any) error }) (model.Option, error) {
	var o model.Option
	err := row.Scan(&o.ID, &o.Name, &o.Category, &o.DurationMinutes, &o.Price, &o.IsActive)
	return o, err
}

func scanCoupon(row interface{ Scan(...any) error }) (model.Coupon, error) {
	var c model.Coupon
	var dur sql.NullInt64
	err := row.Scan(&c.ID, &c.Name, &dur, &c.TotalPrice, &c.FreeOptionCount, &c.IsActive)
	c.TotalDurationMinutes = ptrInt(dur)
	return c, err
}

func scanOffer(row interface{ Scan(...any) error }) (model.LimitedOffer, error) {
	var o model.LimitedOffer
	var dur sql.NullInt64
	err := row.Scan(&o.ID, &o.Name, &dur, &o.SpecialPrice, &o.TotalSessions, &o.IsTicketType, &o.IsActive)
	o.DurationMinutes = ptrInt(dur)
	return o, err
}

// ListServices returns active services ordered by category and name.
func (r *CatalogRepo) ListServices(ctx context.Context) ([]model.Service, error) {
	const q = `SELECT ` + serviceColumns + ` FROM services WHERE is_active = TRUE ORDER BY category, name`
	return queryList(ctx, r.db, q, scanService)
}

// ListOptions returns active options.
func (r *CatalogRepo) ListOptions(ctx context.Context) ([]model.Option, error) {
	const q = `SELECT ` + optionColumns + ` FROM options WHERE is_active = TRUE ORDER BY category, name`
	return queryList(ctx, r.db, q, scanOption)
}

// ListCoupons returns active coupons.
func (r *CatalogRepo) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	const q = `SELECT ` + couponColumns + ` FROM coupons WHERE is_active = TRUE ORDER BY name`
	return queryList(ctx, r.db, q, scanCoupon)
}

// ListLimitedOffers returns active limited offers.
func (r *CatalogRepo) ListLimitedOffers(ctx context.Context) ([]model.LimitedOffer, error) {
	const q = `SELECT ` + offerColumns + ` FROM limited_offers WHERE is_active = TRUE ORDER BY name`
	return queryList(ctx, r.db, q, scanOffer)
}

const planQuery = `SELECT p.plan_id, p.service_id, p.name, p.total_sessions, p.price, p.validity_days,
                          s.name, s.price
                   FROM ticket_plans p
                   JOIN services s ON s.service_id = p.service_id`

func scanPlan(row interface{ Scan(...any) error }) (model.TicketPlan, error) {
	var p model.TicketPlan
	err := row.Scan(&p.ID, &p.ServiceID, &p.Name, &p.TotalSessions, &p.Price, &p.ValidityDays, &p.ServiceName, &p.ServiceUnitPrice)
	return p, err
}

// ListTicketPlans returns every plan joined with its service.
func (r *CatalogRepo) ListTicketPlans(ctx context.Context) ([]model.TicketPlan, error) {
	return queryList(ctx, r.db, planQuery+` ORDER BY s.name, p.total_sessions`, scanPlan)
}

// PlanByID returns ErrPlanNotFound when the plan does not exist.
func (r *CatalogRepo) PlanByID(ctx context.Context, id string) (*model.TicketPlan, error) {
	p, err := scanPlan(r.db.QueryRowContext(ctx, planQuery+` WHERE p.plan_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// The ByIDs lookups below ignore the active flag: an existing booking
// may reference an item that has since been retired.  Missing ids are
// simply absent from the result.

// ServicesByIDs loads the listed services.
func (r *CatalogRepo) ServicesByIDs(ctx context.Context, ids []string) ([]model.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + serviceColumns + ` FROM services WHERE service_id IN (` + placeholders(len(ids)) + `)`
	return queryList(ctx, r.db, q, scanService, stringArgs(ids)...)
}

// OptionsByIDs loads the listed options.
func (r *CatalogRepo) OptionsByIDs(ctx context.Context, ids []string) ([]model.Option, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + optionColumns + ` FROM options WHERE option_id IN (` + placeholders(len(ids)) + `)`
	return queryList(ctx, r.db, q, scanOption, stringArgs(ids)...)
}

// CouponsByIDs loads the listed coupons.
func (r *CatalogRepo) CouponsByIDs(ctx context.Context, ids []string) ([]model.Coupon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + couponColumns + ` FROM coupons WHERE coupon_id IN (` + placeholders(len(ids)) + `)`
	return queryList(ctx, r.db, q, scanCoupon, stringArgs(ids)...)
}

// LimitedOffersByIDs loads the listed limited offers.
func (r *CatalogRepo) LimitedOffersByIDs(ctx context.Context, ids []string) ([]model.LimitedOffer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + offerColumns + ` FROM limited_offers WHERE offer_id IN (` + placeholders(len(ids)) + `)`
	return queryList(ctx, r.db, q, scanOffer, stringArgs(ids)...)
}
