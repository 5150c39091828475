package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/model"
)

// StaffStore is the staff persistence used outside transactions.
type StaffStore interface {
	StaffLookup
	ListAll(ctx context.Context) ([]model.Staff, error)
	Create(ctx context.Context, s *model.Staff) error
	WageHistory(ctx context.Context, staffID string) ([]model.WageChange, error)
}

// StaffInput is the writable part of a staff member.
type StaffInput struct {
	Name               string          `json:"name"`
	Color              string          `json:"color"`
	Role               model.StaffRole `json:"role"`
	HourlyWage         int             `json:"hourly_wage"`
	TransportAllowance int             `json:"transport_allowance"`
}

// StaffService manages staff members and their wages.
type StaffService struct {
	store Store
	staff StaffStore
	dir   Directory
	salon config.SalonConfig
}

// NewStaffService returns a StaffService.
func NewStaffService(store Store, staff StaffStore, dir Directory, salon config.SalonConfig) *StaffService {
	return &StaffService{store: store, staff: staff, dir: dir, salon: salon}
}

// Active lists the active staff in calendar order.
func (s *StaffService) Active(ctx context.Context) ([]model.Staff, error) {
	return s.dir.ActiveStaff(ctx)
}

// All lists every staff member including inactive ones.
func (s *StaffService) All(ctx context.Context) ([]model.Staff, error) {
	return s.staff.ListAll(ctx)
}

// Create adds a staff member.  Wage and transport fall back to the
// salon defaults.
func (s *StaffService) Create(ctx context.Context, in StaffInput) (*model.Staff, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalidInput("name is required")
	}
	role := in.Role
	if role == "" {
		role = model.RoleTherapist
	}
	if !role.Valid() {
		return nil, invalidInput("unknown role %q", in.Role)
	}
	if in.HourlyWage < 0 || in.TransportAllowance < 0 {
		return nil, invalidInput("wage and transport must not be negative")
	}
	st := &model.Staff{
		Name:               name,
		Color:              strings.TrimSpace(in.Color),
		Role:               role,
		HourlyWage:         in.HourlyWage,
		TransportAllowance: in.TransportAllowance,
		IsActive:           true,
	}
	if st.HourlyWage == 0 {
		st.HourlyWage = s.salon.DefaultHourlyWage
	}
	if st.TransportAllowance == 0 {
		st.TransportAllowance = s.salon.DefaultTransport
	}
	if err := s.staff.Create(ctx, st); err != nil {
		return nil, fmt.Errorf("create staff: %w", err)
	}
	return st, s.dir.InvalidateStaff(ctx)
}

// UpdateWage changes a staff member's hourly wage from the given date.
// Shifts on or after that date are re-priced in the same transaction.
func (s *StaffService) UpdateWage(ctx context.Context, staffID string, wage int, from model.Date) (*model.Staff, error) {
	if wage <= 0 {
		return nil, invalidInput("hourly wage must be positive")
	}
	if _, err := model.ParseDate(string(from)); err != nil {
		return nil, invalidInput("bad effective date %q", from)
	}
	var touched []model.Date
	err := s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.UpdateStaffWage(ctx, staffID, wage, from); err != nil {
			return err
		}
		var err error
		touched, err = tx.RecalculateShiftWages(ctx, staffID, from, wage)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := s.dir.InvalidateStaff(ctx); err != nil {
		return nil, err
	}
	if err := s.dir.InvalidateShifts(ctx, touched...); err != nil {
		return nil, err
	}
	return s.staff.GetByID(ctx, staffID)
}

// WageHistory lists wage changes newest first.
func (s *StaffService) WageHistory(ctx context.Context, staffID string) ([]model.WageChange, error) {
	if _, err := s.staff.GetByID(ctx, staffID); err != nil {
		return nil, err
	}
	return s.staff.WageHistory(ctx, staffID)
}
