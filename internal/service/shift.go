package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/scheduling"
)

// ShiftStore is the shift persistence used outside transactions.
type ShiftStore interface {
	ListByMonth(ctx context.Context, year int, month time.Month, staffID string) ([]model.ShiftWindow, error)
	Upsert(ctx context.Context, s *model.ShiftWindow) error
	Delete(ctx context.Context, staffID string, date model.Date) error
}

// StaffLookup reads one staff member.
type StaffLookup interface {
	GetByID(ctx context.Context, id string) (*model.Staff, error)
}

// ShiftInput is one day of a staff member's schedule.  Leaving Start
// and End empty marks the day as a holiday.
type ShiftInput struct {
	StaffID       string       `json:"staff_id"`
	Date          model.Date   `json:"date"`
	Start         *model.Clock `json:"start_time"`
	End           *model.Clock `json:"end_time"`
	BreakMinutes  int          `json:"break_minutes"`
	TransportCost *int         `json:"transport_cost"`
	Type          string       `json:"type"`
	Notes         string       `json:"notes"`
}

// Holiday reports whether the input clears the day.
func (in ShiftInput) Holiday() bool { return in.Start == nil && in.End == nil }

// ShiftService maintains shift windows and keeps the directory cache
// in step with them.
type ShiftService struct {
	store  Store
	shifts ShiftStore
	staff  StaffLookup
	dir    Directory
	salon  config.SalonConfig
}

// NewShiftService returns a ShiftService.
func NewShiftService(store Store, shifts ShiftStore, staff StaffLookup, dir Directory, salon config.SalonConfig) *ShiftService {
	return &ShiftService{store: store, shifts: shifts, staff: staff, dir: dir, salon: salon}
}

// build validates an input against its staff member and fills in the
// wage snapshot.
func (s *ShiftService) build(in ShiftInput, staff *model.Staff) (model.ShiftWindow, error) {
	if _, err := model.ParseDate(string(in.Date)); err != nil {
		return model.ShiftWindow{}, invalidInput("bad date %q", in.Date)
	}
	if in.Start == nil || in.End == nil {
		return model.ShiftWindow{}, invalidInput("start and end are both required on a working day")
	}
	if err := scheduling.ValidateRange(*in.Start, *in.End); err != nil {
		return model.ShiftWindow{}, invalidInput("%s to %s is not a valid shift", in.Start, in.End)
	}
	if in.BreakMinutes < 0 {
		return model.ShiftWindow{}, invalidInput("break must not be negative")
	}
	wage := staff.HourlyWage
	if wage <= 0 {
		wage = s.salon.DefaultHourlyWage
	}
	transport := staff.TransportAllowance
	if transport <= 0 {
		transport = s.salon.DefaultTransport
	}
	if in.TransportCost != nil {
		transport = *in.TransportCost
	}
	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		typ = "work"
	}
	return model.ShiftWindow{
		StaffID:       staff.ID,
		Date:          in.Date,
		Start:         *in.Start,
		End:           *in.End,
		BreakMinutes:  in.BreakMinutes,
		TransportCost: transport,
		HourlyWage:    wage,
		DailyWage:     scheduling.DailyWage(*in.Start, *in.End, in.BreakMinutes, wage),
		Type:          typ,
		Notes:         in.Notes,
	}, nil
}

// Upsert writes or clears one day.  It returns nil for a holiday.
func (s *ShiftService) Upsert(ctx context.Context, in ShiftInput) (*model.ShiftWindow, error) {
	staff, err := s.staff.GetByID(ctx, in.StaffID)
	if err != nil {
		return nil, err
	}
	if in.Holiday() {
		if _, err := model.ParseDate(string(in.Date)); err != nil {
			return nil, invalidInput("bad date %q", in.Date)
		}
		if err := s.shifts.Delete(ctx, staff.ID, in.Date); err != nil {
			return nil, fmt.Errorf("delete shift: %w", err)
		}
		return nil, s.dir.InvalidateShifts(ctx, in.Date)
	}
	shift, err := s.build(in, staff)
	if err != nil {
		return nil, err
	}
	if err := s.shifts.Upsert(ctx, &shift); err != nil {
		return nil, fmt.Errorf("upsert shift: %w", err)
	}
	return &shift, s.dir.InvalidateShifts(ctx, in.Date)
}

// ReplaceMonth overwrites a staff member's whole month in one
// transaction.  Days without an entry, and holiday entries, end up
// without a shift.
func (s *ShiftService) ReplaceMonth(ctx context.Context, staffID string, year int, month time.Month, days []ShiftInput) ([]model.ShiftWindow, error) {
	if month < time.January || month > time.December {
		return nil, invalidInput("bad month %d", month)
	}
	staff, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	seen := map[model.Date]bool{}
	var shifts []model.ShiftWindow
	for _, in := range days {
		if !strings.HasPrefix(string(in.Date), prefix) {
			return nil, invalidInput("%s is outside %04d-%02d", in.Date, year, month)
		}
		if seen[in.Date] {
			return nil, invalidInput("%s appears twice", in.Date)
		}
		seen[in.Date] = true
		if in.Holiday() {
			continue
		}
		shift, err := s.build(in, staff)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	err = s.store.InTx(ctx, func(tx Tx) error {
		return tx.ReplaceShiftMonth(ctx, staff.ID, year, month, shifts)
	})
	if err != nil {
		return nil, fmt.Errorf("replace month: %w", err)
	}
	return shifts, s.dir.InvalidateShifts(ctx, model.MonthDates(year, month)...)
}

// Month lists the shifts of a month, for one staff member or for all
// when staffID is empty.
func (s *ShiftService) Month(ctx context.Context, year int, month time.Month, staffID string) ([]model.ShiftWindow, error) {
	if month < time.January || month > time.December {
		return nil, invalidInput("bad month %d", month)
	}
	return s.shifts.ListByMonth(ctx, year, month, staffID)
}
