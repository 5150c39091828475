package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/scheduling"
)

// StaffAvailability is one staff row of the grid.
type StaffAvailability struct {
	Staff model.Staff        `json:"staff"`
	Shift *model.ShiftWindow `json:"shift"`
	Cells []scheduling.Cell  `json:"cells"`
}

// BedAvailability is one bed row of the grid.
type BedAvailability struct {
	BedID int               `json:"bed_id"`
	Cells []scheduling.Cell `json:"cells"`
}

// Grid is the availability of a day at the salon's slot size.
type Grid struct {
	Date  model.Date          `json:"date"`
	Slots []model.Clock       `json:"slots"`
	Staff []StaffAvailability `json:"staff"`
	Beds  []BedAvailability   `json:"beds"`
}

// Availability builds the grid for a date from the cached staff and
// shifts and the day's bookings.
func (s *BookingService) Availability(ctx context.Context, date model.Date) (*Grid, error) {
	if _, err := model.ParseDate(string(date)); err != nil {
		return nil, invalidSelection("bad date %q", date)
	}
	var (
		staff    []model.Staff
		shifts   []model.ShiftWindow
		bookings []model.BookingDetail
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		staff, err = s.d.Directory.ActiveStaff(gctx)
		return wrap("load staff", err)
	})
	g.Go(func() error {
		var err error
		shifts, err = s.d.Directory.ShiftsOn(gctx, date)
		return wrap("load shifts", err)
	})
	g.Go(func() error {
		var err error
		bookings, err = s.d.Bookings.ListByDate(gctx, date)
		return wrap("load bookings", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plain := make([]model.Booking, len(bookings))
	for i := range bookings {
		plain[i] = bookings[i].Booking
	}
	slots := scheduling.Slots(s.d.Salon.Open, s.d.Salon.Close, s.d.Salon.SlotMinutes)
	day := scheduling.NewDayShifts(shifts)

	grid := &Grid{Date: date, Slots: slots}
	for _, st := range staff {
		shift := day.For(st.ID)
		grid.Staff = append(grid.Staff, StaffAvailability{
			Staff: st,
			Shift: shift,
			Cells: scheduling.StaffRow(st, shift, plain, slots),
		})
	}
	for bed := 1; bed <= s.d.Salon.Beds; bed++ {
		grid.Beds = append(grid.Beds, BedAvailability{BedID: bed, Cells: scheduling.BedRow(bed, plain, slots)})
	}
	return grid, nil
}

// CheckSlot reports whether a staff member is free for [start, end) on
// a date according to the cached calendar.  The answer is advisory; the
// commit path re-checks under locks.
func (s *BookingService) CheckSlot(ctx context.Context, staffID string, bedID *int, date model.Date, start, end model.Clock) error {
	if err := scheduling.ValidateRange(start, end); err != nil {
		return err
	}
	staff, err := s.d.Directory.ActiveStaff(ctx)
	if err != nil {
		return fmt.Errorf("load staff: %w", err)
	}
	var member *model.Staff
	for i := range staff {
		if staff[i].ID == staffID {
			member = &staff[i]
			break
		}
	}
	if member == nil {
		return fmt.Errorf("%w: staff %q", scheduling.ErrUnknownReference, staffID)
	}
	shifts, err := s.d.Directory.ShiftsOn(ctx, date)
	if err != nil {
		return fmt.Errorf("load shifts: %w", err)
	}
	if err := scheduling.CheckShift(*member, scheduling.NewDayShifts(shifts).For(staffID), start, end); err != nil {
		return err
	}
	details, err := s.d.Bookings.ListByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("load bookings: %w", err)
	}
	day := make([]model.Booking, len(details))
	for i := range details {
		day[i] = details[i].Booking
	}
	return scheduling.CheckConflicts(scheduling.Candidate{StaffID: staffID, BedID: bedID, Date: date, Start: start, End: end}, day, day)
}
