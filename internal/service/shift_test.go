package service

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

func TestShiftUpsertPricesTheDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sh, err := f.shifts.Upsert(ctx, ShiftInput{StaffID: anna, Date: "2025-03-11", Start: clkp("10:00"), End: clkp("18:00"), BreakMinutes: 60})
	require.NoError(t, err)
	assert.Equal(t, 10500, sh.DailyWage)
	assert.Equal(t, 900, sh.TransportCost)
	assert.Equal(t, "work", sh.Type)

	sh, err = f.shifts.Upsert(ctx, ShiftInput{StaffID: ken, Date: "2025-03-11", Start: clkp("12:00"), End: clkp("14:30"), TransportCost: lo.ToPtr(500)})
	require.NoError(t, err)
	assert.Equal(t, 3000, sh.DailyWage)
	assert.Equal(t, 500, sh.TransportCost)

	assert.Contains(t, f.store.shiftsInvalidated, model.Date("2025-03-11"))

	month, err := f.shifts.Month(ctx, 2025, time.March, "")
	require.NoError(t, err)
	assert.Len(t, month, 4)
}

func TestShiftHolidayClearsTheDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sh, err := f.shifts.Upsert(ctx, ShiftInput{StaffID: anna, Date: day})
	require.NoError(t, err)
	assert.Nil(t, sh)

	shifts, err := f.store.ShiftsOn(ctx, day)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, ken, shifts[0].StaffID)

	// anna is now off and cannot be booked
	_, err = f.bookings.Create(ctx, CreateBookingRequest{CustomerID: hana, StaffID: anna, Date: day, Start: clk("10:00"), End: clkp("11:00")})
	assert.Error(t, err)
}

func TestShiftValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tests := []struct {
		name string
		in   ShiftInput
		want error
	}{
		{"only start", ShiftInput{StaffID: anna, Date: day, Start: clkp("10:00")}, ErrInvalidInput},
		{"inverted", ShiftInput{StaffID: anna, Date: day, Start: clkp("18:00"), End: clkp("10:00")}, ErrInvalidInput},
		{"negative break", ShiftInput{StaffID: anna, Date: day, Start: clkp("10:00"), End: clkp("18:00"), BreakMinutes: -5}, ErrInvalidInput},
		{"bad date", ShiftInput{StaffID: anna, Date: "2025-3-1", Start: clkp("10:00"), End: clkp("18:00")}, ErrInvalidInput},
		{"unknown staff", ShiftInput{StaffID: "st-x", Date: day, Start: clkp("10:00"), End: clkp("18:00")}, repository.ErrStaffNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.shifts.Upsert(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestShiftReplaceMonth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.shifts.ReplaceMonth(ctx, anna, 2025, time.March, []ShiftInput{
		{Date: "2025-03-03", Start: clkp("10:00"), End: clkp("16:00")},
		{Date: "2025-03-04", Start: clkp("13:00"), End: clkp("21:00"), BreakMinutes: 30},
		{Date: "2025-03-05"},
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	month, err := f.shifts.Month(ctx, 2025, time.March, anna)
	require.NoError(t, err)
	dates := lo.Map(month, func(s model.ShiftWindow, _ int) model.Date { return s.Date })
	assert.Equal(t, []model.Date{"2025-03-03", "2025-03-04"}, dates, "old shift on the 10th is gone")
	assert.Len(t, f.store.shiftsInvalidated, 31)

	others, err := f.shifts.Month(ctx, 2025, time.March, ken)
	require.NoError(t, err)
	assert.Len(t, others, 1)

	_, err = f.shifts.ReplaceMonth(ctx, anna, 2025, time.March, []ShiftInput{{Date: "2025-04-01", Start: clkp("10:00"), End: clkp("12:00")}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.shifts.ReplaceMonth(ctx, anna, 2025, time.March, []ShiftInput{{Date: "2025-03-03"}, {Date: "2025-03-03"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.shifts.ReplaceMonth(ctx, anna, 2025, 13, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStaffCreateAndWage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.staff.Create(ctx, StaffInput{Name: "  Mio ", Color: "#f9a8d4"})
	require.NoError(t, err)
	assert.Equal(t, "Mio", st.Name)
	assert.Equal(t, model.RoleTherapist, st.Role)
	assert.Equal(t, 1500, st.HourlyWage)
	assert.Equal(t, 900, st.TransportAllowance)
	assert.Equal(t, 1, f.store.staffInvalidated)

	_, err = f.staff.Create(ctx, StaffInput{Name: "Mio"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	_, err = f.staff.Create(ctx, StaffInput{Name: "Rin", Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	active, err := f.staff.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 4)

	updated, err := f.staff.UpdateWage(ctx, anna, 2000, "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2000, updated.HourlyWage)
	shifts, err := f.store.ShiftsOn(ctx, day)
	require.NoError(t, err)
	repriced, ok := lo.Find(shifts, func(s model.ShiftWindow) bool { return s.StaffID == anna })
	require.True(t, ok)
	assert.Equal(t, 16000, repriced.DailyWage)
	assert.Contains(t, f.store.shiftsInvalidated, day)

	history, err := f.staff.WageHistory(ctx, anna)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.Date("2025-03-01"), history[0].EffectiveFrom)

	_, err = f.staff.UpdateWage(ctx, anna, 0, "2025-03-01")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.staff.UpdateWage(ctx, "st-x", 1800, "2025-03-01")
	assert.ErrorIs(t, err, repository.ErrStaffNotFound)
}
