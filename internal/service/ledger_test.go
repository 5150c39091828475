package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/scheduling"
)

func TestLedgerAppendsMonthlyRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dir := t.TempDir()
	ledger := NewLedgerService(dir, f.store, f.store, nil)

	b := f.book(t, CreateBookingRequest{CustomerID: hana, StaffID: anna, Start: clk("10:00"), Menu: scheduling.ServiceMenu(bodyCare)})
	first, err := ledger.Record(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-sales.xlsx", first.File)
	assert.Equal(t, 14, first.Row)
	assert.Equal(t, 3, first.VisitCount, "two carried-over visits plus this one")

	_, err = f.checkout.Checkout(ctx, CheckoutRequest{BookingID: &b.ID, StaffID: anna, ServiceID: bodyCare})
	require.NoError(t, err)
	second, err := ledger.Record(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, second.Row)
	assert.Equal(t, 4, second.VisitCount)

	wb, err := excelize.OpenFile(filepath.Join(dir, first.File))
	require.NoError(t, err)
	defer wb.Close()
	cell := func(ref string) string {
		v, err := wb.GetCellValue(ledgerSheet, ref)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "予約日", cell("A13"))
	assert.Equal(t, "来店回数", cell("H13"))
	assert.Equal(t, "3月10日", cell("A14"))
	assert.Equal(t, "Sato Hana", cell("C14"))
	assert.Equal(t, "Anna", cell("E14"))
	assert.Equal(t, "3", cell("H14"))
	assert.Equal(t, "4", cell("H15"))
	assert.Empty(t, cell("A16"))
}

func TestLedgerSkipsScheduleBlocks(t *testing.T) {
	f := newFixture(t)
	ledger := NewLedgerService(t.TempDir(), f.store, f.store, nil)
	blk := f.book(t, CreateBookingRequest{Type: model.TypeSchedule, StaffID: anna, Start: clk("08:00"), End: clkp("09:00")})

	_, err := ledger.Record(context.Background(), blk.ID)
	assert.ErrorIs(t, err, scheduling.ErrInvalidSelection)
	_, err = ledger.Record(context.Background(), "bk-missing")
	assert.Error(t, err)
}

func TestLedgerFileName(t *testing.T) {
	name, err := LedgerFileName("2024-11-30")
	require.NoError(t, err)
	assert.Equal(t, "2024-11-sales.xlsx", name)
	_, err = LedgerFileName("30/11/2024")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
