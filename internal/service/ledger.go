package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/salon-booking/internal/model"
)

// Workbook layout of the monthly visit ledger.
const (
	ledgerSheet     = "総合売上"
	ledgerHeaderRow = 13
	ledgerFirstRow  = 14
	ledgerNoStaff   = "未設定"
)

var ledgerColumns = []struct {
	col    string
	header string
	width  float64
}{
	{"A", "予約日", 12},
	{"C", "予約者名", 15},
	{"E", "担当者", 12},
	{"H", "来店回数", 10},
}

// LedgerCustomers is what the ledger needs to know about a customer.
type LedgerCustomers interface {
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	PaidVisitDays(ctx context.Context, customerID string) (int, error)
}

// LedgerEntry is one row written to the workbook.
type LedgerEntry struct {
	File         string     `json:"file"`
	Row          int        `json:"row"`
	Date         model.Date `json:"date"`
	CustomerName string     `json:"customer_name"`
	StaffName    string     `json:"staff_name"`
	VisitCount   int        `json:"visit_count"`
}

// LedgerService appends visits to one workbook per month.  Writes are
// serialized; the workbook is rewritten on every append.
type LedgerService struct {
	dir       string
	bookings  BookingReader
	customers LedgerCustomers
	log       *slog.Logger
	mu        sync.Mutex
}

// NewLedgerService returns a LedgerService writing under dir.
func NewLedgerService(dir string, bookings BookingReader, customers LedgerCustomers, log *slog.Logger) *LedgerService {
	if log == nil {
		log = slog.Default()
	}
	return &LedgerService{dir: dir, bookings: bookings, customers: customers, log: log}
}

// LedgerFileName names the workbook of the month containing date.
func LedgerFileName(date model.Date) (string, error) {
	t, err := date.Time()
	if err != nil {
		return "", invalidInput("bad date %q", date)
	}
	return fmt.Sprintf("%04d-%02d-sales.xlsx", t.Year(), int(t.Month())), nil
}

// Record appends the booking's visit to its month's workbook.  The
// visit count is the customer's carried-over visits, plus the distinct
// days with a live payment, plus this visit.
func (s *LedgerService) Record(ctx context.Context, bookingID string) (*LedgerEntry, error) {
	b, err := s.bookings.GetDetail(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Type != model.TypeBooking || b.CustomerID == nil {
		return nil, invalidSelection("booking %s has no customer", bookingID)
	}
	c, err := s.customers.GetByID(ctx, *b.CustomerID)
	if err != nil {
		return nil, err
	}
	days, err := s.customers.PaidVisitDays(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("count visits: %w", err)
	}
	name, err := LedgerFileName(b.Date)
	if err != nil {
		return nil, err
	}
	entry := &LedgerEntry{
		File:         name,
		Date:         b.Date,
		CustomerName: c.FullName(),
		StaffName:    b.StaffName,
		VisitCount:   c.BaseVisitCount + days + 1,
	}
	if entry.StaffName == "" {
		entry.StaffName = ledgerNoStaff
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	row, err := s.append(entry)
	if err != nil {
		return nil, fmt.Errorf("ledger %s: %w", name, err)
	}
	entry.Row = row
	s.log.Info("ledger row written", "file", name, "row", row, "booking_id", bookingID, "visit_count", entry.VisitCount)
	return entry, nil
}

func (s *LedgerService) append(e *LedgerEntry) (int, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, err
	}
	path := filepath.Join(s.dir, e.File)
	f, err := openWorkbook(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	row, err := nextEmptyRow(f)
	if err != nil {
		return 0, err
	}
	t, err := e.Date.Time()
	if err != nil {
		return 0, err
	}
	cells := map[string]any{
		"A": fmt.Sprintf("%d月%d日", int(t.Month()), t.Day()),
		"C": e.CustomerName,
		"E": e.StaffName,
		"H": e.VisitCount,
	}
	for col, v := range cells {
		if err := f.SetCellValue(ledgerSheet, col+strconv.Itoa(row), v); err != nil {
			return 0, err
		}
	}
	return row, f.SaveAs(path)
}

// openWorkbook opens the month's workbook, creating it with the header
// row when it does not exist yet.
func openWorkbook(path string) (*excelize.File, error) {
	f, err := excelize.OpenFile(path)
	switch {
	case err == nil:
		idx, err := f.GetSheetIndex(ledgerSheet)
		if err != nil {
			f.Close()
			return nil, err
		}
		if idx < 0 {
			if _, err := f.NewSheet(ledgerSheet); err != nil {
				f.Close()
				return nil, err
			}
			if err := writeHeader(f); err != nil {
				f.Close()
				return nil, err
			}
		}
		return f, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	f = excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeHeader(f); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeHeader(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Family: "游ゴシック", Size: 11, Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	for _, c := range ledgerColumns {
		cell := c.col + strconv.Itoa(ledgerHeaderRow)
		if err := f.SetCellValue(ledgerSheet, cell, c.header); err != nil {
			return err
		}
		if err := f.SetCellStyle(ledgerSheet, cell, cell, style); err != nil {
			return err
		}
		if err := f.SetColWidth(ledgerSheet, c.col, c.col, c.width); err != nil {
			return err
		}
	}
	return nil
}

// nextEmptyRow is the first row at or below the data start whose date
// cell is empty.
func nextEmptyRow(f *excelize.File) (int, error) {
	for row := ledgerFirstRow; ; row++ {
		v, err := f.GetCellValue(ledgerSheet, "A"+strconv.Itoa(row))
		if err != nil {
			return 0, err
		}
		if v == "" {
			return row, nil
		}
	}
}
