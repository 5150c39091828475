package service

import (
	"context"
	"math"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// AnalyticsStore runs the report queries.
type AnalyticsStore interface {
	Sales(ctx context.Context, from, to model.Date) (*repository.SalesSummary, error)
	StatusCounts(ctx context.Context, from, to model.Date) (map[model.BookingStatus]int, error)
}

// CancelStats summarizes lost bookings over a range.  Cancelled bookings
// were called off in advance; no-shows were not.
type CancelStats struct {
	From          model.Date `json:"from"`
	To            model.Date `json:"to"`
	TotalBookings int        `json:"total_bookings"`
	Cancelled     int        `json:"cancelled"`
	NoShow        int        `json:"no_show"`
	TotalCancels  int        `json:"total_cancels"`
	CancelRate    float64    `json:"cancel_rate"` // percent, one decimal
}

// AnalyticsService serves the sales and cancellation reports.
type AnalyticsService struct {
	store AnalyticsStore
}

// NewAnalyticsService returns an AnalyticsService.
func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

func checkRange(from, to model.Date) error {
	if _, err := model.ParseDate(string(from)); err != nil {
		return invalidInput("bad from date %q", from)
	}
	if _, err := model.ParseDate(string(to)); err != nil {
		return invalidInput("bad to date %q", to)
	}
	if to < from {
		return invalidInput("range %s..%s is inverted", from, to)
	}
	return nil
}

// Summary returns sales totals between from and to, inclusive.
func (s *AnalyticsService) Summary(ctx context.Context, from, to model.Date) (*repository.SalesSummary, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return s.store.Sales(ctx, from, to)
}

// Cancellations counts cancelled and no-show bookings between from and
// to, inclusive, and their share of all bookings.
func (s *AnalyticsService) Cancellations(ctx context.Context, from, to model.Date) (*CancelStats, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	counts, err := s.store.StatusCounts(ctx, from, to)
	if err != nil {
		return nil, err
	}
	st := &CancelStats{
		From:      from,
		To:        to,
		Cancelled: counts[model.StatusCancelled],
		NoShow:    counts[model.StatusNoShow],
	}
	for _, n := range counts {
		st.TotalBookings += n
	}
	st.TotalCancels = st.Cancelled + st.NoShow
	if st.TotalBookings > 0 {
		st.CancelRate = math.Round(float64(st.TotalCancels)*1000/float64(st.TotalBookings)) / 10
	}
	return st, nil
}
