package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

type fakeAnalytics struct {
	counts map[model.BookingStatus]int
}

func (f fakeAnalytics) Sales(ctx context.Context, from, to model.Date) (*repository.SalesSummary, error) {
	return &repository.SalesSummary{From: from, To: to, Count: 2, Total: 15000}, nil
}

func (f fakeAnalytics) StatusCounts(ctx context.Context, from, to model.Date) (map[model.BookingStatus]int, error) {
	return f.counts, nil
}

func TestCancellations(t *testing.T) {
	tests := []struct {
		name   string
		counts map[model.BookingStatus]int
		rate   float64
		total  int
	}{
		{"none", nil, 0, 0},
		{"one in five", map[model.BookingStatus]int{model.StatusCompleted: 3, model.StatusConfirmed: 5, model.StatusCancelled: 1, model.StatusNoShow: 1}, 20, 2},
		{"one in three", map[model.BookingStatus]int{model.StatusCompleted: 2, model.StatusNoShow: 1}, 33.3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAnalyticsService(fakeAnalytics{counts: tt.counts})
			st, err := svc.Cancellations(context.Background(), "2025-03-01", "2025-03-31")
			require.NoError(t, err)
			assert.Equal(t, tt.rate, st.CancelRate)
			assert.Equal(t, tt.total, st.TotalCancels)
		})
	}
}

func TestAnalyticsRange(t *testing.T) {
	svc := NewAnalyticsService(fakeAnalytics{})
	_, err := svc.Summary(context.Background(), "2025-03-31", "2025-03-01")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Cancellations(context.Background(), "", "2025-03-01")
	assert.ErrorIs(t, err, ErrInvalidInput)

	sum, err := svc.Summary(context.Background(), "2025-03-01", "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, 15000, sum.Total)
}
