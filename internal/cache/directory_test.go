package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/logs"
	"github.com/iliyamo/salon-booking/internal/model"
)

type fakeSource struct {
	staff      []model.Staff
	shifts     map[model.Date][]model.ShiftWindow
	staffLoads atomic.Int32
	shiftLoads atomic.Int32
}

func (f *fakeSource) ListActive(context.Context) ([]model.Staff, error) {
	f.staffLoads.Add(1)
	return f.staff, nil
}

func (f *fakeSource) ListByDate(_ context.Context, d model.Date) ([]model.ShiftWindow, error) {
	f.shiftLoads.Add(1)
	return f.shifts[d], nil
}

func newTestDirectory(t *testing.T) (*Directory, *fakeSource) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	src := &fakeSource{
		staff: []model.Staff{{ID: "a", Name: "Aoi", Role: model.RoleTherapist, IsActive: true}},
		shifts: map[model.Date][]model.ShiftWindow{
			"2024-06-01": {{StaffID: "a", Date: "2024-06-01", Start: model.MustClock("10:00"), End: model.MustClock("18:00")}},
		},
	}
	cfg := config.DirectoryCacheConfig{Enabled: true, Prefix: "test:dir"}
	return NewDirectory(rdb, cfg, src, src, logs.Discard()), src
}

func TestDirectoryReadsThroughOnce(t *testing.T) {
	d, src := newTestDirectory(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		staff, err := d.ActiveStaff(ctx)
		require.NoError(t, err)
		require.Len(t, staff, 1)
		assert.Equal(t, "Aoi", staff[0].Name)
	}
	assert.EqualValues(t, 1, src.staffLoads.Load())

	for i := 0; i < 2; i++ {
		shifts, err := d.ShiftsOn(ctx, "2024-06-01")
		require.NoError(t, err)
		require.Len(t, shifts, 1)
		assert.Equal(t, model.MustClock("18:00"), shifts[0].End)
	}
	assert.EqualValues(t, 1, src.shiftLoads.Load())
}

func TestDirectoryInvalidate(t *testing.T) {
	d, src := newTestDirectory(t)
	ctx := context.Background()

	_, err := d.ShiftsOn(ctx, "2024-06-01")
	require.NoError(t, err)
	src.shifts["2024-06-01"][0].End = model.MustClock("20:00")

	require.NoError(t, d.InvalidateShifts(ctx, "2024-06-01", "2024-06-02"))
	shifts, err := d.ShiftsOn(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, model.MustClock("20:00"), shifts[0].End)
	assert.EqualValues(t, 2, src.shiftLoads.Load())

	_, err = d.ActiveStaff(ctx)
	require.NoError(t, err)
	require.NoError(t, d.InvalidateStaff(ctx))
	_, err = d.ActiveStaff(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, src.staffLoads.Load())
}

func TestDirectoryEmptyDayIsCached(t *testing.T) {
	d, src := newTestDirectory(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		shifts, err := d.ShiftsOn(ctx, "2024-06-09")
		require.NoError(t, err)
		assert.Empty(t, shifts)
	}
	assert.EqualValues(t, 1, src.shiftLoads.Load())
}

func TestDirectoryWithoutRedis(t *testing.T) {
	src := &fakeSource{staff: []model.Staff{{ID: "a"}}}
	d := NewDirectory(nil, config.DirectoryCacheConfig{Enabled: true, Prefix: "x"}, src, src, nil)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := d.ActiveStaff(ctx)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, src.staffLoads.Load())
	assert.NoError(t, d.InvalidateStaff(ctx))
}

// refuseWatch fails every WATCH while letting other commands through.
type refuseWatch struct{}

func (refuseWatch) DialHook(next redis.DialHook) redis.DialHook { return next }

func (refuseWatch) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "watch" {
			err := errors.New("watch refused")
			cmd.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (refuseWatch) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestDirectoryFallsBackWhenWatchFails(t *testing.T) {
	d, src := newTestDirectory(t)
	d.rdb.AddHook(refuseWatch{})
	ctx := context.Background()

	staff, err := d.ActiveStaff(ctx)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.EqualValues(t, 1, src.staffLoads.Load())

	shifts, err := d.ShiftsOn(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Len(t, shifts, 1)
}

type brokenSource struct{}

func (brokenSource) ListActive(context.Context) ([]model.Staff, error) {
	return nil, errors.New("db down")
}

func (brokenSource) ListByDate(context.Context, model.Date) ([]model.ShiftWindow, error) {
	return nil, errors.New("db down")
}

func TestDirectoryReturnsLoadErrors(t *testing.T) {
	d, _ := newTestDirectory(t)
	d.staff, d.shifts = brokenSource{}, brokenSource{}

	_, err := d.ActiveStaff(context.Background())
	assert.EqualError(t, err, "db down")
}
