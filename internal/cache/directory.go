// Package cache keeps the staff list and the per-day shift windows in
// Redis.  Both are read on every calendar render and every booking, but
// change only when a manager edits staff or shifts, so entries carry no
// expiry and are dropped explicitly on write.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/model"
)

// StaffSource loads the active staff list from the database.
type StaffSource interface {
	ListActive(ctx context.Context) ([]model.Staff, error)
}

// ShiftSource loads the shifts of one date from the database.
type ShiftSource interface {
	ListByDate(ctx context.Context, date model.Date) ([]model.ShiftWindow, error)
}

// Directory is a read-through cache over StaffSource and ShiftSource.
// A nil Redis client or a disabled config turns it into a passthrough.
type Directory struct {
	rdb    *redis.Client
	prefix string
	staff  StaffSource
	shifts ShiftSource
	log    *slog.Logger
}

// NewDirectory builds a Directory.  rdb may be nil.
func NewDirectory(rdb *redis.Client, cfg config.DirectoryCacheConfig, staff StaffSource, shifts ShiftSource, log *slog.Logger) *Directory {
	if !cfg.Enabled {
		rdb = nil
	}
	if log == nil {
		log = slog.Default()
	}
	return &Directory{rdb: rdb, prefix: cfg.Prefix, staff: staff, shifts: shifts, log: log}
}

func (d *Directory) staffKey() string                { return d.prefix + ":staff:active" }
func (d *Directory) shiftKey(date model.Date) string { return d.prefix + ":shifts:" + string(date) }

// genKey is bumped by every invalidation of key.  Readers WATCH it while
// they load from the database so a load that raced with a write is
// never stored.
func genKey(key string) string { return key + ":gen" }

// ActiveStaff returns the active staff in calendar order.
func (d *Directory) ActiveStaff(ctx context.Context) ([]model.Staff, error) {
	return readThrough(ctx, d, d.staffKey(), func(ctx context.Context) ([]model.Staff, error) {
		return d.staff.ListActive(ctx)
	})
}

// ShiftsOn returns every shift window on the date.
func (d *Directory) ShiftsOn(ctx context.Context, date model.Date) ([]model.ShiftWindow, error) {
	return readThrough(ctx, d, d.shiftKey(date), func(ctx context.Context) ([]model.ShiftWindow, error) {
		return d.shifts.ListByDate(ctx, date)
	})
}

// InvalidateStaff drops the cached staff list.
func (d *Directory) InvalidateStaff(ctx context.Context) error {
	return d.invalidate(ctx, d.staffKey())
}

// InvalidateShifts drops the cached shift windows of the given dates.
func (d *Directory) InvalidateShifts(ctx context.Context, dates ...model.Date) error {
	keys := make([]string, 0, len(dates))
	for _, date := range dates {
		keys = append(keys, d.shiftKey(date))
	}
	return d.invalidate(ctx, keys...)
}

func (d *Directory) invalidate(ctx context.Context, keys ...string) error {
	if d.rdb == nil || len(keys) == 0 {
		return nil
	}
	_, err := d.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, k := range keys {
			p.Incr(ctx, genKey(k))
			p.Del(ctx, k)
		}
		return nil
	})
	return err
}

func readThrough[T any](ctx context.Context, d *Directory, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if d.rdb == nil {
		return load(ctx)
	}
	raw, err := d.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []T
		if jerr := json.Unmarshal(raw, &out); jerr == nil {
			return out, nil
		}
		d.log.Warn("directory cache: corrupt entry", "key", key)
	case !errors.Is(err, redis.Nil):
		// Redis trouble must not take the calendar down.
		d.log.Warn("directory cache: get failed", "key", key, "err", err)
		return load(ctx)
	}

	var (
		out     []T
		loaded  bool
		loadErr error
	)
	werr := d.rdb.Watch(ctx, func(tx *redis.Tx) error {
		if out, loadErr = load(ctx); loadErr != nil {
			return loadErr
		}
		loaded = true
		payload, jerr := json.Marshal(out)
		if jerr != nil {
			return jerr
		}
		_, perr := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, payload, 0)
			return nil
		})
		return perr
	}, genKey(key))
	switch {
	case werr == nil:
		return out, nil
	case loadErr != nil:
		return nil, loadErr
	case !loaded:
		d.log.Warn("directory cache: watch failed", "key", key, "err", werr)
		return load(ctx)
	case errors.Is(werr, redis.TxFailedErr):
		// A write landed during the load.  The value is still returned,
		// just not stored.
		return out, nil
	default:
		d.log.Warn("directory cache: set failed", "key", key, "err", werr)
		return out, nil
	}
}
