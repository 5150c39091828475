package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day expressed as minutes after midnight.  Values at
// or past 24:00 are representable on purpose: end times are produced by
// adding durations to a start time and are never clamped, so the caller
// decides what to do with a range that crosses midnight.
type Clock int

// Midnight is the first instant of the next day (24:00).
const Midnight Clock = 24 * 60

// ErrInvalidClock is returned when a string cannot be parsed as HH:MM.
var ErrInvalidClock = errors.New("invalid time of day")

// ParseClock accepts "H:MM", "HH:MM" and "HH:MM:SS".  Seconds are
// ignored.  Hours may exceed 23 so stored end times such as 24:30 round
// trip.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock(h*60 + m), nil
}

// MustClock is ParseClock for constants and tests.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Add returns the clock shifted by the given number of minutes.
func (c Clock) Add(minutes int) Clock { return c + Clock(minutes) }

// Minutes returns the number of minutes after midnight.
func (c Clock) Minutes() int { return int(c) }

// String renders the clock as HH:MM without wrapping past 24:00.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Scan reads a MySQL TIME column ("HH:MM:SS").
func (c *Clock) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return c.scanString(string(v))
	case string:
		return c.scanString(v)
	case time.Time:
		*c = Clock(v.Hour()*60 + v.Minute())
		return nil
	case nil:
		*c = 0
		return nil
	}
	return fmt.Errorf("%w: unsupported scan type %T", ErrInvalidClock, src)
}

func (c *Clock) scanString(s string) error {
	v, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Value writes the clock as a TIME literal.
func (c Clock) Value() (driver.Value, error) {
	return c.String() + ":00", nil
}

// DateLayout is the wire and storage layout of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar date in YYYY-MM-DD form.  It scans from both DATE
// columns decoded by the driver (time.Time) and raw strings.
type Date string

// ParseDate validates s and returns it as a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(t.Format(DateLayout)), nil
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date { return Date(t.Format(DateLayout)) }

// Time parses the date at midnight UTC.
func (d Date) Time() (time.Time, error) { return time.Parse(DateLayout, string(d)) }

// AddDays returns the date shifted by n days.  An unparsable date is
// returned unchanged.
func (d Date) AddDays(n int) Date {
	t, err := d.Time()
	if err != nil {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

func (d Date) String() string { return string(d) }

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	case nil:
		*d = ""
		return nil
	}
	return fmt.Errorf("unsupported date scan type %T", src)
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	v, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Date) Value() (driver.Value, error) { return string(d), nil }

// MonthDates lists every date of the given month in order.
func MonthDates(year int, month time.Month) []Date {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	out := make([]Date, 0, 31)
	for t := first; t.Month() == month; t = t.AddDate(0, 0, 1) {
		out = append(out, DateOf(t))
	}
	return out
}
