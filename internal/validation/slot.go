package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Wire layouts for the date and time halves of a booking.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	clockLayoutSeconds = "15:04:05"
)

// ErrMalformedSlot is returned when a date or time field cannot be parsed.
var ErrMalformedSlot = errors.New("malformed date or time")

// ParseSlot combines startDate+startTime and endDate+endTime in loc.
// Times are accepted as HH:MM or HH:MM:SS.
func ParseSlot(startDate, startTime, endDate, endTime string, loc *time.Location) (start, end time.Time, err error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err = combine(startDate, startTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	end, err = combine(endDate, endTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}
	return start, end, nil
}

func combine(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrMalformedSlot, date)
	}

	clock = strings.TrimSpace(clock)
	layout := ClockLayout
	if strings.Count(clock, ":") == 2 {
		layout = clockLayoutSeconds
	}
	c, err := time.Parse(layout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q", ErrMalformedSlot, clock)
	}

	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc), nil
}

// SplitSlot is the inverse of ParseSlot, rendering an instant as date and clock strings in loc.
// Seconds are only rendered when non-zero.
func SplitSlot(t time.Time, loc *time.Location) (date, clock string) {
	if loc != nil {
		t = t.In(loc)
	}
	layout := ClockLayout
	if t.Second() != 0 {
		layout = clockLayoutSeconds
	}
	return t.Format(DateLayout), t.Format(layout)
}
