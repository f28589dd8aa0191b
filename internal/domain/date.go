package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid calendar date")

// CalendarDate is a day without time of day or zone. Two dates are equal when
// their year, month and day are equal.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseCalendarDate accepts YYYY-MM-DD or a timestamp. For timestamps the
// date is taken as written, without converting between zones.
func ParseCalendarDate(s string) (CalendarDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CalendarDate{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return CalendarDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

func (d CalendarDate) Before(o CalendarDate) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Time returns midnight of the day in UTC.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}
