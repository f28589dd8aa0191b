// Package timefmt renders flight dates and times for display.
package timefmt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
)

var ErrInvalidClock = errors.New("invalid clock time")

// Clock12 turns a 24-hour "HH:mm" value into "h:mm AM/PM". Midnight is 12 AM.
func Clock12(hhmm string) (string, error) {
	h, m, err := parseClock(hhmm)
	if err != nil {
		return "", err
	}
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	hour := h % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, m, period), nil
}

// ValidClock reports whether s is a 24-hour "HH:mm" time.
func ValidClock(s string) bool {
	_, _, err := parseClock(s)
	return err == nil
}

func parseClock(s string) (int, int, error) {
	hour, minute, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(hour)
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(minute)
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return h, m, nil
}

// LongDate renders "December 5, 2024".
func LongDate(d domain.CalendarDate) string {
	return d.Time().Format("January 2, 2006")
}

// Stamp renders booking creation times, e.g.
// "Thursday, December 5, 2024 at 10:30 AM".
func Stamp(t time.Time) string {
	return t.Format("Monday, January 2, 2006 at 03:04 PM")
}

// FlightDisplay holds the human-readable date and time of a flight. Fields
// are empty when the source value does not parse.
type FlightDisplay struct {
	Date string
	Time string
}

func ForFlight(f domain.Flight) FlightDisplay {
	var out FlightDisplay
	if d, ok := f.Date(); ok {
		out.Date = LongDate(d)
	}
	if c, err := Clock12(f.FlightTime); err == nil {
		out.Time = c
	}
	return out
}
