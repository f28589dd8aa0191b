package directory

import (
	"strings"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
)

// Filter returns the flights matching c as a new slice. The input is never
// modified, and an all-empty c yields a copy of every record.
func Filter(flights []domain.Flight, c domain.SearchCriteria) []domain.Flight {
	origin := strings.ToLower(c.Origin)
	destination := strings.ToLower(c.Destination)

	out := make([]domain.Flight, 0, len(flights))
	for _, f := range flights {
		if !containsFold(f.DepartureAirport, origin) {
			continue
		}
		if !containsFold(f.ArrivalAirport, destination) {
			continue
		}
		if c.Date != nil {
			d, ok := f.Date()
			if !ok || d != *c.Date {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

// Matches reports whether a single flight satisfies c.
func Matches(f domain.Flight, c domain.SearchCriteria) bool {
	return len(Filter([]domain.Flight{f}, c)) == 1
}

// Upcoming keeps flights departing today or later, relative to now's location.
func Upcoming(flights []domain.Flight, now time.Time) []domain.Flight {
	out := make([]domain.Flight, 0, len(flights))
	for _, f := range flights {
		if f.DepartsOnOrAfter(now) {
			out = append(out, f)
		}
	}
	return out
}

// MatchFlightNumber is the admin list search: case-insensitive substring on
// the flight number. An empty term matches everything.
func MatchFlightNumber(flightNumber, term string) bool {
	return containsFold(flightNumber, strings.ToLower(term))
}

// containsFold expects needle already lowercased. An empty needle matches
// any haystack; an empty haystack matches only an empty needle.
func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), needle)
}
