package domain

import "time"

type Flight struct {
	ID               string `json:"_id"`
	FlightNumber     string `json:"flightNumber"`
	DepartureAirport string `json:"departureAirport"`
	ArrivalAirport   string `json:"arrivalAirport"`
	FlightDate       string `json:"flightDate"`
	FlightTime       string `json:"flightTime"`
	AircraftType     string `json:"aircraftType,omitempty"`
	Duration         Number `json:"duration"`
	Price            Number `json:"price"`
	SeatAvailability Number `json:"seatAvailability"`
	UserEmail        string `json:"userEmail,omitempty"`
	UserImage        string `json:"userImage,omitempty"`
}

// Date reports the calendar day the flight departs on. ok is false when the
// record carries no date or one that cannot be parsed.
func (f Flight) Date() (CalendarDate, bool) {
	d, err := ParseCalendarDate(f.FlightDate)
	if err != nil {
		return CalendarDate{}, false
	}
	return d, true
}

// DepartsOnOrAfter reports whether the flight date is the same day as now
// (in now's location) or later. Undated flights never qualify.
func (f Flight) DepartsOnOrAfter(now time.Time) bool {
	d, ok := f.Date()
	if !ok {
		return false
	}
	return !d.Before(DateOf(now))
}
