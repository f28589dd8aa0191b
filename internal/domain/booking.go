package domain

import "time"

const (
	// BookingStatusRefund marks a booking whose owner asked for a refund.
	BookingStatusRefund = "refund"
	// RefundApproved is the refund flag value set once an admin approves.
	RefundApproved = "yes"
)

type BookingUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Booking struct {
	ID               string      `json:"_id,omitempty"`
	FlightID         string      `json:"flightId"`
	FlightNumber     string      `json:"flightNumber"`
	DepartureAirport string      `json:"departureAirport"`
	ArrivalAirport   string      `json:"arrivalAirport"`
	FlightDate       string      `json:"flightDate"`
	FlightTime       string      `json:"flightTime"`
	SeatCount        Number      `json:"seatCount"`
	TotalCost        Number      `json:"totalCost"`
	TransactionID    string      `json:"transactionId"`
	User             BookingUser `json:"user"`
	LoginPerson      string      `json:"loginPerson"`
	LoginUserImage   string      `json:"loginUserImage,omitempty"`
	Status           string      `json:"status,omitempty"`
	Refund           string      `json:"refund,omitempty"`
	CreatedAt        string      `json:"createdAt,omitempty"`
}

func (b Booking) RefundRequested() bool {
	return b.Status == BookingStatusRefund
}

func (b Booking) RefundApproved() bool {
	return b.Refund == RefundApproved
}

// Counted reports whether the booking still contributes to earnings.
func (b Booking) Counted() bool {
	return !b.RefundRequested() && !b.RefundApproved()
}

// Created parses CreatedAt. Unparseable values yield the zero time.
func (b Booking) Created() time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z07:00", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, b.CreatedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}
