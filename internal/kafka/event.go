package kafka

import (
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/google/uuid"
)

const (
	EventBookingCreated  = "booking_created"
	EventRefundRequested = "refund_requested"
	EventRefundApproved  = "refund_approved"
	EventBookingDeleted  = "booking_deleted"
)

// BookingEvent is the message written to the booking and notification topics.
type BookingEvent struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	BookingID     string    `json:"booking_id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	FlightID      string    `json:"flight_id,omitempty"`
	FlightNumber  string    `json:"flight_number,omitempty"`
	Route         string    `json:"route,omitempty"`
	Name          string    `json:"name,omitempty"`
	Email         string    `json:"email"`
	SeatCount     int       `json:"seat_count,omitempty"`
	TotalCost     float64   `json:"total_cost,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewBookingEvent snapshots b into an event of the given type.
func NewBookingEvent(eventType string, b domain.Booking, at time.Time) BookingEvent {
	email := b.LoginPerson
	if email == "" {
		email = b.User.Email
	}
	ev := BookingEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		BookingID:     b.ID,
		TransactionID: b.TransactionID,
		FlightID:      b.FlightID,
		FlightNumber:  b.FlightNumber,
		Name:          b.User.Name,
		Email:         email,
		SeatCount:     b.SeatCount.Int(),
		TotalCost:     b.TotalCost.Float64(),
		OccurredAt:    at.UTC(),
	}
	if b.DepartureAirport != "" || b.ArrivalAirport != "" {
		ev.Route = b.DepartureAirport + " → " + b.ArrivalAirport
	}
	return ev
}

// Key picks the partition key: booking id, else transaction id.
func (e BookingEvent) Key() string {
	if e.BookingID != "" {
		return e.BookingID
	}
	return e.TransactionID
}
