package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/logging"
	"github.com/Domenick1991/flightdesk/internal/timefmt"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Transport delivers a rendered message.
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

// LogTransport writes messages to the structured log instead of mailing them.
type LogTransport struct{}

func (LogTransport) Deliver(_ context.Context, msg Message) error {
	logging.Info("email sent", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}

type Sender struct {
	transport Transport
}

func NewSender(transport Transport) *Sender {
	if transport == nil {
		transport = LogTransport{}
	}
	return &Sender{transport: transport}
}

// Send renders event into a notification. Events without a recipient are
// dropped.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if strings.TrimSpace(event.Email) == "" {
		logging.Warn("booking event has no recipient", "event_id", event.ID, "type", event.Type)
		return nil
	}
	msg, ok := Render(event)
	if !ok {
		logging.Debug("no template for booking event", "type", event.Type)
		return nil
	}
	if err := s.transport.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("deliver %s to %s: %w", event.Type, event.Email, err)
	}
	return nil
}

// Render builds the notification for event. ok is false for event types that
// have no notification.
func Render(event kafka.BookingEvent) (Message, bool) {
	flight := event.FlightNumber
	if event.Route != "" {
		flight += " (" + event.Route + ")"
	}
	when := timefmt.Stamp(event.OccurredAt)

	var subject, body string
	switch event.Type {
	case kafka.EventBookingCreated:
		subject = "Booking confirmed: " + event.FlightNumber
		body = fmt.Sprintf("Hi %s, your booking for %d seat(s) on flight %s is confirmed. Total paid: $%.2f. Transaction %s. %s.",
			greetingName(event), event.SeatCount, flight, event.TotalCost, event.TransactionID, when)
	case kafka.EventRefundRequested:
		subject = "Refund requested: " + event.FlightNumber
		body = fmt.Sprintf("Hi %s, we received your refund request for flight %s. An administrator will review it. %s.",
			greetingName(event), flight, when)
	case kafka.EventRefundApproved:
		subject = "Refund approved: " + event.FlightNumber
		body = fmt.Sprintf("Hi %s, your refund of $%.2f for flight %s has been approved. %s.",
			greetingName(event), event.TotalCost, flight, when)
	case kafka.EventBookingDeleted:
		subject = "Booking removed: " + event.FlightNumber
		body = fmt.Sprintf("Hi %s, your booking for flight %s was removed by an administrator. %s.",
			greetingName(event), flight, when)
	default:
		return Message{}, false
	}
	return Message{To: event.Email, Subject: subject, Body: body}, true
}

func greetingName(event kafka.BookingEvent) string {
	if event.Name != "" {
		return event.Name
	}
	return event.Email
}
