package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Deliver(ctx context.Context, msg Message) error {
	return m.Called(ctx, msg).Error(0)
}

func event(eventType string) kafka.BookingEvent {
	return kafka.BookingEvent{
		ID:            "e1",
		Type:          eventType,
		FlightNumber:  "BG-101",
		Route:         "Dhaka → Dubai",
		Name:          "Rina",
		Email:         "rina@example.com",
		SeatCount:     2,
		TotalCost:     900,
		TransactionID: "tx-1",
		OccurredAt:    time.Date(2024, 12, 5, 10, 30, 0, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	msg, ok := Render(event(kafka.EventBookingCreated))
	assert.True(t, ok)
	assert.Equal(t, "rina@example.com", msg.To)
	assert.Equal(t, "Booking confirmed: BG-101", msg.Subject)
	assert.Contains(t, msg.Body, "2 seat(s) on flight BG-101 (Dhaka → Dubai)")
	assert.Contains(t, msg.Body, "$900.00")
	assert.Contains(t, msg.Body, "Thursday, December 5, 2024 at 10:30 AM")

	msg, ok = Render(event(kafka.EventRefundApproved))
	assert.True(t, ok)
	assert.Equal(t, "Refund approved: BG-101", msg.Subject)

	_, ok = Render(event("something_else"))
	assert.False(t, ok)
}

func TestSender_Send(t *testing.T) {
	tr := &MockTransport{}
	tr.On("Deliver", mock.Anything, mock.MatchedBy(func(m Message) bool {
		return m.Subject == "Refund requested: BG-101"
	})).Return(nil)

	err := NewSender(tr).Send(context.Background(), event(kafka.EventRefundRequested))

	assert.NoError(t, err)
	tr.AssertExpectations(t)
}

func TestSender_SkipsMissingRecipient(t *testing.T) {
	tr := &MockTransport{}
	ev := event(kafka.EventBookingCreated)
	ev.Email = ""

	assert.NoError(t, NewSender(tr).Send(context.Background(), ev))
	tr.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestSender_TransportError(t *testing.T) {
	tr := &MockTransport{}
	tr.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	err := NewSender(tr).Send(context.Background(), event(kafka.EventBookingDeleted))

	assert.ErrorContains(t, err, "smtp down")
}

func TestNewSender_DefaultsToLog(t *testing.T) {
	assert.NoError(t, NewSender(nil).Send(context.Background(), event(kafka.EventBookingCreated)))
}
