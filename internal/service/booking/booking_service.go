package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightdesk/internal/directory"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/logging"
	"github.com/Domenick1991/flightdesk/internal/remote"
	"github.com/Domenick1991/flightdesk/internal/service"
)

var (
	// ErrDuplicateSubmission is returned while a booking with the same
	// transaction id is held by the submission lock.
	ErrDuplicateSubmission = errors.New("booking already submitted for this transaction")
	ErrBookingNotFound     = fmt.Errorf("booking: %w", remote.ErrNotFound)
)

type BookingUseCase interface {
	Create(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	History(ctx context.Context, email string) ([]domain.Booking, error)
	RefundNotifications(ctx context.Context, email string) ([]domain.Booking, error)
	RequestRefund(ctx context.Context, id string) (*domain.Booking, error)
	PendingRefunds(ctx context.Context) ([]domain.Booking, error)
	ApproveRefund(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, term string) ([]domain.Booking, error)
	Update(ctx context.Context, id string, input UpdateBookingInput) error
	Delete(ctx context.Context, id string) error
}

// Remote is the part of the flight API the service calls.
type Remote interface {
	GetFlight(ctx context.Context, id string) (*domain.Flight, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	CreateBooking(ctx context.Context, booking domain.Booking) (remote.WriteResult, error)
	UpdateBooking(ctx context.Context, id string, fields any) (remote.WriteResult, error)
	DeleteBooking(ctx context.Context, id string) error
	RequestRefund(ctx context.Context, id string) (remote.WriteResult, error)
	ApproveRefund(ctx context.Context, id string) (remote.WriteResult, error)
}

type Cache interface {
	AcquireSubmissionLock(ctx context.Context, transactionID string, ttl time.Duration) (bool, error)
	ReleaseSubmissionLock(ctx context.Context, transactionID string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// EventObserver is told whether each event publication succeeded.
type EventObserver interface {
	BookingEvent(eventType string, err error)
}

type BookingService struct {
	remote             Remote
	cache              Cache
	producer           Producer
	observer           EventObserver
	bookingTopic       string
	notificationsTopic string
	lockTTL            time.Duration
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithEventObserver(o EventObserver) BookingServiceOption {
	return func(s *BookingService) {
		s.observer = o
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	api Remote,
	cache Cache,
	producer Producer,
	bookingTopic string,
	lockTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		remote:       api,
		cache:        cache,
		producer:     producer,
		bookingTopic: bookingTopic,
		lockTTL:      lockTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateBookingInput struct {
	FlightID       string `json:"flightId"`
	SeatCount      int    `json:"seatCount"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	TransactionID  string `json:"transactionId"`
	LoginPerson    string `json:"-"`
	LoginUserImage string `json:"loginUserImage"`
}

func (in CreateBookingInput) validate() error {
	p := service.Problems{}
	p.Require("flightId", in.FlightID)
	p.Check(in.SeatCount >= 1, "seatCount", "must be at least 1")
	p.Require("name", in.Name)
	p.Require("email", in.Email)
	p.Require("transactionId", in.TransactionID)
	return p.Err()
}

// UpdateBookingInput is the admin "edit booking" form.
type UpdateBookingInput struct {
	FlightNumber     string  `json:"flightNumber"`
	UserEmail        string  `json:"userEmail"`
	DepartureAirport string  `json:"departureAirport"`
	ArrivalAirport   string  `json:"arrivalAirport"`
	FlightDate       string  `json:"flightDate"`
	FlightTime       string  `json:"flightTime"`
	TotalCost        float64 `json:"totalCost"`
}

func (in UpdateBookingInput) validate() error {
	p := service.Problems{}
	p.Require("flightNumber", in.FlightNumber)
	p.Require("userEmail", in.UserEmail)
	p.Require("departureAirport", in.DepartureAirport)
	p.Require("arrivalAirport", in.ArrivalAirport)
	p.Require("flightDate", in.FlightDate)
	p.Require("flightTime", in.FlightTime)
	p.Check(in.TotalCost > 0, "totalCost", "must be greater than 0")
	return p.Err()
}

// Create books SeatCount seats on a flight. The total cost is computed from
// the flight's current price, never taken from the caller.
func (s *BookingService) Create(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireSubmissionLock(ctx, input.TransactionID, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire submission lock: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateSubmission
		}
		locked = true
	}
	release := func() {
		if !locked {
			return
		}
		if err := s.cache.ReleaseSubmissionLock(ctx, input.TransactionID); err != nil {
			logging.Warn("failed to release submission lock", "transaction_id", input.TransactionID, "error", err)
		}
	}

	flight, err := s.remote.GetFlight(ctx, input.FlightID)
	if err != nil {
		release()
		return nil, fmt.Errorf("get flight %s: %w", input.FlightID, err)
	}
	if avail := flight.SeatAvailability.Int(); avail > 0 && input.SeatCount > avail {
		release()
		return nil, service.Problems{"seatCount": fmt.Sprintf("only %d seats available", avail)}.Err()
	}

	loginPerson := input.LoginPerson
	if loginPerson == "" {
		loginPerson = input.Email
	}
	booking := &domain.Booking{
		FlightID:         input.FlightID,
		FlightNumber:     flight.FlightNumber,
		DepartureAirport: flight.DepartureAirport,
		ArrivalAirport:   flight.ArrivalAirport,
		FlightDate:       flight.FlightDate,
		FlightTime:       flight.FlightTime,
		SeatCount:        domain.Number(input.SeatCount),
		TotalCost:        domain.Number(float64(input.SeatCount) * flight.Price.Float64()),
		TransactionID:    strings.TrimSpace(input.TransactionID),
		User:             domain.BookingUser{Name: strings.TrimSpace(input.Name), Email: strings.TrimSpace(input.Email)},
		LoginPerson:      loginPerson,
		LoginUserImage:   input.LoginUserImage,
		CreatedAt:        s.now().UTC().Format(time.RFC3339),
	}

	res, err := s.remote.CreateBooking(ctx, *booking)
	if err != nil {
		release()
		return nil, fmt.Errorf("create booking: %w", err)
	}
	booking.ID = res.InsertedID

	logging.Info("booking created", "booking_id", booking.ID, "flight_id", booking.FlightID, "seats", input.SeatCount, "total_cost", booking.TotalCost.Float64())
	s.publish(ctx, kafka.EventBookingCreated, *booking)
	return booking, nil
}

// History lists the user's bookings that are not awaiting a refund.
func (s *BookingService) History(ctx context.Context, email string) ([]domain.Booking, error) {
	return s.forUser(ctx, email, func(b domain.Booking) bool { return !b.RefundRequested() })
}

// RefundNotifications lists the user's bookings whose refund was approved.
func (s *BookingService) RefundNotifications(ctx context.Context, email string) ([]domain.Booking, error) {
	return s.forUser(ctx, email, domain.Booking.RefundApproved)
}

func (s *BookingService) forUser(ctx context.Context, email string, keep func(domain.Booking) bool) ([]domain.Booking, error) {
	if strings.TrimSpace(email) == "" {
		return nil, service.Problems{"email": "is required"}.Err()
	}
	return s.filter(ctx, func(b domain.Booking) bool {
		return b.LoginPerson == email && keep(b)
	})
}

func (s *BookingService) RequestRefund(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.RefundRequested() || b.RefundApproved() {
		return nil, service.Problems{"status": "refund already requested"}.Err()
	}
	if _, err := s.remote.RequestRefund(ctx, id); err != nil {
		return nil, fmt.Errorf("request refund %s: %w", id, err)
	}
	b.Status = domain.BookingStatusRefund

	logging.Info("refund requested", "booking_id", id)
	s.publish(ctx, kafka.EventRefundRequested, *b)
	return b, nil
}

// PendingRefunds lists every booking awaiting admin approval.
func (s *BookingService) PendingRefunds(ctx context.Context) ([]domain.Booking, error) {
	return s.filter(ctx, domain.Booking.RefundRequested)
}

func (s *BookingService) ApproveRefund(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.RefundApproved() {
		return nil, service.Problems{"refund": "already approved"}.Err()
	}
	if !b.RefundRequested() {
		return nil, service.Problems{"status": "no refund was requested"}.Err()
	}
	if _, err := s.remote.ApproveRefund(ctx, id); err != nil {
		return nil, fmt.Errorf("approve refund %s: %w", id, err)
	}
	b.Refund = domain.RefundApproved

	logging.Info("refund approved", "booking_id", id, "total_cost", b.TotalCost.Float64())
	s.publish(ctx, kafka.EventRefundApproved, *b)
	return b, nil
}

// List returns every booking whose flight number contains term.
func (s *BookingService) List(ctx context.Context, term string) ([]domain.Booking, error) {
	return s.filter(ctx, func(b domain.Booking) bool {
		return directory.MatchFlightNumber(b.FlightNumber, term)
	})
}

func (s *BookingService) Update(ctx context.Context, id string, input UpdateBookingInput) error {
	if strings.TrimSpace(id) == "" {
		return service.Problems{"id": "is required"}.Err()
	}
	if err := input.validate(); err != nil {
		return err
	}
	if _, err := s.remote.UpdateBooking(ctx, id, input); err != nil {
		return fmt.Errorf("update booking %s: %w", id, err)
	}
	logging.Info("booking updated", "booking_id", id)
	return nil
}

func (s *BookingService) Delete(ctx context.Context, id string) error {
	b, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.remote.DeleteBooking(ctx, id); err != nil {
		return fmt.Errorf("delete booking %s: %w", id, err)
	}
	logging.Info("booking deleted", "booking_id", id)
	s.publish(ctx, kafka.EventBookingDeleted, *b)
	return nil
}

func (s *BookingService) filter(ctx context.Context, keep func(domain.Booking) bool) ([]domain.Booking, error) {
	all, err := s.remote.ListBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	out := make([]domain.Booking, 0, len(all))
	for _, b := range all {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *BookingService) find(ctx context.Context, id string) (*domain.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return nil, service.Problems{"id": "is required"}.Err()
	}
	matches, err := s.filter(ctx, func(b domain.Booking) bool { return b.ID == id })
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	return &matches[0], nil
}

// publish writes the event to the booking topic and, when configured, the
// notifications topic. Failures are logged and never fail the operation.
func (s *BookingService) publish(ctx context.Context, eventType string, b domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(eventType, b, s.now())

	err := s.producer.Publish(ctx, s.bookingTopic, event.Key(), event)
	if err == nil && s.notificationsTopic != "" {
		err = s.producer.Publish(ctx, s.notificationsTopic, event.Key(), event)
	}
	if err != nil {
		logging.Warn("failed to publish booking event", "type", eventType, "booking_id", b.ID, "error", err)
	}
	if s.observer != nil {
		s.observer.BookingEvent(eventType, err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
