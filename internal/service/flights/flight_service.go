package flights

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logging"
	"github.com/Domenick1991/flightdesk/internal/remote"
	"github.com/Domenick1991/flightdesk/internal/service"
	"github.com/Domenick1991/flightdesk/internal/timefmt"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	Update(ctx context.Context, id string, input UpdateFlightInput) error
	Delete(ctx context.Context, id string) error
}

// Remote is the part of the flight API the service calls.
type Remote interface {
	ListFlights(ctx context.Context) ([]domain.Flight, error)
	GetFlight(ctx context.Context, id string) (*domain.Flight, error)
	CreateFlight(ctx context.Context, flight domain.Flight) (remote.WriteResult, error)
	UpdateFlight(ctx context.Context, id string, fields any) (remote.WriteResult, error)
	DeleteFlight(ctx context.Context, id string) error
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

// CacheObserver counts hits and misses.
type CacheObserver interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

type FlightService struct {
	remote   Remote
	cache    FlightCache
	observer CacheObserver
}

type Option func(*FlightService)

func WithCacheObserver(o CacheObserver) Option {
	return func(s *FlightService) {
		s.observer = o
	}
}

func NewFlightService(api Remote, cache FlightCache, opts ...Option) *FlightService {
	s := &FlightService{remote: api, cache: cache}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateFlightInput is the admin "add flight" form. Every field is required.
type CreateFlightInput struct {
	FlightNumber     string  `json:"flightNumber"`
	DepartureAirport string  `json:"departureAirport"`
	ArrivalAirport   string  `json:"arrivalAirport"`
	FlightDate       string  `json:"flightDate"`
	FlightTime       string  `json:"flightTime"`
	AircraftType     string  `json:"aircraftType"`
	Duration         float64 `json:"duration"`
	SeatAvailability int     `json:"seatAvailability"`
	Price            float64 `json:"price"`
	UserEmail        string  `json:"-"`
	UserImage        string  `json:"-"`
}

func (in CreateFlightInput) validate() error {
	p := service.Problems{}
	p.Require("flightNumber", in.FlightNumber)
	p.Require("departureAirport", in.DepartureAirport)
	p.Require("arrivalAirport", in.ArrivalAirport)
	p.Require("flightDate", in.FlightDate)
	p.Require("flightTime", in.FlightTime)
	p.Require("aircraftType", in.AircraftType)
	validDateTime(p, in.FlightDate, in.FlightTime)
	p.Check(in.Duration > 0, "duration", "must be greater than 0")
	p.Check(in.SeatAvailability > 0, "seatAvailability", "must be at least 1")
	p.Check(in.Price > 0, "price", "must be greater than 0")
	return p.Err()
}

// UpdateFlightInput is the admin "edit flight" form.
type UpdateFlightInput struct {
	FlightNumber     string  `json:"flightNumber"`
	DepartureAirport string  `json:"departureAirport"`
	ArrivalAirport   string  `json:"arrivalAirport"`
	FlightDate       string  `json:"flightDate"`
	FlightTime       string  `json:"flightTime"`
	Price            float64 `json:"price"`
}

func (in UpdateFlightInput) validate() error {
	p := service.Problems{}
	p.Require("flightNumber", in.FlightNumber)
	p.Require("departureAirport", in.DepartureAirport)
	p.Require("arrivalAirport", in.ArrivalAirport)
	p.Require("flightDate", in.FlightDate)
	p.Require("flightTime", in.FlightTime)
	validDateTime(p, in.FlightDate, in.FlightTime)
	p.Check(in.Price > 0, "price", "must be greater than 0")
	return p.Err()
}

func validDateTime(p service.Problems, date, clock string) {
	if strings.TrimSpace(date) != "" {
		_, err := domain.ParseCalendarDate(date)
		p.Check(err == nil, "flightDate", "must be a date (YYYY-MM-DD)")
	}
	if strings.TrimSpace(clock) != "" {
		p.Check(timefmt.ValidClock(clock), "flightTime", "must be a time (HH:mm)")
	}
}

// List returns the full flight list, from the shared cache when warm.
func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			logging.Warn("flight cache read failed", "error", err)
		}
		if err == nil && cached != nil {
			s.hit()
			return cached, nil
		}
		s.miss()
	}

	flights, err := s.remote.ListFlights(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			logging.Warn("flight cache write failed", "error", err)
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	if strings.TrimSpace(id) == "" {
		return nil, service.Problems{"id": "is required"}.Err()
	}
	flight, err := s.remote.GetFlight(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get flight %s: %w", id, err)
	}
	return flight, nil
}

func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	flight := domain.Flight{
		FlightNumber:     strings.TrimSpace(input.FlightNumber),
		DepartureAirport: strings.TrimSpace(input.DepartureAirport),
		ArrivalAirport:   strings.TrimSpace(input.ArrivalAirport),
		FlightDate:       strings.TrimSpace(input.FlightDate),
		FlightTime:       strings.TrimSpace(input.FlightTime),
		AircraftType:     strings.TrimSpace(input.AircraftType),
		Duration:         domain.Number(input.Duration),
		SeatAvailability: domain.Number(input.SeatAvailability),
		Price:            domain.Number(input.Price),
		UserEmail:        input.UserEmail,
		UserImage:        input.UserImage,
	}
	res, err := s.remote.CreateFlight(ctx, flight)
	if err != nil {
		return nil, fmt.Errorf("create flight: %w", err)
	}
	flight.ID = res.InsertedID
	s.invalidate(ctx)

	logging.Info("flight created", "flight_id", flight.ID, "flight_number", flight.FlightNumber)
	return &flight, nil
}

func (s *FlightService) Update(ctx context.Context, id string, input UpdateFlightInput) error {
	if strings.TrimSpace(id) == "" {
		return service.Problems{"id": "is required"}.Err()
	}
	if err := input.validate(); err != nil {
		return err
	}
	if _, err := s.remote.UpdateFlight(ctx, id, input); err != nil {
		return fmt.Errorf("update flight %s: %w", id, err)
	}
	s.invalidate(ctx)
	logging.Info("flight updated", "flight_id", id)
	return nil
}

func (s *FlightService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return service.Problems{"id": "is required"}.Err()
	}
	if err := s.remote.DeleteFlight(ctx, id); err != nil {
		return fmt.Errorf("delete flight %s: %w", id, err)
	}
	s.invalidate(ctx)
	logging.Info("flight deleted", "flight_id", id)
	return nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		logging.Warn("flight cache invalidation failed", "error", err)
	}
}

func (s *FlightService) hit() {
	if s.observer != nil {
		s.observer.CacheHit("flights")
	}
}

func (s *FlightService) miss() {
	if s.observer != nil {
		s.observer.CacheMiss("flights")
	}
}

var _ FlightUseCase = (*FlightService)(nil)
