package api

import (
	"context"
	"time"

	"github.com/Domenick1991/flightdesk/internal/directory"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/Domenick1991/flightdesk/internal/service/profile"
	"github.com/Domenick1991/flightdesk/internal/service/stats"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockCatalog is a mock implementation of Catalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Load(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCatalog) Search(c domain.SearchCriteria, page, size int) (directory.Page[domain.Flight], error) {
	args := m.Called(c, page, size)
	return args.Get(0).(directory.Page[domain.Flight]), args.Error(1)
}

func (m *MockCatalog) Upcoming(now time.Time, limit int) ([]domain.Flight, error) {
	args := m.Called(now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Create(ctx context.Context, input flights.CreateFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Update(ctx context.Context, id string, input flights.UpdateFlightInput) error {
	return m.Called(ctx, id, input).Error(0)
}

func (m *MockFlightUseCase) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) bookings(args mock.Arguments) ([]domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) one(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Create(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	return m.one(m.Called(ctx, input))
}

func (m *MockBookingUseCase) History(ctx context.Context, email string) ([]domain.Booking, error) {
	return m.bookings(m.Called(ctx, email))
}

func (m *MockBookingUseCase) RefundNotifications(ctx context.Context, email string) ([]domain.Booking, error) {
	return m.bookings(m.Called(ctx, email))
}

func (m *MockBookingUseCase) RequestRefund(ctx context.Context, id string) (*domain.Booking, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockBookingUseCase) PendingRefunds(ctx context.Context) ([]domain.Booking, error) {
	return m.bookings(m.Called(ctx))
}

func (m *MockBookingUseCase) ApproveRefund(ctx context.Context, id string) (*domain.Booking, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockBookingUseCase) List(ctx context.Context, term string) ([]domain.Booking, error) {
	return m.bookings(m.Called(ctx, term))
}

func (m *MockBookingUseCase) Update(ctx context.Context, id string, input booking.UpdateBookingInput) error {
	return m.Called(ctx, id, input).Error(0)
}

func (m *MockBookingUseCase) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockProfileUseCase is a mock implementation of profile.ProfileUseCase
type MockProfileUseCase struct {
	mock.Mock
}

func (m *MockProfileUseCase) List(ctx context.Context) ([]domain.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Profile), args.Error(1)
}

func (m *MockProfileUseCase) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileUseCase) Update(ctx context.Context, id string, input profile.UpdateProfileInput) (*domain.Profile, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileUseCase) Theme(ctx context.Context, email string) (domain.Theme, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.Theme), args.Error(1)
}

func (m *MockProfileUseCase) SetTheme(ctx context.Context, email string, theme domain.Theme) error {
	return m.Called(ctx, email, theme).Error(0)
}

// MockStatsUseCase is a mock implementation of stats.StatsUseCase
type MockStatsUseCase struct {
	mock.Mock
}

func (m *MockStatsUseCase) Dashboard(ctx context.Context) (*stats.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stats.Dashboard), args.Error(1)
}

type testDeps struct {
	catalog  *MockCatalog
	flights  *MockFlightUseCase
	bookings *MockBookingUseCase
	profiles *MockProfileUseCase
	stats    *MockStatsUseCase
}

func newTestRouter() (*gin.Engine, *testDeps) {
	d := &testDeps{
		catalog:  &MockCatalog{},
		flights:  &MockFlightUseCase{},
		bookings: &MockBookingUseCase{},
		profiles: &MockProfileUseCase{},
		stats:    &MockStatsUseCase{},
	}
	fh := NewFlightHandler(d.catalog, d.flights, 8, 5)
	fh.now = func() time.Time { return time.Date(2024, 12, 5, 9, 0, 0, 0, time.UTC) }
	r := NewRouter(Handlers{
		Flights:  fh,
		Bookings: NewBookingHandler(d.bookings),
		Profiles: NewProfileHandler(d.profiles),
		Stats:    NewStatsHandler(d.stats),
	}, RouterOptions{})
	return r, d
}
