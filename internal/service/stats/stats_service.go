package stats

import (
	"context"
	"fmt"
	"slices"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"golang.org/x/sync/errgroup"
)

// LatestCount is how many flights and bookings the dashboard lists.
const LatestCount = 5

type StatsUseCase interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type Flights interface {
	List(ctx context.Context) ([]domain.Flight, error)
}

type Bookings interface {
	List(ctx context.Context, term string) ([]domain.Booking, error)
}

type Profiles interface {
	List(ctx context.Context) ([]domain.Profile, error)
}

type Dashboard struct {
	TotalUsers     int              `json:"total_users"`
	TotalFlights   int              `json:"total_flights"`
	TotalBookings  int              `json:"total_bookings"`
	TotalEarnings  float64          `json:"total_earnings"`
	LatestFlights  []domain.Flight  `json:"latest_flights"`
	LatestBookings []domain.Booking `json:"latest_bookings"`
}

type StatsService struct {
	flights  Flights
	bookings Bookings
	profiles Profiles
}

func NewStatsService(flights Flights, bookings Bookings, profiles Profiles) *StatsService {
	return &StatsService{flights: flights, bookings: bookings, profiles: profiles}
}

// Dashboard fetches users, flights and bookings in parallel and summarises
// them. Bookings with a requested or approved refund are left out of the
// booking count, the earnings and the latest list.
func (s *StatsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		flights  []domain.Flight
		bookings []domain.Booking
		profiles []domain.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if flights, err = s.flights.List(gctx); err != nil {
			return fmt.Errorf("flights: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if bookings, err = s.bookings.List(gctx, ""); err != nil {
			return fmt.Errorf("bookings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if profiles, err = s.profiles.List(gctx); err != nil {
			return fmt.Errorf("users: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Summarise(profiles, flights, bookings), nil
}

// Summarise computes the dashboard figures. Inputs are not modified.
func Summarise(profiles []domain.Profile, flights []domain.Flight, bookings []domain.Booking) *Dashboard {
	valid := make([]domain.Booking, 0, len(bookings))
	var earnings float64
	for _, b := range bookings {
		if b.Counted() {
			valid = append(valid, b)
			earnings += b.TotalCost.Float64()
		}
	}

	return &Dashboard{
		TotalUsers:     len(profiles),
		TotalFlights:   len(flights),
		TotalBookings:  len(valid),
		TotalEarnings:  earnings,
		LatestFlights:  LatestFlights(flights, LatestCount),
		LatestBookings: LatestBookings(valid, LatestCount),
	}
}

// LatestFlights returns up to n flights, newest flight date first. Undated
// flights sort last.
func LatestFlights(flights []domain.Flight, n int) []domain.Flight {
	sorted := slices.Clone(flights)
	slices.SortStableFunc(sorted, func(a, b domain.Flight) int {
		da, okA := a.Date()
		db, okB := b.Date()
		switch {
		case okA && okB:
			return db.Time().Compare(da.Time())
		case okA:
			return -1
		case okB:
			return 1
		}
		return 0
	})
	return sorted[:min(n, len(sorted))]
}

// LatestBookings returns up to n bookings, most recently created first.
func LatestBookings(bookings []domain.Booking, n int) []domain.Booking {
	sorted := slices.Clone(bookings)
	slices.SortStableFunc(sorted, func(a, b domain.Booking) int {
		return b.Created().Compare(a.Created())
	})
	return sorted[:min(n, len(sorted))]
}

var _ StatsUseCase = (*StatsService)(nil)
