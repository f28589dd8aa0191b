package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

type recordingObserver struct {
	mu    sync.Mutex
	sizes []int
	errs  []error
}

func (o *recordingObserver) DirectoryLoaded(size int, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sizes = append(o.sizes, size)
	o.errs = append(o.errs, err)
}

func fixedClock() time.Time {
	return time.Date(2024, time.December, 5, 8, 0, 0, 0, time.UTC)
}

func TestDirectory_LoadAndSearch(t *testing.T) {
	fetcher := &MockFetcher{}
	obs := &recordingObserver{}
	dir := New(fetcher, WithObserver(obs), WithClock(fixedClock))
	ctx := context.Background()

	fetcher.On("List", ctx).Return(sampleFlights(), nil).Once()
	require.NoError(t, dir.Load(ctx))

	assert.Equal(t, 4, dir.Len())
	assert.Empty(t, dir.Err())
	assert.False(t, dir.FetchedAt().IsZero())

	page, err := dir.Search(domain.SearchCriteria{Origin: "dhaka"}, 1, 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids(page.Items))
	assert.Equal(t, []int{4}, obs.sizes)

	fetcher.AssertExpectations(t)
}

func TestDirectory_FlightsIsACopy(t *testing.T) {
	fetcher := &MockFetcher{}
	dir := New(fetcher)
	ctx := context.Background()
	fetcher.On("List", ctx).Return(sampleFlights(), nil).Once()
	require.NoError(t, dir.Load(ctx))

	got, err := dir.Flights()
	require.NoError(t, err)
	got[0].DepartureAirport = "mutated"

	again, err := dir.Flights()
	require.NoError(t, err)
	assert.Equal(t, "Dhaka (DAC)", again[0].DepartureAirport)
}

func TestDirectory_FailedLoadHidesContent(t *testing.T) {
	fetcher := &MockFetcher{}
	dir := New(fetcher)
	ctx := context.Background()

	fetcher.On("List", ctx).Return(sampleFlights(), nil).Once()
	require.NoError(t, dir.Load(ctx))

	fetcher.On("List", ctx).Return(nil, errors.New("connection refused")).Once()
	err := dir.Load(ctx)
	require.Error(t, err)

	assert.Equal(t, "connection refused", dir.Err())
	_, err = dir.Search(domain.SearchCriteria{}, 1, 8)
	assert.ErrorIs(t, err, ErrUnavailable)

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "connection refused", unavailable.Message)

	_, err = dir.Flights()
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = dir.Upcoming(time.Now(), 5)
	assert.ErrorIs(t, err, ErrUnavailable)

	fetcher.On("List", ctx).Return(sampleFlights()[:1], nil).Once()
	require.NoError(t, dir.Load(ctx))
	assert.Empty(t, dir.Err())
	assert.Equal(t, 1, dir.Len())
}

type gatedFetcher struct {
	release chan struct{}
	result  []domain.Flight
}

type sequencedFetcher struct {
	calls chan *gatedFetcher
}

func (s *sequencedFetcher) List(ctx context.Context) ([]domain.Flight, error) {
	g := <-s.calls
	<-g.release
	return g.result, nil
}

func TestDirectory_StaleLoadIsDropped(t *testing.T) {
	src := &sequencedFetcher{calls: make(chan *gatedFetcher, 2)}
	obs := &recordingObserver{}
	dir := New(src, WithObserver(obs))
	ctx := context.Background()

	slow := &gatedFetcher{release: make(chan struct{}), result: sampleFlights()}
	fast := &gatedFetcher{release: make(chan struct{}), result: sampleFlights()[:1]}

	src.calls <- slow
	done := make(chan struct{})
	go func() {
		_ = dir.Load(ctx)
		close(done)
	}()

	// Wait until the slow load has taken its gate before starting the fast one.
	require.Eventually(t, func() bool { return len(src.calls) == 0 }, time.Second, time.Millisecond)

	src.calls <- fast
	close(fast.release)
	require.NoError(t, dir.Load(ctx))
	assert.Equal(t, 1, dir.Len())

	close(slow.release)
	<-done
	assert.Equal(t, 1, dir.Len())

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, []int{1}, obs.sizes)
}

func TestDirectory_Upcoming(t *testing.T) {
	fetcher := &MockFetcher{}
	dir := New(fetcher)
	ctx := context.Background()
	fetcher.On("List", ctx).Return(sampleFlights(), nil).Once()
	require.NoError(t, dir.Load(ctx))

	now := time.Date(2024, time.December, 5, 8, 0, 0, 0, time.UTC)
	got, err := dir.Upcoming(now, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(got))

	got, err = dir.Upcoming(now, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(got))
}

func TestDirectory_EmptyBeforeFirstLoad(t *testing.T) {
	dir := New(&MockFetcher{})
	page, err := dir.Search(domain.SearchCriteria{}, 1, 8)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalPages)
}

func TestDirectory_SearchSkipsPastFlights(t *testing.T) {
	fetcher := &MockFetcher{}
	dir := New(fetcher, WithClock(func() time.Time {
		return time.Date(2024, time.December, 6, 12, 0, 0, 0, time.UTC)
	}))
	ctx := context.Background()
	fetcher.On("List", ctx).Return(sampleFlights(), nil).Once()
	require.NoError(t, dir.Load(ctx))

	page, err := dir.Search(domain.SearchCriteria{}, 1, 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids(page.Items))
	assert.Equal(t, 1, page.Total)

	page, err = dir.Search(domain.SearchCriteria{Date: dayPtr(2024, time.December, 5)}, 1, 8)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	// the full snapshot is still held
	assert.Equal(t, 4, dir.Len())
}

func TestDirectory_NotifiesEveryObserver(t *testing.T) {
	fetcher := &MockFetcher{}
	first, second := &recordingObserver{}, &recordingObserver{}
	dir := New(fetcher, WithObserver(first), WithObserver(nil), WithObserver(second))
	ctx := context.Background()

	fetcher.On("List", ctx).Return(nil, errors.New("boom")).Once()
	require.Error(t, dir.Load(ctx))

	assert.Equal(t, []int{0}, first.sizes)
	assert.Equal(t, []int{0}, second.sizes)
	assert.EqualError(t, second.errs[0], "boom")
}

func TestDirectory_MalformedRecordDoesNotFailLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"_id":"ok","departureAirport":"Dhaka","arrivalAirport":"Dubai","flightDate":"2024-12-05","price":100},
			{"_id":"tbd","departureAirport":"Dhaka","arrivalAirport":"Doha","flightDate":"2024-12-06","price":"TBD"},
			{"_id":"broken","departureAirport":42,"flightDate":"2024-12-06"}
		]`))
	}))
	defer srv.Close()

	client := remote.NewClient(srv.URL, time.Second)
	dir := New(flightLister{client}, WithClock(fixedClock))

	require.NoError(t, dir.Load(context.Background()))
	assert.Empty(t, dir.Err())

	page, err := dir.Search(domain.SearchCriteria{Origin: "dhaka"}, 1, 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok", "tbd"}, ids(page.Items))
}

type flightLister struct {
	client *remote.Client
}

func (l flightLister) List(ctx context.Context) ([]domain.Flight, error) {
	return l.client.ListFlights(ctx)
}
