package directory

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
)

// ErrUnavailable is returned by reads while the last load failed.
var ErrUnavailable = errors.New("flight directory unavailable")

type Fetcher interface {
	List(ctx context.Context) ([]domain.Flight, error)
}

// Observer receives the outcome of every load that was stored. Loads dropped
// as stale are not reported.
type Observer interface {
	DirectoryLoaded(size int, took time.Duration, err error)
}

type snapshot struct {
	seq       uint64
	flights   []domain.Flight
	fetchedAt time.Time
	err       string
}

// Directory is the in-memory list of flights. Every load replaces the whole
// snapshot; readers get copies and never block.
type Directory struct {
	source    Fetcher
	observers []Observer
	now       func() time.Time
	seq       atomic.Uint64
	current   atomic.Pointer[snapshot]
}

type Option func(*Directory)

func WithObserver(o Observer) Option {
	return func(d *Directory) {
		if o != nil {
			d.observers = append(d.observers, o)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Directory) {
		d.now = now
	}
}

func New(source Fetcher, opts ...Option) *Directory {
	d := &Directory{source: source, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	d.current.Store(&snapshot{})
	return d
}

// Load fetches the flight list and swaps it in. A failure replaces the
// snapshot with an error state. A load that finishes after a newer one has
// already been stored is dropped.
func (d *Directory) Load(ctx context.Context) error {
	seq := d.seq.Add(1)
	started := d.now()

	flights, err := d.source.List(ctx)
	next := &snapshot{seq: seq, fetchedAt: d.now()}
	if err != nil {
		next.err = err.Error()
	} else {
		next.flights = slices.Clone(flights)
	}

	stored := false
	for !stored {
		cur := d.current.Load()
		if cur.seq > seq {
			break
		}
		stored = d.current.CompareAndSwap(cur, next)
	}

	if stored {
		took := d.now().Sub(started)
		for _, o := range d.observers {
			o.DirectoryLoaded(len(next.flights), took, err)
		}
	}
	return err
}

// Flights returns a copy of the current records, or ErrUnavailable.
func (d *Directory) Flights() ([]domain.Flight, error) {
	snap := d.current.Load()
	if snap.err != "" {
		return nil, unavailable(snap)
	}
	return slices.Clone(snap.flights), nil
}

// Search filters and paginates the flights departing today or later.
// Past and undated flights never show up in search results.
func (d *Directory) Search(c domain.SearchCriteria, page, size int) (Page[domain.Flight], error) {
	snap := d.current.Load()
	if snap.err != "" {
		return Page[domain.Flight]{}, unavailable(snap)
	}
	s := NewSearch(size)
	s.Apply(c)
	s.GoTo(page)
	return s.View(Upcoming(snap.flights, d.now())), nil
}

// Upcoming returns at most limit flights departing today or later.
func (d *Directory) Upcoming(now time.Time, limit int) ([]domain.Flight, error) {
	snap := d.current.Load()
	if snap.err != "" {
		return nil, unavailable(snap)
	}
	upcoming := Upcoming(snap.flights, now)
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming, nil
}

// Err is the message of the failed load, or "" when content is available.
func (d *Directory) Err() string {
	return d.current.Load().err
}

func (d *Directory) FetchedAt() time.Time {
	return d.current.Load().fetchedAt
}

func (d *Directory) Len() int {
	return len(d.current.Load().flights)
}

func unavailable(snap *snapshot) error {
	return &UnavailableError{Message: snap.err}
}

// UnavailableError carries the message shown in place of content.
type UnavailableError struct {
	Message string
}

func (e *UnavailableError) Error() string {
	return ErrUnavailable.Error() + ": " + e.Message
}

func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}
