package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logging"
)

var (
	// ErrNotFound is wrapped by APIError for 404 responses.
	ErrNotFound = errors.New("remote: not found")
	// ErrRequestFailed wraps errors where no response arrived at all.
	ErrRequestFailed = errors.New("remote: request failed")
)

// APIError is returned for any non-2xx response from the flight API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote: %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Observer is told about every outbound call.
type Observer interface {
	RemoteCall(method, resource string, took time.Duration, err error)
}

// WriteResult is the acknowledgement the flight API returns for writes.
type WriteResult struct {
	Acknowledged  bool   `json:"acknowledged"`
	InsertedID    string `json:"insertedId,omitempty"`
	MatchedCount  int    `json:"matchedCount,omitempty"`
	ModifiedCount int    `json:"modifiedCount,omitempty"`
	DeletedCount  int    `json:"deletedCount,omitempty"`
	Message       string `json:"message,omitempty"`
}

// Client is a typed HTTP client for the flight booking REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
}

type Option func(*Client)

func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for baseURL. A zero timeout leaves requests
// bounded only by their context.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends body as JSON (when non-nil) and decodes the response into dest
// (when non-nil).
func (c *Client) do(ctx context.Context, method, path, resource string, body, dest any) (err error) {
	started := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.RemoteCall(method, resource, time.Since(started), err)
		}
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("remote: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("remote: decoding response: %w", err)
	}
	return nil
}

// ListFlights fetches every flight record. Records that do not decode as a
// flight are skipped so one malformed entry cannot hide the rest.
func (c *Client) ListFlights(ctx context.Context) ([]domain.Flight, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/flight", "flight", nil, &raw); err != nil {
		return nil, err
	}
	flights := make([]domain.Flight, 0, len(raw))
	for i, r := range raw {
		var f domain.Flight
		if err := json.Unmarshal(r, &f); err != nil {
			logging.Warn("skipping malformed flight record", "index", i, "error", err)
			continue
		}
		flights = append(flights, f)
	}
	return flights, nil
}

func (c *Client) GetFlight(ctx context.Context, id string) (*domain.Flight, error) {
	var flight domain.Flight
	if err := c.do(ctx, http.MethodGet, "/flight-details/"+url.PathEscape(id), "flight-details", nil, &flight); err != nil {
		return nil, err
	}
	if flight.ID == "" {
		return nil, &APIError{Method: http.MethodGet, Path: "/flight-details/" + id, StatusCode: http.StatusNotFound, Body: "empty flight record"}
	}
	return &flight, nil
}

func (c *Client) CreateFlight(ctx context.Context, flight domain.Flight) (WriteResult, error) {
	var res WriteResult
	err := c.do(ctx, http.MethodPost, "/flight", "flight", flight, &res)
	return res, err
}

func (c *Client) UpdateFlight(ctx context.Context, id string, fields any) (WriteResult, error) {
	var res WriteResult
	err := c.do(ctx, http.MethodPut, "/flights/"+url.PathEscape(id), "flights", fields, &res)
	return res, err
}

func (c *Client) DeleteFlight(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/flights/"+url.PathEscape(id), "flights", nil, nil)
}

// ListBookings fetches every booking. Per-user views are filtered by the caller.
func (c *Client) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	var bookings []domain.Booking
	if err := c.do(ctx, http.MethodGet, "/flight-booking", "flight-booking", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) CreateBooking(ctx context.Context, booking domain.Booking) (WriteResult, error) {
	var res WriteResult
	err := c.do(ctx, http.MethodPost, "/flight-booking", "flight-booking", booking, &res)
	return res, err
}

func (c *Client) UpdateBooking(ctx context.Context, id string, fields any) (WriteResult, error) {
	var res WriteResult
	err := c.do(ctx, http.MethodPut, "/flight-booking/"+url.PathEscape(id), "flight-booking", fields, &res)
	return res, err
}

func (c *Client) DeleteBooking(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/flight-booking/"+url.PathEscape(id), "flight-booking", nil, nil)
}

// RequestRefund marks the booking's status as "refund".
func (c *Client) RequestRefund(ctx context.Context, id string) (WriteResult, error) {
	var res WriteResult
	err := c.do(ctx, http.MethodPut, "/flight-bookings/"+url.PathEscape(id), "flight-bookings", nil, &res)
	return res, err
}

// ApproveRefund sets the booking's refund flag to "yes".
func (c *Client) ApproveRefund(ctx context.Context, id string) (WriteResult, error) {
	var res WriteResult
	body := map[string]string{"refund": domain.RefundApproved}
	err := c.do(ctx, http.MethodPut, "/flights-bookings/"+url.PathEscape(id), "flights-bookings", body, &res)
	return res, err
}

// ListProfiles fetches every registered user.
func (c *Client) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	var profiles []domain.Profile
	if err := c.do(ctx, http.MethodGet, "/signup", "signup", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (c *Client) UpdateProfile(ctx context.Context, id string, profile domain.Profile) (WriteResult, error) {
	var res WriteResult
	err := c.do(ctx, http.MethodPut, "/profile/"+url.PathEscape(id), "profile", profile, &res)
	return res, err
}
