package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRegistry holds every Prometheus collector the desk exports.
type MetricsRegistry struct {
	Registry *prometheus.Registry

	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Upstream API
	RemoteRequestsTotal   *prometheus.CounterVec
	RemoteRequestDuration *prometheus.HistogramVec

	// Directory
	DirectoryLoadsTotal   *prometheus.CounterVec
	DirectoryLoadDuration prometheus.Histogram
	DirectoryFlights      prometheus.Gauge

	// Cache
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Business
	BookingEventsTotal *prometheus.CounterVec
}

// NewMetricsRegistry registers all collectors on a fresh registry, so several
// instances (one per test) never collide.
func NewMetricsRegistry() *MetricsRegistry {
	reg := prometheus.NewRegistry()
	m := &MetricsRegistry{
		Registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_http_requests_total",
				Help: "HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flightdesk_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "flightdesk_http_requests_in_flight",
				Help: "HTTP requests currently being served",
			},
		),
		RemoteRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_remote_requests_total",
				Help: "Calls to the upstream flight API by method, resource and outcome",
			},
			[]string{"method", "resource", "outcome"},
		),
		RemoteRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flightdesk_remote_request_duration_seconds",
				Help:    "Upstream flight API latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "resource"},
		),
		DirectoryLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_directory_loads_total",
				Help: "Directory loads by outcome",
			},
			[]string{"outcome"},
		),
		DirectoryLoadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "flightdesk_directory_load_duration_seconds",
				Help:    "Time to fetch and swap in the flight directory",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		DirectoryFlights: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "flightdesk_directory_flights",
				Help: "Flight records in the current directory snapshot",
			},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_cache_hits_total",
				Help: "Cache hits by cache name",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_cache_misses_total",
				Help: "Cache misses by cache name",
			},
			[]string{"cache"},
		),
		BookingEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_booking_events_total",
				Help: "Booking events published by type and outcome",
			},
			[]string{"type", "outcome"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.RemoteRequestsTotal,
		m.RemoteRequestDuration,
		m.DirectoryLoadsTotal,
		m.DirectoryLoadDuration,
		m.DirectoryFlights,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.BookingEventsTotal,
	)
	return m
}

// DirectoryLoaded implements directory.Observer.
func (m *MetricsRegistry) DirectoryLoaded(size int, took time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	} else {
		m.DirectoryFlights.Set(float64(size))
	}
	m.DirectoryLoadsTotal.WithLabelValues(outcome).Inc()
	m.DirectoryLoadDuration.Observe(took.Seconds())
}

// RemoteCall implements remote.Observer.
func (m *MetricsRegistry) RemoteCall(method, resource string, took time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.RemoteRequestsTotal.WithLabelValues(method, resource, outcome).Inc()
	m.RemoteRequestDuration.WithLabelValues(method, resource).Observe(took.Seconds())
}

func (m *MetricsRegistry) CacheHit(cache string) {
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

func (m *MetricsRegistry) CacheMiss(cache string) {
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

func (m *MetricsRegistry) BookingEvent(eventType string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.BookingEventsTotal.WithLabelValues(eventType, outcome).Inc()
}
