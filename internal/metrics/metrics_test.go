package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDirectoryLoaded(t *testing.T) {
	m := NewMetricsRegistry()

	m.DirectoryLoaded(42, 20*time.Millisecond, nil)
	m.DirectoryLoaded(0, time.Second, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DirectoryLoadsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DirectoryLoadsTotal.WithLabelValues("error")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.DirectoryFlights))
}

func TestRemoteCallAndCache(t *testing.T) {
	m := NewMetricsRegistry()

	m.RemoteCall("GET", "flight", time.Millisecond, nil)
	m.RemoteCall("GET", "flight", time.Millisecond, errors.New("502"))
	m.CacheHit("flights")
	m.CacheMiss("flights")
	m.CacheMiss("flights")
	m.BookingEvent("booking_created", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteRequestsTotal.WithLabelValues("GET", "flight", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteRequestsTotal.WithLabelValues("GET", "flight", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("flights")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("flights")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingEventsTotal.WithLabelValues("booking_created", "ok")))

	// Separate registries do not collide.
	assert.NotPanics(t, func() { NewMetricsRegistry() })
}
