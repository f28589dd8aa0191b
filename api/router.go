package api

import (
	"github.com/Domenick1991/flightdesk/internal/metrics"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Flights  *FlightHandler
	Bookings *BookingHandler
	Profiles *ProfileHandler
	Stats    *StatsHandler
}

type RouterOptions struct {
	Metrics     *metrics.MetricsRegistry
	RateLimiter *RateLimiter
}

// NewRouter mounts every handler under /api/v1.
func NewRouter(h Handlers, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Logging())
	if opts.Metrics != nil {
		r.Use(Metrics(opts.Metrics))
	}
	r.Use(Theme())

	v1 := r.Group("/api/v1")
	if opts.RateLimiter != nil {
		v1.Use(opts.RateLimiter.Middleware())
	}

	h.Flights.Register(v1.Group("/flights"))
	h.Bookings.Register(v1.Group("/bookings"))
	h.Profiles.Register(v1)

	admin := v1.Group("/admin")
	h.Flights.RegisterAdmin(admin.Group("/flights"))
	h.Bookings.RegisterAdmin(admin)
	h.Stats.Register(admin)

	return r
}
