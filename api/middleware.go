package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logging"
	"github.com/Domenick1991/flightdesk/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	// HeaderUserEmail carries the signed-in user's email, set by the identity
	// proxy in front of the desk.
	HeaderUserEmail = "X-User-Email"
	HeaderUserImage = "X-User-Image"
	HeaderRequestID = "X-Request-ID"

	ThemeCookie = "theme_preference"

	ctxRequestID = "request_id"
	ctxTheme     = "theme"
)

// RequestID reuses the caller's X-Request-ID or mints a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		logging.WithRequest(requestID(c), userEmail(c), route).Infow("HTTP request completed",
			"method", c.Request.Method,
			"status_code", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// Metrics records request counts and latency per route pattern.
func Metrics(m *metrics.MetricsRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.HTTPRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// limiterIdleTTL is how long a client's bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

// RateLimiter hands out one token bucket per client IP. Buckets of idle
// clients expire so the set stays bounded by recent traffic.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *gocache.Cache
	limit    rate.Limit
	burst    int
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return newRateLimiter(perSecond, burst, limiterIdleTTL)
}

func newRateLimiter(perSecond float64, burst int, idle time.Duration) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: gocache.New(idle, idle),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (r *RateLimiter) limiter(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters.Get(ip)
	if !ok {
		l = rate.NewLimiter(r.limit, r.burst)
	}
	// Set again on every hit so the expiry tracks the last request.
	r.limiters.Set(ip, l, gocache.DefaultExpiration)
	return l.(*rate.Limiter)
}

// Clients reports how many buckets are currently held.
func (r *RateLimiter) Clients() int {
	return r.limiters.ItemCount()
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
			return
		}
		c.Next()
	}
}

// Theme reads the theme cookie into the context. Unknown values fall back to
// light.
func Theme() gin.HandlerFunc {
	return func(c *gin.Context) {
		theme := domain.ThemeLight
		if v, err := c.Cookie(ThemeCookie); err == nil {
			if t := domain.Theme(v); t.Valid() {
				theme = t
			}
		}
		c.Set(ctxTheme, theme)
		c.Next()
	}
}

func themeFromContext(c *gin.Context) domain.Theme {
	if v, ok := c.Get(ctxTheme); ok {
		if t, ok := v.(domain.Theme); ok {
			return t
		}
	}
	return domain.ThemeLight
}

// RequireUser rejects requests without an identity header.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userEmail(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing " + HeaderUserEmail + " header"})
			return
		}
		c.Next()
	}
}

func userEmail(c *gin.Context) string {
	return c.GetHeader(HeaderUserEmail)
}
