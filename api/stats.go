package api

import (
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/service/stats"
	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	service stats.StatsUseCase
}

func NewStatsHandler(service stats.StatsUseCase) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) Register(router *gin.RouterGroup) {
	router.GET("/stats", h.dashboard)
}

func (h *StatsHandler) dashboard(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_users":     d.TotalUsers,
		"total_flights":   d.TotalFlights,
		"total_bookings":  d.TotalBookings,
		"total_earnings":  d.TotalEarnings,
		"latest_flights":  toFlightResponses(d.LatestFlights),
		"latest_bookings": toBookingResponses(d.LatestBookings),
	})
}
